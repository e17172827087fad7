package service

import "errors"

// Kind classifies service failures.
type Kind uint8

const (
	KindOperationFailed Kind = iota
	KindMissingParameters
	KindTooLong
	KindPriceTooHigh
	KindDuplicateEmail
	KindUserNotFound
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindMissingParameters:
		return "missing_parameters"
	case KindTooLong:
		return "too_long"
	case KindPriceTooHigh:
		return "price_too_high"
	case KindDuplicateEmail:
		return "duplicate_email"
	case KindUserNotFound:
		return "user_not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "operation_failed"
	}
}

// Error is a classified failure whose message is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "operation failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrMissingSignupFields = &Error{Kind: KindMissingParameters, Message: "Missing parameters"}
	ErrMissingOfferFields  = &Error{Kind: KindMissingParameters, Message: "Title, price and picture are required"}
	ErrMissingPayment      = &Error{Kind: KindMissingParameters, Message: "Price and payment token are required"}
	ErrTitleTooLong        = &Error{Kind: KindTooLong, Message: "Your title must be shorter"}
	ErrDescriptionTooLong  = &Error{Kind: KindTooLong, Message: "Your description must be shorter"}
	ErrPriceTooHigh        = &Error{Kind: KindPriceTooHigh, Message: "You should put a lower price"}
	ErrEmailTaken          = &Error{Kind: KindDuplicateEmail, Message: "This email already has an account"}
	ErrUserNotFound        = &Error{Kind: KindUserNotFound, Message: "User not found"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrOfferNotFound       = &Error{Kind: KindNotFound, Message: "Offer not found"}
)

// failed wraps a collaborator error as an OperationFailed carrying its message.
func failed(err error) error {
	return &Error{Kind: KindOperationFailed, Err: err}
}

// KindOf classifies err. Unclassified errors are KindOperationFailed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOperationFailed
}
