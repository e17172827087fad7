// Package payment submits card charges to Stripe.
package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// ChargeRequest is a charge in minor currency units.
type ChargeRequest struct {
	Amount      int64
	Currency    string
	Description string
	Source      string
}

// chargeCreator is the subset of the Stripe charges client used by StripeGateway.
type chargeCreator interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// StripeGateway submits charges through a Stripe API client owned by the caller.
type StripeGateway struct {
	charges chargeCreator
}

// NewStripeGateway creates a gateway bound to the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	sc := client.New(secretKey, nil)
	return &StripeGateway{charges: sc.Charges}
}

// Charge creates the charge and returns Stripe's charge object as JSON.
func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (json.RawMessage, error) {
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
	}
	params.Context = ctx
	if err := params.SetSource(req.Source); err != nil {
		return nil, err
	}

	ch, err := g.charges.New(params)
	if err != nil {
		return nil, gatewayError(err)
	}

	return json.Marshal(ch)
}

// gatewayError reduces a Stripe API error to its human-readable message.
func gatewayError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}
