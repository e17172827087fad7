package service

import (
	"context"
	"encoding/json"
	"math"

	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/payment"
)

// PaymentService forwards charges to the payment gateway.
type PaymentService struct {
	gateway  PaymentGateway
	currency string
}

// NewPaymentService creates a PaymentService charging in a single currency.
func NewPaymentService(gateway PaymentGateway, currency string) *PaymentService {
	return &PaymentService{gateway: gateway, currency: currency}
}

// Charge converts the price to minor units and submits it with the client's
// payment token. Prices follow the same MaxPrice bound as offers. The gateway
// response is returned untouched.
func (s *PaymentService) Charge(ctx context.Context, req model.ChargeRequest) (json.RawMessage, error) {
	if req.Token == "" || !(req.Price > 0) {
		return nil, ErrMissingPayment
	}
	if req.Price > MaxPrice {
		return nil, ErrPriceTooHigh
	}

	resp, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Amount:      MinorUnits(req.Price),
		Currency:    s.currency,
		Description: "Payment for: " + req.Title,
		Source:      req.Token,
	})
	if err != nil {
		return nil, failed(err)
	}
	return resp, nil
}

// MinorUnits converts an amount in major currency units to the nearest minor unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
