package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v72"
)

type fakeCharges struct {
	got *stripe.ChargeParams
	out *stripe.Charge
	err error
}

func (f *fakeCharges) New(params *stripe.ChargeParams) (*stripe.Charge, error) {
	f.got = params
	return f.out, f.err
}

func TestStripeGatewayCharge(t *testing.T) {
	fake := &fakeCharges{out: &stripe.Charge{ID: "ch_123", Amount: 1050, Currency: "eur", Paid: true}}
	g := &StripeGateway{charges: fake}

	raw, err := g.Charge(context.Background(), ChargeRequest{
		Amount:      1050,
		Currency:    "eur",
		Description: "Payment for: Red shoe",
		Source:      "tok_visa",
	})
	if err != nil {
		t.Fatalf("Charge() unexpected error: %v", err)
	}

	if got := *fake.got.Amount; got != 1050 {
		t.Errorf("amount = %d, want 1050", got)
	}
	if got := *fake.got.Currency; got != "eur" {
		t.Errorf("currency = %q, want eur", got)
	}
	if got := *fake.got.Description; got != "Payment for: Red shoe" {
		t.Errorf("description = %q", got)
	}
	if fake.got.Source == nil || fake.got.Source.Token == nil || *fake.got.Source.Token != "tok_visa" {
		t.Errorf("source = %+v, want tok_visa", fake.got.Source)
	}
	if fake.got.Context == nil {
		t.Error("request context was not forwarded")
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Charge() returned invalid JSON: %v", err)
	}
	if decoded["id"] != "ch_123" {
		t.Errorf("charge id = %v, want ch_123", decoded["id"])
	}
}

func TestStripeGatewayErrorMessage(t *testing.T) {
	fake := &fakeCharges{err: &stripe.Error{Msg: "Your card was declined.", Code: stripe.ErrorCodeCardDeclined}}
	g := &StripeGateway{charges: fake}

	_, err := g.Charge(context.Background(), ChargeRequest{Amount: 100, Currency: "eur", Source: "tok_chargeDeclined"})
	if err == nil || err.Error() != "Your card was declined." {
		t.Fatalf("Charge() error = %v, want gateway message", err)
	}
}

func TestGatewayErrorPassthrough(t *testing.T) {
	plain := errors.New("network unreachable")
	if got := gatewayError(plain); got != plain {
		t.Errorf("gatewayError() = %v, want the original error", got)
	}
}
