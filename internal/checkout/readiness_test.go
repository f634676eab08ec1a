package checkout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockers(t *testing.T) {
	due := ComputeTotals(ngn(10_000), DoorDelivery, ngn(0), ngn(0), false)
	paid := ComputeTotals(ngn(10_000), PickupInStore, ngn(0), ngn(50_000), true)

	ready := func(mut func(*ReadinessInput)) ReadinessInput {
		in := ReadinessInput{
			ItemCount:  1,
			HasAddress: true,
			Form:       Form{DeliveryMethod: DoorDelivery, Payment: &PaymentMethod{Kind: DirectCard}},
			Totals:     due,
		}
		if mut != nil {
			mut(&in)
		}
		return in
	}

	tests := []struct {
		name string
		in   ReadinessInput
		want []Blocker
	}{
		{"ready", ready(nil), nil},
		{"no address", ready(func(in *ReadinessInput) { in.HasAddress = false }), []Blocker{BlockerNoShippingAddress}},
		{"empty cart", ready(func(in *ReadinessInput) { in.ItemCount = 0 }), []Blocker{BlockerEmptyCart}},
		{"unknown delivery", ready(func(in *ReadinessInput) { in.Form.DeliveryMethod = "drone" }), []Blocker{BlockerDeliveryMethod}},
		{"negative extras", ready(func(in *ReadinessInput) { in.Form.Extras = ngn(-1) }), []Blocker{BlockerInvalidExtras}},
		{"fractional kobo extras", ready(func(in *ReadinessInput) { in.Form.Extras = decimal.RequireFromString("0.005") }), []Blocker{BlockerInvalidExtras}},
		{"extras with trailing zeros", ready(func(in *ReadinessInput) { in.Form.Extras = decimal.RequireFromString("250.500") }), nil},
		{"remainder without method", ready(func(in *ReadinessInput) { in.Form.Payment = nil }), []Blocker{BlockerRemainderMethod}},
		{"unknown method", ready(func(in *ReadinessInput) { in.Form.Payment = &PaymentMethod{Kind: "barter"} }), []Blocker{BlockerUnknownPayment}},
		{"delegated without contact", ready(func(in *ReadinessInput) {
			in.Form.Payment = &PaymentMethod{Kind: DelegatedPayment, PayerName: "Chidi"}
		}), []Blocker{BlockerDelegatedPayer}},
		{"delegated complete", ready(func(in *ReadinessInput) {
			in.Form.Payment = &PaymentMethod{Kind: DelegatedPayment, PayerName: "Chidi", PayerContact: "+2348000000000"}
		}), nil},
		{"installment without provider", ready(func(in *ReadinessInput) {
			in.Form.Payment = &PaymentMethod{Kind: InstallmentProvider}
		}), []Blocker{BlockerInstallmentProvider}},
		{"wallet covers total needs no method", ready(func(in *ReadinessInput) {
			in.Form.Payment = nil
			in.Totals = paid
		}), nil},
		{"in flight", ready(func(in *ReadinessInput) { in.InFlight = true }), []Blocker{BlockerConfirmInFlight}},
		{"several at once", ready(func(in *ReadinessInput) {
			in.HasAddress = false
			in.ItemCount = 0
			in.Form.Payment = nil
		}), []Blocker{BlockerEmptyCart, BlockerNoShippingAddress, BlockerRemainderMethod}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Blockers(tt.in))
		})
	}
}

func TestValidationError(t *testing.T) {
	var err error = &ValidationError{Blockers: []Blocker{BlockerEmptyCart, BlockerNoShippingAddress}}

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "checkout not ready: empty_cart, no_shipping_address", err.Error())
}
