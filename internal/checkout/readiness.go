package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Blocker string

const (
	BlockerEmptyCart           Blocker = "empty_cart"
	BlockerNoShippingAddress   Blocker = "no_shipping_address"
	BlockerDeliveryMethod      Blocker = "invalid_delivery_method"
	BlockerInvalidExtras       Blocker = "invalid_extras"
	BlockerRemainderMethod     Blocker = "remainder_payment_method_required"
	BlockerUnknownPayment      Blocker = "unknown_payment_method"
	BlockerDelegatedPayer      Blocker = "delegated_payer_details_required"
	BlockerInstallmentProvider Blocker = "installment_provider_required"
	BlockerConfirmInFlight     Blocker = "confirm_in_flight"
)

type ReadinessInput struct {
	ItemCount  int
	HasAddress bool
	Form       Form
	Totals     Totals
	InFlight   bool
}

// Blockers lists every reason confirmation is currently disabled. The
// remainder method is only inspected while something is left to pay.
func Blockers(in ReadinessInput) []Blocker {
	var out []Blocker

	if in.ItemCount == 0 {
		out = append(out, BlockerEmptyCart)
	}
	if !in.HasAddress {
		out = append(out, BlockerNoShippingAddress)
	}
	if !in.Form.DeliveryMethod.Valid() {
		out = append(out, BlockerDeliveryMethod)
	}
	if in.Form.Extras.IsNegative() || !in.Form.Extras.Equal(in.Form.Extras.Round(2)) {
		out = append(out, BlockerInvalidExtras)
	}

	if in.Totals.AmountDue.GreaterThan(decimal.Zero) {
		p := in.Form.Payment
		switch {
		case p == nil || p.Kind == "":
			out = append(out, BlockerRemainderMethod)
		case !p.Kind.Valid():
			out = append(out, BlockerUnknownPayment)
		case p.Kind == DelegatedPayment && p.missingPayerDetails():
			out = append(out, BlockerDelegatedPayer)
		case p.Kind == InstallmentProvider && strings.TrimSpace(p.ProviderID) == "":
			out = append(out, BlockerInstallmentProvider)
		}
	}

	if in.InFlight {
		out = append(out, BlockerConfirmInFlight)
	}
	return out
}

type ValidationError struct {
	Blockers []Blocker
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Blockers))
	for i, b := range e.Blockers {
		parts[i] = string(b)
	}
	return "checkout not ready: " + strings.Join(parts, ", ")
}
