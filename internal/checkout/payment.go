package checkout

import "strings"

type PaymentKind string

const (
	DeferredInvoice     PaymentKind = "deferred_invoice"
	DirectCard          PaymentKind = "direct_card"
	DelegatedPayment    PaymentKind = "delegated_payment"
	InstallmentProvider PaymentKind = "installment_provider"

	// walletOnly is recorded when the wallet covers the whole total.
	walletOnly PaymentKind = "wallet"
)

// PaymentMethod settles whatever the wallet does not cover.
type PaymentMethod struct {
	Kind         PaymentKind `json:"kind"`
	PayerName    string      `json:"payerName,omitempty"`
	PayerContact string      `json:"payerContact,omitempty"`
	Note         string      `json:"note,omitempty"`
	ProviderID   string      `json:"providerId,omitempty"`
}

func (k PaymentKind) Valid() bool {
	switch k {
	case DeferredInvoice, DirectCard, DelegatedPayment, InstallmentProvider:
		return true
	default:
		return false
	}
}

func (p PaymentMethod) Label() string {
	switch p.Kind {
	case DeferredInvoice:
		return "Pay on Invoice"
	case DirectCard:
		return "Card"
	case DelegatedPayment:
		return "Pay for Me"
	case InstallmentProvider:
		if p.ProviderID != "" {
			return "Installments (" + p.ProviderID + ")"
		}
		return "Installments"
	default:
		return string(p.Kind)
	}
}

func (p PaymentMethod) missingPayerDetails() bool {
	return strings.TrimSpace(p.PayerName) == "" || strings.TrimSpace(p.PayerContact) == ""
}

type OutcomeType string

const (
	OutcomeStandard    OutcomeType = "standard"
	OutcomeInvoice     OutcomeType = "invoice"
	OutcomePaymentLink OutcomeType = "payment_link"
)
