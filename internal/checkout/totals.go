package checkout

import "github.com/shopspring/decimal"

type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryCost     decimal.Decimal `json:"deliveryCost"`
	Extras           decimal.Decimal `json:"extras"`
	Total            decimal.Decimal `json:"total"`
	WalletAmountUsed decimal.Decimal `json:"walletAmountUsed"`
	AmountDue        decimal.Decimal `json:"amountDue"`
}

// ComputeTotals is the single source of checkout arithmetic. It runs for
// every quote and once more at confirmation; the wallet toggle never
// changes the total, only how it is split.
func ComputeTotals(subtotal decimal.Decimal, method DeliveryMethod, extras, walletBalance decimal.Decimal, useWallet bool) Totals {
	total := subtotal.Add(method.Cost()).Add(extras)

	used := decimal.Zero
	if useWallet && walletBalance.IsPositive() && total.IsPositive() {
		used = decimal.Min(walletBalance, total)
	}

	return Totals{
		Subtotal:         subtotal,
		DeliveryCost:     method.Cost(),
		Extras:           extras,
		Total:            total,
		WalletAmountUsed: used,
		AmountDue:        total.Sub(used),
	}
}
