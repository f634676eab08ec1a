package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

const nairaSign = "₦"

// FormatNGN renders an amount as ₦1,952,500.00.
func FormatNGN(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + nairaSign + b.String() + "." + frac
}
