package utils

import "github.com/shopspring/decimal"

// LineTotal returns price × quantity rounded to cents.
func LineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// SumAmounts adds money values without float drift.
func SumAmounts(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.Round(2).InexactFloat64()
}

// ApplyPercentDiscount returns the discount and the discounted total for pct percent off.
func ApplyPercentDiscount(total, pct float64) (discount, after float64) {
	t := decimal.NewFromFloat(total)
	d := t.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(2)
	return d.InexactFloat64(), t.Sub(d).Round(2).InexactFloat64()
}

// ToPaisa converts rupees to whole paisa.
func ToPaisa(v float64) int64 {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FormatAmount renders a money value with two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
