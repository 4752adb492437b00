package service

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ApplyDiscount returns the amount saved and the new total for a percentage
// coupon. The saving never exceeds the total and the total never goes negative.
func ApplyDiscount(total, percentage float64) (saved, final float64) {
	t := decimal.NewFromFloat(total)
	s := t.Mul(decimal.NewFromFloat(percentage)).Div(hundred)
	if s.GreaterThan(t) {
		s = t
	}
	if s.IsNegative() {
		s = decimal.Zero
	}
	f := t.Sub(s)
	if f.IsNegative() {
		f = decimal.Zero
	}
	saved, _ = s.Round(2).Float64()
	final, _ = f.Round(2).Float64()
	return saved, final
}

// LineTotal sums price x quantity for each line, rounded to cents.
func LineTotal(prices []float64, quantities []uint) float64 {
	sum := decimal.Zero
	for i := range prices {
		sum = sum.Add(decimal.NewFromFloat(prices[i]).Mul(decimal.NewFromInt(int64(quantities[i]))))
	}
	f, _ := sum.Round(2).Float64()
	return f
}
