package decimalx

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func MustFromString(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

// PctBelow returns how far cur sits below ref, as a percentage of ref.
// Negative when cur is above ref. ref must be non-zero.
func PctBelow(cur, ref decimal.Decimal) decimal.Decimal {
	return ref.Sub(cur).Div(ref).Mul(hundred)
}

// PctAbove returns how far cur sits above ref, as a percentage of ref.
// Negative when cur is below ref. ref must be non-zero.
func PctAbove(cur, ref decimal.Decimal) decimal.Decimal {
	return cur.Sub(ref).Div(ref).Mul(hundred)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(hi, d))
}
