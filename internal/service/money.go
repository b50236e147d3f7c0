package service

import "github.com/shopspring/decimal"

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// minorUnits converts a decimal price to integer cents, truncating, which
// is what the gateway expects in line items and refund amounts.
func minorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}
