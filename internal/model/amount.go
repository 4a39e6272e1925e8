package model

import "math/bits"

// Amount is a quantity of an asset in its smallest unit
type Amount uint64

// Add returns a+b, failing with ErrAmountOverflow instead of wrapping
func (a Amount) Add(b Amount) (Amount, error) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return Amount(sum), nil
}

// Sub returns a-b, failing with ErrInsufficientBalance when b > a
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, ErrInsufficientBalance
	}
	return a - b, nil
}

// Percent returns a*pct/100 truncated. The product is taken in 128 bits so
// large balances cannot overflow; pct is bounded by MaxPlatformFee.
func (a Amount) Percent(pct uint64) Amount {
	hi, lo := bits.Mul64(uint64(a), pct)
	q, _ := bits.Div64(hi, lo, 100)
	return Amount(q)
}
