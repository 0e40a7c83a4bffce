package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// Amount is a non-negative integer value in wei, kept as a base 10 string so
// it survives json and bson untouched. The empty string is zero.
type Amount string

func NewAmount(v *big.Int) Amount {
	if v == nil {
		return Amount("0")
	}
	return Amount(v.String())
}

// BigInt returns a fresh copy, invalid strings read as zero
func (a Amount) BigInt() *big.Int {
	v, ok := new(big.Int).SetString(string(a), 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (a Amount) IsValid() bool {
	v, ok := new(big.Int).SetString(string(a), 10)
	return ok && v.Sign() >= 0
}

func (a Amount) IsZero() bool {
	return a.BigInt().Sign() == 0
}

func (a Amount) Cmp(b Amount) int {
	return a.BigInt().Cmp(b.BigInt())
}

func (a Amount) String() string {
	return a.BigInt().String()
}

// Ether formats the amount as a decimal ether string
func (a Amount) Ether() string {
	return decimal.NewFromBigInt(a.BigInt(), -etherDecimals).String()
}

// ParseEther converts a decimal ether string such as "2.6" into wei
func ParseEther(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", ErrInvalidNumberFormat
	}
	wei := d.Shift(etherDecimals)
	if wei.IsNegative() || !wei.Equal(wei.Truncate(0)) {
		return "", ErrInvalidNumberFormat
	}
	return NewAmount(wei.BigInt()), nil
}

func MustParseEther(s string) Amount {
	a, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return a
}
