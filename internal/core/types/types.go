// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds to 2 decimal places, half away from zero.
// Rates and amounts in this system are non-negative, so this matches
// the round-half-up-on-the-cent rule used at order capture.
func RoundMoney(m Money) Money {
	return m.Round(2)
}

// ApplyDiscountPct returns m reduced by pct percent: m * (1 - pct/100).
func ApplyDiscountPct(m Money, pct Money) Money {
	hundred := decimal.NewFromInt(100)
	return m.Mul(hundred.Sub(pct)).Div(hundred)
}

// PctOf returns pct percent of m: m * pct / 100.
func PctOf(m Money, pct Money) Money {
	return m.Mul(pct).Div(decimal.NewFromInt(100))
}

// Pieces is a whole-piece quantity. Trading stock in this system is
// counted in pieces; fractional quantities do not exist.
type Pieces int64

func NewPieces(v int64) Pieces { return Pieces(v) }

func (p Pieces) Int64() int64 { return int64(p) }

func (p Pieces) IsZero() bool { return p == 0 }

func (p Pieces) IsPositive() bool { return p > 0 }

func (p Pieces) IsNegative() bool { return p < 0 }

func (p Pieces) Neg() Pieces { return -p }

func (p Pieces) Abs() Pieces {
	if p < 0 {
		return -p
	}
	return p
}

// Decimal converts the piece count for money arithmetic.
func (p Pieces) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(p))
}
