// Package money provides exact currency arithmetic for prices, rates and
// currency conversion.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned when a conversion references a currency without a rate.
var ErrUnknownCurrency = errors.New("unknown currency")

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// New creates a new Money instance from a float64
func New(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// Parse creates a new Money instance from a string
func Parse(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// Round rounds the money amount to cents
func (m Money) Round() Money {
	return Money{m.Decimal.Round(2)}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Mul multiplies by a decimal factor
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{m.Decimal.Mul(factor)}
}

// Div divides by a decimal factor
func (m Money) Div(factor decimal.Decimal) Money {
	return Money{m.Decimal.Div(factor)}
}

// Float returns the amount as a float64.
func (m Money) Float() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// Percent adds two percentages exactly, e.g. a base rate and a bank margin.
func Percent(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Float64()
	return f
}

// Rates maps a currency code to the value of one unit in the base currency.
// The base currency itself maps to 1.
type Rates map[string]float64

// Convert converts amount from one currency to another through the base
// currency of rates. Currency codes are case-insensitive.
func Convert(amount Money, from, to string, rates Rates) (Money, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	fromRate, ok := rates[from]
	if !ok || fromRate <= 0 {
		return Money{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := rates[to]
	if !ok || toRate <= 0 {
		return Money{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	base := amount.Mul(decimal.NewFromFloat(fromRate))
	return base.Div(decimal.NewFromFloat(toRate)), nil
}
