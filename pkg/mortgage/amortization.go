// Package mortgage implements fixed-rate mortgage arithmetic: the amortization
// calculator, the term solver, the accelerated repayment simulator and the
// month-by-month amortization schedule.
//
// Every function in this package is a pure function of its inputs and is safe
// for concurrent use.
package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// LoanParameters holds the inputs of a mortgage calculation.
type LoanParameters struct {
	PropertyValue             float64 `json:"propertyValue" yaml:"propertyValue"`
	DownPaymentPercent        float64 `json:"downPaymentPercent" yaml:"downPaymentPercent"`
	LoanTermYears             int     `json:"loanTermYears" yaml:"loanTermYears"`
	AnnualInterestRatePercent float64 `json:"interestRate" yaml:"interestRate"`
}

// DownPayment returns the cash paid up front.
func (p LoanParameters) DownPayment() float64 {
	return p.PropertyValue * (p.DownPaymentPercent / constants.PercentageMultiplier)
}

// LoanAmount returns the financed amount.
func (p LoanParameters) LoanAmount() float64 {
	return p.PropertyValue - p.DownPayment()
}

// AmortizationResult is the derived summary of a fixed-rate mortgage.
type AmortizationResult struct {
	PropertyValue       float64 `json:"propertyValue" yaml:"propertyValue"`
	DownPayment         float64 `json:"downPayment" yaml:"downPayment"`
	LoanAmount          float64 `json:"loanAmount" yaml:"loanAmount"`
	MonthlyPayment      float64 `json:"monthlyPayment" yaml:"monthlyPayment"`
	TotalPayment        float64 `json:"totalPayment" yaml:"totalPayment"`
	TotalInterest       float64 `json:"totalInterest" yaml:"totalInterest"`
	LoanTermYears       int     `json:"loanTerm" yaml:"loanTerm"`
	InterestRatePercent float64 `json:"interestRate" yaml:"interestRate"`
	LoanToValuePercent  float64 `json:"loanToValue" yaml:"loanToValue"`
}

// TotalMonths returns the number of scheduled payments.
func (r AmortizationResult) TotalMonths() int {
	return r.LoanTermYears * constants.MonthsPerYear
}

// Compute calculates the amortization summary for the given parameters.
// Inputs are not validated; see the validation package for the accepted ranges.
func Compute(p LoanParameters) AmortizationResult {
	downPayment := p.DownPayment()
	loanAmount := p.LoanAmount()
	termMonths := p.LoanTermYears * constants.MonthsPerYear

	monthlyPayment := CalculateMonthlyPayment(loanAmount, p.AnnualInterestRatePercent, termMonths)
	totalPayment := monthlyPayment * float64(termMonths)

	return AmortizationResult{
		PropertyValue:       p.PropertyValue,
		DownPayment:         downPayment,
		LoanAmount:          loanAmount,
		MonthlyPayment:      monthlyPayment,
		TotalPayment:        totalPayment,
		TotalInterest:       totalPayment - loanAmount,
		LoanTermYears:       p.LoanTermYears,
		InterestRatePercent: p.AnnualInterestRatePercent,
		LoanToValuePercent:  mathutil.CalculatePercentage(loanAmount, p.PropertyValue),
	}
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard annuity formula.
// A zero rate falls back to a straight-line payment.
func CalculateMonthlyPayment(loanAmount, annualInterestRatePercent float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}

	monthlyRate := mathutil.MonthlyRate(annualInterestRatePercent)
	if monthlyRate == 0 {
		return loanAmount / float64(termMonths)
	}

	power := math.Pow(1+monthlyRate, float64(termMonths))
	return loanAmount * monthlyRate * power / (power - 1)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRatePercent float64) float64 {
	return remainingPrincipal * mathutil.MonthlyRate(annualInterestRatePercent)
}
