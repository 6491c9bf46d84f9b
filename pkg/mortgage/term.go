package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// SolveTermYears returns the loan term, in whole years, under which the given
// monthly payment amortizes the loan. The result is always within
// [MinLoanTermYears, MaxLoanTermYears].
//
// A non-positive payment or loan amount yields DefaultLoanTermYears. A payment
// that does not exceed the interest-only payment yields MaxLoanTermYears.
func SolveTermYears(propertyValue, downPaymentPercent, monthlyPayment, annualInterestRatePercent float64) int {
	loanAmount := LoanParameters{
		PropertyValue:      propertyValue,
		DownPaymentPercent: downPaymentPercent,
	}.LoanAmount()

	if monthlyPayment <= 0 || loanAmount <= 0 {
		return constants.DefaultLoanTermYears
	}

	termMonths, ok := RemainingTermMonths(loanAmount, monthlyPayment, mathutil.MonthlyRate(annualInterestRatePercent))
	if !ok {
		return constants.MaxLoanTermYears
	}

	termYears := int(math.Round(termMonths / constants.MonthsPerYear))
	return mathutil.ClampInt(termYears, constants.MinLoanTermYears, constants.MaxLoanTermYears)
}

// RemainingTermMonths solves the annuity formula for the number of months
// needed to repay balance with a fixed payment at the periodic monthlyRate.
// The second return value is false when the payment cannot amortize the
// principal.
func RemainingTermMonths(balance, payment, monthlyRate float64) (float64, bool) {
	if payment <= 0 {
		return 0, false
	}
	if monthlyRate == 0 {
		return balance / payment, true
	}

	interestOnly := balance * monthlyRate
	if payment <= interestOnly {
		return 0, false
	}

	return math.Log(payment/(payment-interestOnly)) / math.Log(1+monthlyRate), true
}
