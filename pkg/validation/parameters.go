package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/investment"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// ErrOutOfRange is wrapped by every range violation reported by this package.
var ErrOutOfRange = errors.New("value out of range")

func checkRange(field string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrOutOfRange, field, lo, hi, value)
	}
	return nil
}

func checkPositive(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %g", ErrOutOfRange, field, value)
	}
	return nil
}

func checkNonNegative(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %g", ErrOutOfRange, field, value)
	}
	return nil
}

// ValidateLoanParameters checks the inputs of a mortgage calculation.
func ValidateLoanParameters(p mortgage.LoanParameters) error {
	return errors.Join(
		checkPositive("propertyValue", p.PropertyValue),
		checkRange("downPaymentPercent", p.DownPaymentPercent,
			constants.MinDownPaymentPercent, constants.MaxDownPaymentPercent),
		checkRange("loanTermYears", float64(p.LoanTermYears),
			constants.MinLoanTermYears, constants.MaxLoanTermYears),
		checkRange("interestRate", p.AnnualInterestRatePercent,
			constants.MinInterestRatePercent, constants.MaxInterestRatePercent),
	)
}

// ValidatePaymentParameters checks the inputs of a term calculation.
func ValidatePaymentParameters(propertyValue, downPaymentPercent, monthlyPayment, annualInterestRatePercent float64) error {
	return errors.Join(
		checkPositive("propertyValue", propertyValue),
		checkRange("downPaymentPercent", downPaymentPercent,
			constants.MinDownPaymentPercent, constants.MaxDownPaymentPercent),
		checkPositive("monthlyPayment", monthlyPayment),
		checkRange("interestRate", annualInterestRatePercent,
			constants.MinInterestRatePercent, constants.MaxInterestRatePercent),
	)
}

// ValidateAccelerationParameters checks the inputs of an accelerated repayment simulation.
func ValidateAccelerationParameters(p mortgage.AccelerationParameters) error {
	_, modeErr := mortgage.ParseMode(string(p.Mode))
	return errors.Join(
		checkRange("accelerationMonths", float64(p.AccelerationMonths),
			constants.MinAccelerationMonths, constants.MaxAccelerationMonths),
		checkRange("paymentMultiplier", p.PaymentMultiplier,
			constants.MinPaymentMultiplier, constants.MaxPaymentMultiplier),
		modeErr,
	)
}

// ValidateInvestmentParameters checks the inputs of an investment projection,
// including the return and inflation limits enforced by the projector itself.
func ValidateInvestmentParameters(p investment.Parameters) error {
	var ageErr error
	if p.EndCapitalFormationAge < p.StartingAge {
		ageErr = fmt.Errorf("%w: endCapitalFormationAge %d is before startingAge %d",
			ErrOutOfRange, p.EndCapitalFormationAge, p.StartingAge)
	}

	return errors.Join(
		p.Validate(),
		checkRange("startingAge", float64(p.StartingAge), constants.MinStartingAge, constants.MaxStartingAge),
		checkRange("endCapitalFormationAge", float64(p.EndCapitalFormationAge),
			constants.MinStartingAge, constants.MaxEndCapitalFormationAge),
		ageErr,
		checkNonNegative("initialCapital", p.InitialCapital),
		checkNonNegative("monthlyInvestment", p.MonthlyInvestment),
		checkNonNegative("annualReturn", p.AnnualReturnPercent),
		checkNonNegative("annualInflation", p.AnnualInflationPercent),
	)
}
