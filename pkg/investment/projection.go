// Package investment projects long-term capital growth with regular
// contributions, compounding, optional inflation adjustment and a passive
// income phase after contributions stop.
package investment

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

const (
	// maxInvestmentMultiplier caps inflation-driven contribution growth relative to the first year.
	maxInvestmentMultiplier = 4

	// maxInflationFactor caps the cumulative inflation factor.
	maxInflationFactor = 20

	// minInflationFactor is the smallest divisor used for inflation adjustment.
	minInflationFactor = 0.0001

	// MaxSafeValue is the ceiling applied to projected amounts.
	MaxSafeValue = float64(1<<53-1) / 1000

	// CappedWarning is attached to a projection whose values were capped.
	CappedWarning = "Some values were capped for stability"
)

var (
	// ErrUnrealisticReturn is returned when the expected annual return exceeds MaxAnnualReturnPercent.
	ErrUnrealisticReturn = errors.New("annual return exceeding 50% is unrealistic")

	// ErrExtremeInflation is returned when the expected annual inflation exceeds MaxAnnualInflationPercent.
	ErrExtremeInflation = errors.New("annual inflation exceeding 30% is extreme")
)

// Parameters holds the inputs of an investment projection.
type Parameters struct {
	StartingAge            int     `json:"startingAge" yaml:"startingAge"`
	InitialCapital         float64 `json:"initialCapital" yaml:"initialCapital"`
	MonthlyInvestment      float64 `json:"monthlyInvestment" yaml:"monthlyInvestment"`
	AnnualReturnPercent    float64 `json:"annualReturn" yaml:"annualReturn"`
	AnnualInflationPercent float64 `json:"annualInflation" yaml:"annualInflation"`
	EndCapitalFormationAge int     `json:"endCapitalFormationAge" yaml:"endCapitalFormationAge"`
	ConsiderInflation      bool    `json:"considerInflation" yaml:"considerInflation"`
	ReinvestAfterFormation bool    `json:"reinvestAfterFormation" yaml:"reinvestAfterFormation"`
}

// Validate rejects return and inflation assumptions outside the supported range.
// The limits themselves are accepted.
func (p Parameters) Validate() error {
	if p.AnnualReturnPercent > constants.MaxAnnualReturnPercent {
		return fmt.Errorf("%w: got %.2f%%", ErrUnrealisticReturn, p.AnnualReturnPercent)
	}
	if p.AnnualInflationPercent > constants.MaxAnnualInflationPercent {
		return fmt.Errorf("%w: got %.2f%%", ErrExtremeInflation, p.AnnualInflationPercent)
	}
	return nil
}

// FinalAge is the last age covered by a projection.
func (p Parameters) FinalAge() int {
	return p.EndCapitalFormationAge + constants.ProjectionYearsAfterFormation
}

// YearlyProjection is one year of a projection.
type YearlyProjection struct {
	Age                            int      `json:"age" yaml:"age"`
	CapitalStart                   float64  `json:"capitalStart" yaml:"capitalStart"`
	YearlyInvestment               float64  `json:"yearlyInvestment" yaml:"yearlyInvestment"`
	InterestGained                 float64  `json:"interestGained" yaml:"interestGained"`
	CapitalEnd                     float64  `json:"capitalEnd" yaml:"capitalEnd"`
	PassiveIncomeMonthly           float64  `json:"passiveIncomeMonthly" yaml:"passiveIncomeMonthly"`
	PassiveIncomeInflationAdjusted *float64 `json:"passiveIncomeInflationAdjusted" yaml:"passiveIncomeInflationAdjusted"`
	Warning                        string   `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// Sequence validates p and returns the yearly projections from StartingAge
// through FinalAge. Each range over the sequence recomputes it from scratch.
func Sequence(p Parameters) (iter.Seq[YearlyProjection], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return func(yield func(YearlyProjection) bool) {
		currentCapital := mathutil.SafeNumber(p.InitialCapital)
		currentMonthlyInvestment := mathutil.SafeNumber(p.MonthlyInvestment)
		maxMonthlyInvestment := currentMonthlyInvestment * maxInvestmentMultiplier
		returnRate := mathutil.SafeNumber(p.AnnualReturnPercent / constants.PercentageMultiplier)
		inflationRate := mathutil.SafeNumber(p.AnnualInflationPercent / constants.PercentageMultiplier)

		for age := p.StartingAge; age <= p.FinalAge(); age++ {
			capped := false
			inFormationPeriod := age <= p.EndCapitalFormationAge

			var yearlyInvestment float64
			if inFormationPeriod {
				yearlyInvestment = mathutil.SafeNumber(currentMonthlyInvestment * constants.MonthsPerYear)
			}

			var interestGained, capitalEnd float64
			if inFormationPeriod || p.ReinvestAfterFormation {
				interestGained = mathutil.SafeNumber((currentCapital + yearlyInvestment/2) * returnRate)
				capitalEnd = mathutil.SafeNumber(currentCapital + interestGained + yearlyInvestment)
			} else {
				// Interest is reported as income and the capital is left untouched.
				interestGained = mathutil.SafeNumber(currentCapital * returnRate)
				capitalEnd = currentCapital
			}

			passiveIncomeMonthly := mathutil.SafeNumber(currentCapital * returnRate / constants.MonthsPerYear)

			var adjusted *float64
			if p.ConsiderInflation {
				factor := math.Pow(1+inflationRate, float64(age-p.StartingAge))
				if factor > maxInflationFactor {
					factor = maxInflationFactor
					capped = true
				}
				factor = mathutil.SafeNumber(factor)
				if factor < minInflationFactor {
					factor = minInflationFactor
					capped = true
				}
				value := mathutil.SafeNumber(passiveIncomeMonthly / factor)
				adjusted = &value
			}

			if capitalEnd > MaxSafeValue {
				capitalEnd = MaxSafeValue
				capped = true
			}
			if passiveIncomeMonthly > MaxSafeValue {
				passiveIncomeMonthly = MaxSafeValue
				capped = true
			}
			if adjusted != nil && *adjusted > MaxSafeValue {
				*adjusted = MaxSafeValue
				capped = true
			}

			projection := YearlyProjection{
				Age:                            age,
				CapitalStart:                   currentCapital,
				YearlyInvestment:               yearlyInvestment,
				InterestGained:                 interestGained,
				CapitalEnd:                     capitalEnd,
				PassiveIncomeMonthly:           passiveIncomeMonthly,
				PassiveIncomeInflationAdjusted: adjusted,
			}
			if capped {
				projection.Warning = CappedWarning
			}
			if !yield(projection) {
				return
			}

			currentCapital = capitalEnd

			if p.ConsiderInflation && inFormationPeriod {
				currentMonthlyInvestment = mathutil.SafeNumber(
					math.Min(currentMonthlyInvestment*(1+inflationRate), maxMonthlyInvestment))
			}
		}
	}, nil
}

// Project validates p and returns every yearly projection in age order.
func Project(p Parameters) ([]YearlyProjection, error) {
	seq, err := Sequence(p)
	if err != nil {
		return nil, err
	}

	projections := make([]YearlyProjection, 0, max(p.FinalAge()-p.StartingAge+1, 0))
	for projection := range seq {
		projections = append(projections, projection)
	}
	return projections, nil
}

// TotalInvested sums the contributions made over the projections.
func TotalInvested(projections []YearlyProjection) float64 {
	total := 0.0
	for _, projection := range projections {
		total += projection.YearlyInvestment
	}
	return total
}
