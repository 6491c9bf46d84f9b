package mortgage

import (
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int     `json:"month" yaml:"month"`
	Payment            float64 `json:"payment" yaml:"payment"`
	Principal          float64 `json:"principal" yaml:"principal"`
	Interest           float64 `json:"interest" yaml:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal" yaml:"remainingPrincipal"`
}

// GenerateSchedule creates the month-by-month amortization schedule for a
// mortgage. The final row absorbs rounding so the remaining principal ends at
// exactly zero.
func GenerateSchedule(logger *zap.Logger, result AmortizationResult) []Payment {
	if logger == nil {
		logger = zap.NewNop()
	}

	termMonths := result.TotalMonths()
	if termMonths <= 0 || result.LoanAmount <= 0 {
		return nil
	}

	schedule := make([]Payment, 0, termMonths)
	remaining := result.LoanAmount

	for month := 1; month <= termMonths; month++ {
		var current Payment
		current.Month = month
		current.Interest = CalculateInterestPayment(remaining, result.InterestRatePercent)
		current.Principal = result.MonthlyPayment - current.Interest

		if month == termMonths || mathutil.Round(remaining-current.Principal) <= 0 {
			// Settle the balance; otherwise machine error leaves a few cents behind.
			current.Principal = remaining
			current.Payment = current.Principal + current.Interest
			current.RemainingPrincipal = 0
			schedule = append(schedule, current)
			if month < termMonths {
				logger.Debug(fmt.Sprintf("loan paid off at month %d of %d", month, termMonths),
					zap.String("op", "mortgage.GenerateSchedule"),
				)
			}
			break
		}

		current.Payment = result.MonthlyPayment
		current.RemainingPrincipal = remaining - current.Principal
		remaining = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	return schedule
}
