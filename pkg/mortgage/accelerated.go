package mortgage

import (
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
)

// Mode selects what an accelerated repayment is traded for.
type Mode string

const (
	// ModeShorterTerm keeps the original payment after the acceleration window and shortens the term.
	ModeShorterTerm Mode = "shorter-term"

	// ModeLowerPayments keeps the original term and lowers the payment after the acceleration window.
	ModeLowerPayments Mode = "lower-payments"
)

// ErrUnknownMode is returned for a repayment mode other than ModeShorterTerm or ModeLowerPayments.
var ErrUnknownMode = errors.New("unknown repayment mode")

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeShorterTerm, ModeLowerPayments:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// AccelerationParameters describes a period of elevated payments.
type AccelerationParameters struct {
	AccelerationMonths int     `json:"accelerationMonths" yaml:"accelerationMonths"`
	PaymentMultiplier  float64 `json:"paymentMultiplier" yaml:"paymentMultiplier"`
	Mode               Mode    `json:"mode" yaml:"mode"`
}

// AcceleratedResult is the outcome of an accelerated repayment relative to the base schedule.
type AcceleratedResult struct {
	Mode                      Mode    `json:"mode" yaml:"mode"`
	NewTotalMonths            int     `json:"newTotalMonths" yaml:"newTotalMonths"`
	MonthsSaved               int     `json:"monthsSaved" yaml:"monthsSaved"`
	YearsSaved                int     `json:"yearsSaved" yaml:"yearsSaved"`
	RemainingMonthsSaved      int     `json:"remainingMonthsSaved" yaml:"remainingMonthsSaved"`
	NewMonthlyPayment         float64 `json:"newMonthlyPayment" yaml:"newMonthlyPayment"`
	AcceleratedMonthlyPayment float64 `json:"acceleratedMonthlyPayment" yaml:"acceleratedMonthlyPayment"`
	MonthlySavings            float64 `json:"monthlySavings" yaml:"monthlySavings"`
	InterestSavings           float64 `json:"interestSavings" yaml:"interestSavings"`
	OriginalTotalPayment      float64 `json:"originalTotalPayment" yaml:"originalTotalPayment"`
	NewTotalPayment           float64 `json:"newTotalPayment" yaml:"newTotalPayment"`
	PaidOffDuringAcceleration bool    `json:"paidOffDuringAcceleration" yaml:"paidOffDuringAcceleration"`
}

// balanceTolerance absorbs floating point residue left after the last payment.
const balanceTolerance = 1e-6

// accelerationWindow is the state of the loan at the end of the elevated payments.
type accelerationWindow struct {
	remaining     float64 // negative when the last payment overshot the balance
	monthsCounter int
	paidOff       bool
}

func simulateWindow(loanAmount, payment, monthlyRate float64, months int) accelerationWindow {
	w := accelerationWindow{remaining: loanAmount}
	for i := 0; i < months; i++ {
		if w.remaining <= 0 {
			break
		}
		interest := w.remaining * monthlyRate
		w.remaining -= payment - interest
		w.monthsCounter++
	}
	w.paidOff = w.remaining <= 0
	return w
}

// amortizeRemaining repays balance with a fixed payment for at most maxMonths
// and returns the months used and the amount paid. The final payment covers
// only the outstanding balance and its interest.
func amortizeRemaining(balance, payment, monthlyRate float64, maxMonths int) (int, float64) {
	months, paid := 0, 0.0
	for months < maxMonths && balance > balanceTolerance {
		interest := balance * monthlyRate
		if balance+interest <= payment {
			paid += balance + interest
			balance = 0
		} else {
			paid += payment
			balance -= payment - interest
		}
		months++
	}
	if balance > 0 {
		paid += balance
	}
	return months, paid
}

// Simulate applies params to the base mortgage and reports the effect on the
// term or on the monthly payment, depending on params.Mode.
//
// Payments made during the window are accounted as acceleratedPayment per
// simulated month. The last payment of the loan, inside or after the window,
// only covers the outstanding balance and its interest, so every month is
// counted once and the total never falls below the principal.
func Simulate(base AmortizationResult, params AccelerationParameters) (AcceleratedResult, error) {
	if _, err := ParseMode(string(params.Mode)); err != nil {
		return AcceleratedResult{}, err
	}

	originalTotalMonths := base.TotalMonths()
	originalPayment := base.MonthlyPayment
	acceleratedPayment := originalPayment * params.PaymentMultiplier
	monthlyRate := mathutil.MonthlyRate(base.InterestRatePercent)

	w := simulateWindow(base.LoanAmount, acceleratedPayment, monthlyRate, params.AccelerationMonths)

	result := AcceleratedResult{
		Mode:                      params.Mode,
		NewTotalMonths:            originalTotalMonths,
		NewMonthlyPayment:         originalPayment,
		AcceleratedMonthlyPayment: acceleratedPayment,
		OriginalTotalPayment:      originalPayment * float64(originalTotalMonths),
		PaidOffDuringAcceleration: w.paidOff,
	}

	windowPaid := acceleratedPayment * float64(w.monthsCounter)
	if w.paidOff {
		windowPaid += w.remaining
	}

	switch params.Mode {
	case ModeShorterTerm:
		if w.paidOff {
			result.NewTotalMonths = w.monthsCounter
			result.NewTotalPayment = windowPaid
			break
		}
		months, paid := amortizeRemaining(w.remaining, originalPayment, monthlyRate, originalTotalMonths-w.monthsCounter)
		result.NewTotalMonths = w.monthsCounter + months
		result.NewTotalPayment = windowPaid + paid

	case ModeLowerPayments:
		remainingTerm := originalTotalMonths - params.AccelerationMonths
		switch {
		case w.paidOff:
			result.NewTotalMonths = w.monthsCounter
			result.NewMonthlyPayment = 0
			result.MonthlySavings = originalPayment
		case remainingTerm > 0:
			result.NewMonthlyPayment = CalculateMonthlyPayment(w.remaining, base.InterestRatePercent, remainingTerm)
			result.MonthlySavings = originalPayment - result.NewMonthlyPayment
		}
		result.NewTotalPayment = windowPaid + result.NewMonthlyPayment*float64(max(remainingTerm, 0))
	}

	result.MonthsSaved = originalTotalMonths - result.NewTotalMonths
	result.YearsSaved = result.MonthsSaved / constants.MonthsPerYear
	result.RemainingMonthsSaved = result.MonthsSaved % constants.MonthsPerYear

	originalInterest := result.OriginalTotalPayment - base.LoanAmount
	newInterest := result.NewTotalPayment - base.LoanAmount
	result.InterestSavings = originalInterest - newInterest

	return result, nil
}
