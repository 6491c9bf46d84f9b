package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/investment"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

func TestValidateLoanParameters(t *testing.T) {
	valid := mortgage.LoanParameters{
		PropertyValue:             500000,
		DownPaymentPercent:        20,
		LoanTermYears:             30,
		AnnualInterestRatePercent: 7.61,
	}

	tests := []struct {
		name      string
		modify    func(*mortgage.LoanParameters)
		expectErr bool
	}{
		{"Valid parameters", func(*mortgage.LoanParameters) {}, false},
		{"Zero rate allowed", func(p *mortgage.LoanParameters) { p.AnnualInterestRatePercent = 0 }, false},
		{"Boundaries allowed", func(p *mortgage.LoanParameters) {
			p.DownPaymentPercent = 90
			p.LoanTermYears = 5
			p.AnnualInterestRatePercent = 15
		}, false},
		{"Zero property value", func(p *mortgage.LoanParameters) { p.PropertyValue = 0 }, true},
		{"Down payment too small", func(p *mortgage.LoanParameters) { p.DownPaymentPercent = 5 }, true},
		{"Down payment too large", func(p *mortgage.LoanParameters) { p.DownPaymentPercent = 95 }, true},
		{"Term too short", func(p *mortgage.LoanParameters) { p.LoanTermYears = 4 }, true},
		{"Term too long", func(p *mortgage.LoanParameters) { p.LoanTermYears = 36 }, true},
		{"Negative rate", func(p *mortgage.LoanParameters) { p.AnnualInterestRatePercent = -1 }, true},
		{"NaN rate", func(p *mortgage.LoanParameters) { p.AnnualInterestRatePercent = math.NaN() }, true},
		{"Rate too high", func(p *mortgage.LoanParameters) { p.AnnualInterestRatePercent = 15.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.modify(&params)
			err := ValidateLoanParameters(params)

			if tt.expectErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("ValidateLoanParameters() error = %v, expected ErrOutOfRange", err)
				}
			} else if err != nil {
				t.Errorf("ValidateLoanParameters() unexpected error = %v", err)
			}
		})
	}
}

func TestValidateLoanParametersReportsEveryField(t *testing.T) {
	err := ValidateLoanParameters(mortgage.LoanParameters{})
	if err == nil {
		t.Fatal("expected an error for empty parameters")
	}
	for _, field := range []string{"propertyValue", "downPaymentPercent", "loanTermYears"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestValidatePaymentParameters(t *testing.T) {
	if err := ValidatePaymentParameters(500000, 20, 2827.05, 7.61); err != nil {
		t.Errorf("unexpected error = %v", err)
	}
	if err := ValidatePaymentParameters(500000, 20, 0, 7.61); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for zero payment, got %v", err)
	}
	if err := ValidatePaymentParameters(-1, 20, 1000, 7.61); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative property value, got %v", err)
	}
}

func TestValidateAccelerationParameters(t *testing.T) {
	tests := []struct {
		name      string
		params    mortgage.AccelerationParameters
		expectErr error
	}{
		{"Valid", mortgage.AccelerationParameters{AccelerationMonths: 12, PaymentMultiplier: 1.5, Mode: mortgage.ModeShorterTerm}, nil},
		{"Boundaries", mortgage.AccelerationParameters{AccelerationMonths: 60, PaymentMultiplier: 3.0, Mode: mortgage.ModeLowerPayments}, nil},
		{"Lower boundaries", mortgage.AccelerationParameters{AccelerationMonths: 1, PaymentMultiplier: 1.1, Mode: mortgage.ModeLowerPayments}, nil},
		{"Zero months", mortgage.AccelerationParameters{AccelerationMonths: 0, PaymentMultiplier: 1.5, Mode: mortgage.ModeShorterTerm}, ErrOutOfRange},
		{"Too many months", mortgage.AccelerationParameters{AccelerationMonths: 61, PaymentMultiplier: 1.5, Mode: mortgage.ModeShorterTerm}, ErrOutOfRange},
		{"Multiplier too small", mortgage.AccelerationParameters{AccelerationMonths: 12, PaymentMultiplier: 1.0, Mode: mortgage.ModeShorterTerm}, ErrOutOfRange},
		{"Multiplier too large", mortgage.AccelerationParameters{AccelerationMonths: 12, PaymentMultiplier: 3.5, Mode: mortgage.ModeShorterTerm}, ErrOutOfRange},
		{"Unknown mode", mortgage.AccelerationParameters{AccelerationMonths: 12, PaymentMultiplier: 1.5, Mode: "instant"}, mortgage.ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccelerationParameters(tt.params)
			if tt.expectErr == nil {
				if err != nil {
					t.Errorf("ValidateAccelerationParameters() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("ValidateAccelerationParameters() error = %v, expected %v", err, tt.expectErr)
			}
		})
	}
}

func TestValidateInvestmentParameters(t *testing.T) {
	valid := investment.Parameters{
		StartingAge:            30,
		InitialCapital:         10000,
		MonthlyInvestment:      1000,
		AnnualReturnPercent:    7,
		AnnualInflationPercent: 2.5,
		EndCapitalFormationAge: 45,
	}

	tests := []struct {
		name      string
		modify    func(*investment.Parameters)
		expectErr error
	}{
		{"Valid", func(*investment.Parameters) {}, nil},
		{"Return at limit", func(p *investment.Parameters) { p.AnnualReturnPercent = 50 }, nil},
		{"Same start and end age", func(p *investment.Parameters) { p.EndCapitalFormationAge = 30 }, nil},
		{"Unrealistic return", func(p *investment.Parameters) { p.AnnualReturnPercent = 55 }, investment.ErrUnrealisticReturn},
		{"Extreme inflation", func(p *investment.Parameters) { p.AnnualInflationPercent = 35 }, investment.ErrExtremeInflation},
		{"End before start", func(p *investment.Parameters) { p.EndCapitalFormationAge = 25 }, ErrOutOfRange},
		{"Too young", func(p *investment.Parameters) { p.StartingAge = 10 }, ErrOutOfRange},
		{"Negative capital", func(p *investment.Parameters) { p.InitialCapital = -1 }, ErrOutOfRange},
		{"Negative inflation", func(p *investment.Parameters) { p.AnnualInflationPercent = -2 }, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.modify(&params)
			err := ValidateInvestmentParameters(params)
			if tt.expectErr == nil {
				if err != nil {
					t.Errorf("ValidateInvestmentParameters() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectErr) {
				t.Errorf("ValidateInvestmentParameters() error = %v, expected %v", err, tt.expectErr)
			}
		})
	}
}
