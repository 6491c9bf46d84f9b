package investment

import (
	"errors"
	"math"
	"testing"
)

func referenceParameters() Parameters {
	return Parameters{
		StartingAge:            30,
		InitialCapital:         10000,
		MonthlyInvestment:      1000,
		AnnualReturnPercent:    7,
		AnnualInflationPercent: 2.5,
		EndCapitalFormationAge: 45,
		ConsiderInflation:      true,
		ReinvestAfterFormation: true,
	}
}

func TestProjectReferenceScenario(t *testing.T) {
	projections, err := Project(referenceParameters())
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if len(projections) != 36 {
		t.Fatalf("expected 36 yearly entries, got %d", len(projections))
	}
	if projections[0].Age != 30 || projections[35].Age != 65 {
		t.Errorf("ages span %d..%d, expected 30..65", projections[0].Age, projections[35].Age)
	}

	for i := 1; i < len(projections); i++ {
		if projections[i].CapitalStart != projections[i-1].CapitalEnd {
			t.Errorf("age %d: CapitalStart %.2f != previous CapitalEnd %.2f",
				projections[i].Age, projections[i].CapitalStart, projections[i-1].CapitalEnd)
		}
		if projections[i].Age <= 45 && projections[i].CapitalEnd <= projections[i-1].CapitalEnd {
			t.Errorf("age %d: CapitalEnd %.2f did not increase", projections[i].Age, projections[i].CapitalEnd)
		}
	}

	first := projections[0]
	if math.Abs(first.InterestGained-1120) > 0.001 || math.Abs(first.CapitalEnd-23120) > 0.001 {
		t.Errorf("first year interest %.2f capital %.2f, expected 1120 and 23120", first.InterestGained, first.CapitalEnd)
	}
	if first.PassiveIncomeInflationAdjusted == nil || math.Abs(*first.PassiveIncomeInflationAdjusted-58.33) > 0.01 {
		t.Errorf("first year inflation adjusted income = %v, expected 58.33", first.PassiveIncomeInflationAdjusted)
	}

	second := projections[1]
	if math.Abs(second.YearlyInvestment-12300) > 0.001 {
		t.Errorf("second year investment = %.2f, expected 12300 after inflation", second.YearlyInvestment)
	}

	last := projections[35]
	if math.Abs(last.CapitalEnd-1681746.61) > 1 {
		t.Errorf("final capital = %.2f, expected about 1681746.61", last.CapitalEnd)
	}
	if last.YearlyInvestment != 0 {
		t.Errorf("final year investment = %.2f, expected 0 after formation", last.YearlyInvestment)
	}
	for _, p := range projections {
		if p.Warning != "" {
			t.Errorf("age %d: unexpected warning %q", p.Age, p.Warning)
		}
	}
}

func TestProjectWithoutReinvestment(t *testing.T) {
	params := referenceParameters()
	params.ConsiderInflation = false
	params.ReinvestAfterFormation = false

	projections, err := Project(params)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	formationEnd := projections[15]
	if formationEnd.Age != 45 {
		t.Fatalf("expected age 45 at index 15, got %d", formationEnd.Age)
	}
	for _, p := range projections[16:] {
		if p.CapitalEnd != formationEnd.CapitalEnd {
			t.Errorf("age %d: capital changed to %.2f without reinvestment", p.Age, p.CapitalEnd)
		}
		if math.Abs(p.InterestGained-formationEnd.CapitalEnd*0.07) > 0.001 {
			t.Errorf("age %d: interest %.2f, expected %.2f", p.Age, p.InterestGained, formationEnd.CapitalEnd*0.07)
		}
		if p.PassiveIncomeInflationAdjusted != nil {
			t.Errorf("age %d: inflation adjusted income should be nil", p.Age)
		}
	}
	if math.Abs(projections[16].PassiveIncomeMonthly-2192.70) > 0.01 {
		t.Errorf("passive income = %.2f, expected 2192.70", projections[16].PassiveIncomeMonthly)
	}
}

func TestProjectValidation(t *testing.T) {
	tests := []struct {
		name      string
		returnPct float64
		inflation float64
		wantErr   error
	}{
		{"Unrealistic return", 55, 2, ErrUnrealisticReturn},
		{"Extreme inflation", 7, 35, ErrExtremeInflation},
		{"Return at limit", 50, 2, nil},
		{"Inflation at limit", 7, 30, nil},
		{"Both at limit", 50, 30, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := referenceParameters()
			params.AnnualReturnPercent = tt.returnPct
			params.AnnualInflationPercent = tt.inflation

			projections, err := Project(params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Project() error = %v, expected %v", err, tt.wantErr)
				}
				if projections != nil {
					t.Error("expected no projections on validation failure")
				}
				return
			}
			if err != nil {
				t.Errorf("Project() unexpected error = %v", err)
			}
			if len(projections) != 36 {
				t.Errorf("expected 36 entries, got %d", len(projections))
			}
		})
	}
}

func TestProjectCapsInflationFactor(t *testing.T) {
	params := Parameters{
		StartingAge:            20,
		InitialCapital:         1000,
		MonthlyInvestment:      100,
		AnnualReturnPercent:    5,
		AnnualInflationPercent: 30,
		EndCapitalFormationAge: 40,
		ConsiderInflation:      true,
		ReinvestAfterFormation: true,
	}

	projections, err := Project(params)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	// 1.3^12 is the first factor above 20.
	if projections[11].Warning != "" {
		t.Errorf("age %d: unexpected warning", projections[11].Age)
	}
	capped := projections[12]
	if capped.Warning != CappedWarning {
		t.Errorf("age %d: warning = %q, expected %q", capped.Age, capped.Warning, CappedWarning)
	}
	if math.Abs(*capped.PassiveIncomeInflationAdjusted-capped.PassiveIncomeMonthly/20) > 1e-9 {
		t.Errorf("adjusted income %.4f, expected monthly income divided by 20", *capped.PassiveIncomeInflationAdjusted)
	}

	// Contributions stop growing at four times the original amount.
	for _, p := range projections {
		if p.YearlyInvestment > 100*12*4+1e-9 {
			t.Errorf("age %d: yearly investment %.2f exceeds the cap", p.Age, p.YearlyInvestment)
		}
	}
	if math.Abs(projections[20].YearlyInvestment-4800) > 1e-9 {
		t.Errorf("yearly investment at formation end = %.2f, expected 4800", projections[20].YearlyInvestment)
	}
}

func TestProjectCapsRunawayGrowth(t *testing.T) {
	params := Parameters{
		StartingAge:            0,
		InitialCapital:         1e12,
		MonthlyInvestment:      1e9,
		AnnualReturnPercent:    50,
		EndCapitalFormationAge: 30,
		ReinvestAfterFormation: true,
	}

	projections, err := Project(params)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	last := projections[len(projections)-1]
	if last.CapitalEnd != MaxSafeValue {
		t.Errorf("final capital = %v, expected the safety ceiling %v", last.CapitalEnd, MaxSafeValue)
	}
	if last.Warning != CappedWarning {
		t.Errorf("final warning = %q, expected %q", last.Warning, CappedWarning)
	}
	for _, p := range projections {
		if math.IsInf(p.CapitalEnd, 0) || math.IsNaN(p.CapitalEnd) {
			t.Fatalf("age %d: non-finite capital", p.Age)
		}
	}
}

func TestProjectNonFiniteInputs(t *testing.T) {
	params := referenceParameters()
	params.InitialCapital = math.Inf(1)
	params.MonthlyInvestment = math.NaN()

	projections, err := Project(params)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if projections[0].CapitalStart != 0 || projections[0].YearlyInvestment != 0 {
		t.Errorf("non-finite inputs should start from zero, got capital %v investment %v",
			projections[0].CapitalStart, projections[0].YearlyInvestment)
	}
}

func TestSequenceIsRestartable(t *testing.T) {
	seq, err := Sequence(referenceParameters())
	if err != nil {
		t.Fatalf("Sequence() error = %v", err)
	}

	var first []YearlyProjection
	for p := range seq {
		first = append(first, p)
	}
	var second []YearlyProjection
	for p := range seq {
		second = append(second, p)
	}

	if len(first) != len(second) {
		t.Fatalf("re-ranging produced %d entries, expected %d", len(second), len(first))
	}
	for i := range first {
		if first[i].CapitalEnd != second[i].CapitalEnd {
			t.Errorf("entry %d differs between ranges: %.2f vs %.2f", i, first[i].CapitalEnd, second[i].CapitalEnd)
		}
	}

	count := 0
	for range seq {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("early break stopped after %d entries, expected 3", count)
	}
}

func TestSequenceRejectsBeforeIterating(t *testing.T) {
	params := referenceParameters()
	params.AnnualReturnPercent = 75
	seq, err := Sequence(params)
	if !errors.Is(err, ErrUnrealisticReturn) {
		t.Errorf("Sequence() error = %v, expected ErrUnrealisticReturn", err)
	}
	if seq != nil {
		t.Error("Sequence() returned a sequence for invalid parameters")
	}
}

func TestTotalInvested(t *testing.T) {
	params := referenceParameters()
	params.ConsiderInflation = false

	projections, err := Project(params)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	// Sixteen years of 12000 each.
	if total := TotalInvested(projections); math.Abs(total-192000) > 0.001 {
		t.Errorf("TotalInvested() = %.2f, expected 192000", total)
	}
	if total := TotalInvested(nil); total != 0 {
		t.Errorf("TotalInvested(nil) = %.2f, expected 0", total)
	}
}
