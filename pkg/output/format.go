// Package output renders calculation results as a pretty table, CSV or YAML.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/investment"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Renderer writes results to w in a single output format.
type Renderer struct {
	w       io.Writer
	format  string
	printer *message.Printer
}

// NewRenderer returns a Renderer for one of the supported output formats.
func NewRenderer(w io.Writer, outputFormat string) (*Renderer, error) {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return nil, err
	}
	return &Renderer{
		w:       w,
		format:  outputFormat,
		printer: message.NewPrinter(language.English),
	}, nil
}

func (r *Renderer) yaml(v any) error {
	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// Mortgage renders an amortization summary.
func (r *Renderer) Mortgage(result mortgage.AmortizationResult) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(result)
	case constants.OutputFormatCSV:
		_, err := fmt.Fprintf(r.w, `"propertyValue","downPayment","loanAmount","monthlyPayment","totalPayment","totalInterest","loanTerm","interestRate","loanToValue"`+"\n"+
			`"%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%d","%.2f","%.2f"`+"\n",
			result.PropertyValue, result.DownPayment, result.LoanAmount, result.MonthlyPayment, result.TotalPayment,
			result.TotalInterest, result.LoanTermYears, result.InterestRatePercent, result.LoanToValuePercent)
		return err
	}

	rows := []struct {
		label string
		value string
	}{
		{"Property value", format.Currency(result.PropertyValue, constants.BaseCurrency)},
		{"Down payment", format.Currency(result.DownPayment, constants.BaseCurrency)},
		{"Loan amount", format.Currency(result.LoanAmount, constants.BaseCurrency)},
		{"Interest rate", fmt.Sprintf("%.2f%%", result.InterestRatePercent)},
		{"Loan term", format.Months(result.TotalMonths())},
		{"Loan to value", fmt.Sprintf("%.2f%%", result.LoanToValuePercent)},
		{"Monthly payment", format.Currency(result.MonthlyPayment, constants.BaseCurrency)},
		{"Total payment", format.Currency(result.TotalPayment, constants.BaseCurrency)},
		{"Total interest", format.Currency(result.TotalInterest, constants.BaseCurrency)},
	}

	if _, err := fmt.Fprintf(r.w, "--- Mortgage ---\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(r.w, "%-16s | %s\n", row.label, row.value); err != nil {
			return err
		}
	}
	return nil
}

// Term renders the solved loan term.
func (r *Renderer) Term(years int) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(map[string]int{"loanTerm": years})
	case constants.OutputFormatCSV:
		_, err := fmt.Fprintf(r.w, "\"loanTerm\"\n\"%d\"\n", years)
		return err
	}
	_, err := fmt.Fprintf(r.w, "Loan term | %s\n", format.Months(years*constants.MonthsPerYear))
	return err
}

// Accelerated renders the effect of an accelerated repayment.
func (r *Renderer) Accelerated(result mortgage.AcceleratedResult) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(result)
	case constants.OutputFormatCSV:
		_, err := fmt.Fprintf(r.w, `"mode","newTotalMonths","monthsSaved","newMonthlyPayment","acceleratedMonthlyPayment","monthlySavings","interestSavings","originalTotalPayment","newTotalPayment"`+"\n"+
			`"%s","%d","%d","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f"`+"\n",
			result.Mode, result.NewTotalMonths, result.MonthsSaved, result.NewMonthlyPayment, result.AcceleratedMonthlyPayment,
			result.MonthlySavings, result.InterestSavings, result.OriginalTotalPayment, result.NewTotalPayment)
		return err
	}

	p := r.printer
	lines := []string{
		fmt.Sprintf("--- Accelerated repayment (%s) ---\n", result.Mode),
		p.Sprintf("Accelerated payment | %.2f\n", result.AcceleratedMonthlyPayment),
		fmt.Sprintf("New term            | %s\n", format.Months(result.NewTotalMonths)),
		fmt.Sprintf("Time saved          | %s\n", format.Months(result.MonthsSaved)),
		p.Sprintf("New payment         | %.2f\n", result.NewMonthlyPayment),
		p.Sprintf("Monthly savings     | %.2f\n", result.MonthlySavings),
		p.Sprintf("Interest savings    | %.2f\n", result.InterestSavings),
		p.Sprintf("Total payment       | %.2f -> %.2f\n", result.OriginalTotalPayment, result.NewTotalPayment),
	}
	if result.PaidOffDuringAcceleration {
		lines = append(lines, "Loan is paid off during the accelerated period\n")
	}
	for _, line := range lines {
		if _, err := io.WriteString(r.w, line); err != nil {
			return err
		}
	}
	return nil
}

// Schedule renders an amortization schedule.
func (r *Renderer) Schedule(schedule []mortgage.Payment) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(schedule)
	case constants.OutputFormatCSV:
		return ScheduleCSV(r.w, schedule)
	}

	if _, err := fmt.Fprintf(r.w, "Month | Payment | Principal | Interest | Remaining\n"); err != nil {
		return err
	}
	for _, p := range schedule {
		if _, err := r.printer.Fprintf(r.w, "%5d | %.2f | %.2f | %.2f | %.2f\n",
			p.Month, p.Payment, p.Principal, p.Interest, p.RemainingPrincipal); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleCSV writes an amortization schedule in comma-separated value format.
func ScheduleCSV(w io.Writer, schedule []mortgage.Payment) error {
	if _, err := fmt.Fprintf(w, `"month","payment","principal","interest","remainingPrincipal"`+"\n"); err != nil {
		return err
	}
	for _, p := range schedule {
		if _, err := fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%.2f"`+"\n",
			p.Month, p.Payment, p.Principal, p.Interest, p.RemainingPrincipal); err != nil {
			return err
		}
	}
	return nil
}

// Projection renders a yearly investment projection.
func (r *Renderer) Projection(projections []investment.YearlyProjection) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(projections)
	case constants.OutputFormatCSV:
		if _, err := fmt.Fprintf(r.w, `"age","capitalStart","yearlyInvestment","interestGained","capitalEnd","passiveIncomeMonthly","passiveIncomeInflationAdjusted","warning"`+"\n"); err != nil {
			return err
		}
		for _, p := range projections {
			if _, err := fmt.Fprintf(r.w, `"%d","%.2f","%.2f","%.2f","%.2f","%.2f","%s","%s"`+"\n",
				p.Age, p.CapitalStart, p.YearlyInvestment, p.InterestGained, p.CapitalEnd,
				p.PassiveIncomeMonthly, optionalAmount(p.PassiveIncomeInflationAdjusted), p.Warning); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := fmt.Fprintf(r.w, "Age | Capital start | Invested | Interest | Capital end | Monthly income | Real income | Notes\n"); err != nil {
		return err
	}
	for _, p := range projections {
		if _, err := r.printer.Fprintf(r.w, "%3d | %.2f | %.2f | %.2f | %.2f | %.2f | %s | %s\n",
			p.Age, p.CapitalStart, p.YearlyInvestment, p.InterestGained, p.CapitalEnd,
			p.PassiveIncomeMonthly, r.optionalPretty(p.PassiveIncomeInflationAdjusted), p.Warning); err != nil {
			return err
		}
	}
	_, err := r.printer.Fprintf(r.w, "Total invested | %.2f\n", investment.TotalInvested(projections))
	return err
}

// Suggestions renders historical return and inflation suggestions.
func (r *Renderer) Suggestions(s investment.Suggestions) error {
	switch r.format {
	case constants.OutputFormatYAML:
		return r.yaml(s)
	case constants.OutputFormatCSV:
		_, err := fmt.Fprintf(r.w, "\"series\",\"short\",\"medium\",\"long\"\n"+
			"\"return\",\"%.1f\",\"%.1f\",\"%.1f\"\n"+
			"\"inflation\",\"%.1f\",\"%.1f\",\"%.1f\"\n",
			s.Returns.ShortPeriod, s.Returns.MediumPeriod, s.Returns.LongPeriod,
			s.Inflation.ShortPeriod, s.Inflation.MediumPeriod, s.Inflation.LongPeriod)
		return err
	}
	_, err := fmt.Fprintf(r.w, "S&P 500 return | %.1f%% (%dy) | %.1f%% (%dy) | %.1f%% (%dy)\n"+
		"US inflation   | %.1f%% (%dy) | %.1f%% (%dy) | %.1f%% (%dy)\n"+
		"Last year inflation | %.1f%%\n",
		s.Returns.ShortPeriod, s.ReturnPeriods.Short, s.Returns.MediumPeriod, s.ReturnPeriods.Medium,
		s.Returns.LongPeriod, s.ReturnPeriods.Long,
		s.Inflation.ShortPeriod, s.InflationPeriods.Short, s.Inflation.MediumPeriod, s.InflationPeriods.Medium,
		s.Inflation.LongPeriod, s.InflationPeriods.Long, s.LastYearInflation)
	return err
}

func optionalAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func (r *Renderer) optionalPretty(v *float64) string {
	if v == nil {
		return "-"
	}
	return format.NumericCurrency(*v)
}
