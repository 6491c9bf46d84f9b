package main

import (
	"github.com/iwvelando/mortgage-calculator/pkg/investment"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func (a *app) renderer(cmd *cobra.Command) (*output.Renderer, error) {
	return output.NewRenderer(cmd.OutOrStdout(), a.conf.Output.Format)
}

func loanFlags(flags *pflag.FlagSet, p *mortgage.LoanParameters) {
	flags.Float64Var(&p.PropertyValue, "property-value", 0, "property value")
	flags.Float64Var(&p.DownPaymentPercent, "down-payment", 20, "down payment, percent of the property value")
	flags.IntVar(&p.LoanTermYears, "years", 30, "loan term in years")
	flags.Float64Var(&p.AnnualInterestRatePercent, "rate", 0, "annual interest rate in percent")
}

func newMortgageCmd(a *app) *cobra.Command {
	var params mortgage.LoanParameters
	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Calculate the monthly payment and totals of a mortgage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateLoanParameters(params); err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			result := mortgage.Compute(params)
			a.logger.Debug("computed mortgage",
				zap.String("op", "main.mortgage"),
				zap.Float64("monthlyPayment", result.MonthlyPayment),
			)
			return r.Mortgage(result)
		},
	}
	loanFlags(cmd.Flags(), &params)
	_ = cmd.MarkFlagRequired("property-value")
	return cmd
}

func newTermCmd(a *app) *cobra.Command {
	var propertyValue, downPayment, payment, rate float64
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Find the loan term a monthly payment affords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidatePaymentParameters(propertyValue, downPayment, payment, rate); err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return r.Term(mortgage.SolveTermYears(propertyValue, downPayment, payment, rate))
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&propertyValue, "property-value", 0, "property value")
	flags.Float64Var(&downPayment, "down-payment", 20, "down payment, percent of the property value")
	flags.Float64Var(&payment, "payment", 0, "monthly payment")
	flags.Float64Var(&rate, "rate", 0, "annual interest rate in percent")
	_ = cmd.MarkFlagRequired("property-value")
	_ = cmd.MarkFlagRequired("payment")
	return cmd
}

func newAccelerateCmd(a *app) *cobra.Command {
	var (
		params mortgage.LoanParameters
		accel  mortgage.AccelerationParameters
		mode   string
	)
	cmd := &cobra.Command{
		Use:   "accelerate",
		Short: "Simulate a period of elevated payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := mortgage.ParseMode(mode)
			if err != nil {
				return err
			}
			accel.Mode = parsed
			if err := validation.ValidateLoanParameters(params); err != nil {
				return err
			}
			if err := validation.ValidateAccelerationParameters(accel); err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			result, err := mortgage.Simulate(mortgage.Compute(params), accel)
			if err != nil {
				return err
			}
			return r.Accelerated(result)
		},
	}
	flags := cmd.Flags()
	loanFlags(flags, &params)
	flags.IntVar(&accel.AccelerationMonths, "months", 12, "number of months with elevated payments")
	flags.Float64Var(&accel.PaymentMultiplier, "multiplier", 1.5, "payment multiplier during acceleration")
	flags.StringVar(&mode, "mode", string(mortgage.ModeShorterTerm), "shorter-term or lower-payments")
	_ = cmd.MarkFlagRequired("property-value")
	return cmd
}

func newScheduleCmd(a *app) *cobra.Command {
	var params mortgage.LoanParameters
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the month-by-month amortization schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateLoanParameters(params); err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return r.Schedule(mortgage.GenerateSchedule(a.logger, mortgage.Compute(params)))
		},
	}
	loanFlags(cmd.Flags(), &params)
	_ = cmd.MarkFlagRequired("property-value")
	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	params := investment.Parameters{
		StartingAge:            30,
		EndCapitalFormationAge: 60,
		ConsiderInflation:      true,
	}
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the growth of regular investments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateInvestmentParameters(params); err != nil {
				return err
			}
			projections, err := investment.Project(params)
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return r.Projection(projections)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&params.StartingAge, "starting-age", params.StartingAge, "age at the first contribution")
	flags.Float64Var(&params.InitialCapital, "initial-capital", 0, "capital invested up front")
	flags.Float64Var(&params.MonthlyInvestment, "monthly", 0, "monthly contribution")
	flags.Float64Var(&params.AnnualReturnPercent, "return", 7, "expected annual return in percent")
	flags.Float64Var(&params.AnnualInflationPercent, "inflation", 3, "expected annual inflation in percent")
	flags.IntVar(&params.EndCapitalFormationAge, "end-age", params.EndCapitalFormationAge, "age at the last contribution")
	flags.BoolVar(&params.ConsiderInflation, "consider-inflation", params.ConsiderInflation, "report inflation-adjusted passive income")
	flags.BoolVar(&params.ReinvestAfterFormation, "reinvest", false, "keep reinvesting returns after the formation period")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Suggest return and inflation rates from historical data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			return r.Suggestions(investment.Suggest(a.now()))
		},
	}
}
