package server

import (
	"bytes"
	"net/http"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

type termRequest struct {
	PropertyValue             float64 `json:"propertyValue"`
	DownPaymentPercent        float64 `json:"downPaymentPercent"`
	MonthlyPayment            float64 `json:"monthlyPayment"`
	AnnualInterestRatePercent float64 `json:"interestRate"`
}

type termResponse struct {
	LoanTerm int `json:"loanTerm"`
}

type acceleratedRequest struct {
	mortgage.LoanParameters
	mortgage.AccelerationParameters
}

type acceleratedResponse struct {
	Base        mortgage.AmortizationResult `json:"base"`
	Accelerated mortgage.AcceleratedResult  `json:"accelerated"`
}

type scheduleResponse struct {
	Summary  mortgage.AmortizationResult `json:"summary"`
	Schedule []mortgage.Payment          `json:"schedule"`
	CSV      string                      `json:"csv"`
}

// decodeLoan reads and validates loan parameters, answering the client on failure.
func (h *handler) decodeLoan(w http.ResponseWriter, r *http.Request, op string) (mortgage.LoanParameters, bool) {
	var params mortgage.LoanParameters
	if !h.decodeJSON(w, r, &params, op) {
		return params, false
	}
	if err := validation.ValidateLoanParameters(params); err != nil {
		h.metrics.ObserveCalculation("mortgage", err)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return params, false
	}
	return params, true
}

func (h *handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	params, ok := h.decodeLoan(w, r, "server.handleMortgage")
	if !ok {
		return
	}

	result := mortgage.Compute(params)
	h.metrics.ObserveCalculation("mortgage", nil)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleTerm(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleTerm"

	var req termRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	err := validation.ValidatePaymentParameters(req.PropertyValue, req.DownPaymentPercent, req.MonthlyPayment, req.AnnualInterestRatePercent)
	h.metrics.ObserveCalculation("term", err)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	years := mortgage.SolveTermYears(req.PropertyValue, req.DownPaymentPercent, req.MonthlyPayment, req.AnnualInterestRatePercent)
	h.writeJSON(w, http.StatusOK, termResponse{LoanTerm: years})
}

func (h *handler) handleAccelerated(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleAccelerated"

	var req acceleratedRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if err := validation.ValidateLoanParameters(req.LoanParameters); err != nil {
		h.metrics.ObserveCalculation("accelerated", err)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := validation.ValidateAccelerationParameters(req.AccelerationParameters); err != nil {
		h.metrics.ObserveCalculation("accelerated", err)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	base := mortgage.Compute(req.LoanParameters)
	accelerated, err := mortgage.Simulate(base, req.AccelerationParameters)
	h.metrics.ObserveCalculation("accelerated", err)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, acceleratedResponse{Base: base, Accelerated: accelerated})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleSchedule"

	params, ok := h.decodeLoan(w, r, op)
	if !ok {
		return
	}

	summary := mortgage.Compute(params)
	schedule := mortgage.GenerateSchedule(h.logger, summary)
	h.metrics.ObserveCalculation("schedule", nil)

	var csv bytes.Buffer
	if err := output.ScheduleCSV(&csv, schedule); err != nil {
		h.logger.Warn("failed to render schedule CSV",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{Summary: summary, Schedule: schedule, CSV: csv.String()})
}
