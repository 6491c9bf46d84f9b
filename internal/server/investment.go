package server

import (
	"net/http"

	"github.com/iwvelando/mortgage-calculator/pkg/investment"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

type projectionResponse struct {
	Projections   []investment.YearlyProjection `json:"projections"`
	TotalInvested float64                       `json:"totalInvested"`
	FinalCapital  float64                       `json:"finalCapital"`
	Warnings      []string                      `json:"warnings,omitempty"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleProjection"

	var params investment.Parameters
	if !h.decodeJSON(w, r, &params, op) {
		return
	}
	if err := validation.ValidateInvestmentParameters(params); err != nil {
		h.metrics.ObserveCalculation("projection", err)
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	projections, err := investment.Project(params)
	h.metrics.ObserveCalculation("projection", err)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	resp := projectionResponse{
		Projections:   projections,
		TotalInvested: investment.TotalInvested(projections),
	}
	if n := len(projections); n > 0 {
		resp.FinalCapital = projections[n-1].CapitalEnd
	}
	seen := map[string]bool{}
	for _, p := range projections {
		if p.Warning != "" && !seen[p.Warning] {
			seen[p.Warning] = true
			resp.Warnings = append(resp.Warnings, p.Warning)
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, investment.Suggest(h.now()))
}
