package server

import (
	"errors"
	"net/http"

	"github.com/iwvelando/mortgage-calculator/internal/scraper"
	"go.uber.org/zap"
)

type scraperStartResponse struct {
	Message string         `json:"message"`
	Status  scraper.Status `json:"status"`
}

func (h *handler) handleScraperStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.scraper == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "scraper unavailable", "server.handleScraperStatus")
		return
	}
	h.writeJSON(w, http.StatusOK, h.scraper.Status())
}

func (h *handler) handleScraperRun(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleScraperRun"
	if h.scraper == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "scraper unavailable", op)
		return
	}

	status, err := h.scraper.Start(h.runCtx)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, scraperStartResponse{Message: "Scraper started", Status: status})
	case errors.Is(err, scraper.ErrAlreadyRunning):
		h.respondErrorWithOp(w, http.StatusBadRequest, "Scraper is already running", op)
	default:
		h.logger.Error("failed to start scraper", zap.String("op", op), zap.Error(err))
		h.respondErrorWithOp(w, http.StatusInternalServerError, "Failed to start scraper", op)
	}
}

func (h *handler) handleAnalyzerStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "Otodom Analyzer API is running"})
}
