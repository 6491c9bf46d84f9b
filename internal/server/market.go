package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/money"
	"go.uber.org/zap"
)

type conversionResponse struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Result float64 `json:"result"`
	Source string  `json:"source"`
}

func (h *handler) handleBankOffers(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.rates == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "rates unavailable", "server.handleBankOffers")
		return
	}
	h.writeJSON(w, http.StatusOK, h.rates.BankOffers())
}

func (h *handler) handleBaseRate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.rates == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "rates unavailable", "server.handleBaseRate")
		return
	}
	h.writeJSON(w, http.StatusOK, h.rates.BaseRate())
}

// handleExchangeRates returns PLN rates, or converts ?amount= from ?from= to ?to=.
func (h *handler) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	const op = "server.handleExchangeRates"
	if h.rates == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "rates unavailable", op)
		return
	}

	query := r.URL.Query()
	var (
		amount     money.Money
		converting = query.Has("amount")
	)
	if converting {
		parsed, err := money.Parse(query.Get("amount"))
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid amount", op)
			return
		}
		amount = parsed
	}

	exchange, err := h.rates.ExchangeRates(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable,
			"Failed to fetch exchange rates. Please try again later.", op)
		return
	}
	if !converting {
		h.writeJSON(w, http.StatusOK, exchange)
		return
	}

	from := strings.ToUpper(strings.TrimSpace(query.Get("from")))
	if from == "" {
		from = constants.BaseCurrency
	}
	to := strings.ToUpper(strings.TrimSpace(query.Get("to")))
	if to == "" {
		to = constants.BaseCurrency
	}
	converted, err := money.Convert(amount, from, to, exchange.Rates)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, money.ErrUnknownCurrency) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, conversionResponse{
		Amount: amount.Float(),
		From:   from,
		To:     to,
		Result: converted.Round().Float(),
		Source: exchange.Source,
	})
}

func (h *handler) handleCities(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	const op = "server.handleCities"
	if h.listings == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "listings database unavailable", op)
		return
	}

	cities, err := h.listings.Cities(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch cities", zap.String("op", op), zap.Error(err))
		h.respondErrorWithOp(w, http.StatusInternalServerError, "Failed to fetch cities", op)
		return
	}
	h.writeJSON(w, http.StatusOK, cities)
}

func (h *handler) handleCityStats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	const op = "server.handleCityStats"

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "City parameter is required", op)
		return
	}
	if h.listings == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "listings database unavailable", op)
		return
	}

	stats, err := h.listings.CityStats(r.Context(), city)
	if err != nil {
		h.logger.Error("failed to fetch city stats", zap.String("op", op), zap.String("city", city), zap.Error(err))
		h.respondErrorWithOp(w, http.StatusInternalServerError, "Failed to fetch city stats", op)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *handler) handleCitySummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	const op = "server.handleCitySummary"
	if h.listings == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "listings database unavailable", op)
		return
	}

	summary, err := h.listings.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to summarise cities", zap.String("op", op), zap.Error(err))
		h.respondErrorWithOp(w, http.StatusInternalServerError, "Failed to fetch city stats", op)
		return
	}
	limit := len(summary)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}
	h.writeJSON(w, http.StatusOK, summary[:limit])
}
