package server

import (
	"errors"
	"net/http"

	"github.com/iwvelando/mortgage-calculator/internal/chat"
	"go.uber.org/zap"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (h *handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	const op = "server.handleChat"

	var req chatRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}
	if h.chat == nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, "API configuration error", op)
		return
	}

	reply, err := h.chat.Send(r.Context(), req.SessionID, req.Message)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, chat.ErrEmptyMessage):
		h.respondErrorWithOp(w, http.StatusBadRequest, "Message is required", op)
	case errors.Is(err, chat.ErrNotConfigured):
		h.respondErrorWithOp(w, http.StatusInternalServerError, "API configuration error", op)
	default:
		h.logger.Error("chat request failed", zap.String("op", op), zap.Error(err))
		h.respondErrorWithOp(w, http.StatusInternalServerError, "Failed to process chat request", op)
	}
}
