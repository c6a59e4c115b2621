package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/services"
)

// MessageHandler handles direct-message endpoints
type MessageHandler struct {
	svc    *services.MessageService
	logger *zap.SugaredLogger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(svc *services.MessageService, logger *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.MessageSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	message, err := h.svc.Send(r.Context(), middleware.CurrentUser(r.Context()), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, message)
}

// Conversation handles GET /api/messages/{userID}
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondFailure(w, h.logger, apperr.Validation("invalid user id"))
		return
	}

	messages, err := h.svc.Conversation(r.Context(), middleware.CurrentUser(r.Context()), otherID)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// MarkRead handles PATCH /api/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	messageID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, h.logger, apperr.Validation("invalid message id"))
		return
	}

	message, err := h.svc.MarkRead(r.Context(), middleware.CurrentUser(r.Context()), messageID)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, message)
}
