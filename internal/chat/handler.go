package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chronomate/chronomate/internal/api"
	"github.com/chronomate/chronomate/internal/assistant"
	"github.com/chronomate/chronomate/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type MessageRequest struct {
	Message string `json:"message" validate:"required"`
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/chat", h.Send)
	r.Get("/chat/history", h.History)
	r.Delete("/chat/history", h.ClearHistory)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	reply, err := h.svc.Send(r.Context(), userID, ChannelHTTP, req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMessageTooLong) {
			api.HandleError(w, api.NewValidationError(err.Error()))
			return
		}
		slog.Error("processing chat message", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, reply)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	entries, err := h.svc.History(r.Context(), userID)
	if err != nil {
		slog.Error("reading chat history", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if entries == nil {
		entries = []assistant.Entry{}
	}
	api.JSON(w, http.StatusOK, entries)
}

func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if err := h.svc.ClearHistory(r.Context(), userID); err != nil {
		slog.Error("clearing chat history", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSONMessage(w, http.StatusOK, "chat history cleared")
}
