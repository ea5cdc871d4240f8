package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relayforge/chatrelay/internal/conversation"
	"github.com/relayforge/chatrelay/pkg/logging"
)

const (
	defaultAdminTurnLimit = 50
	maxAdminTurnLimit     = 500
)

// TurnReader is the read-side of the conversation store.
type TurnReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]conversation.Turn, error)
}

// AdminConversationsHandler exposes conversation transcripts to operators.
type AdminConversationsHandler struct {
	store  TurnReader
	logger *logging.Logger
}

// NewAdminConversationsHandler creates the admin transcript handler.
func NewAdminConversationsHandler(store TurnReader, logger *logging.Logger) *AdminConversationsHandler {
	if store == nil {
		panic("handlers: turn reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminConversationsHandler{store: store, logger: logger}
}

type turnResponse struct {
	Sequence  int64     `json:"sequence"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// GetTurns handles GET /admin/conversations/{userID}/turns.
func (h *AdminConversationsHandler) GetTurns(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	limit := defaultAdminTurnLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if parsed > maxAdminTurnLimit {
			parsed = maxAdminTurnLimit
		}
		limit = parsed
	}

	turns, err := h.store.Recent(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to read conversation turns", "error", err, "user_id", userID)
		http.Error(w, "failed to read conversation", http.StatusInternalServerError)
		return
	}

	response := struct {
		UserID string         `json:"user_id"`
		Turns  []turnResponse `json:"turns"`
	}{UserID: userID, Turns: make([]turnResponse, 0, len(turns))}
	for _, turn := range turns {
		response.Turns = append(response.Turns, turnResponse{
			Sequence:  turn.Sequence,
			Role:      turn.Role,
			Content:   turn.Content,
			CreatedAt: turn.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
