package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/service"
	"github.com/harborchat/harbor/internal/transport/http/middleware"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
}

func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// Toggle adds the caller's reaction when absent and removes it when
// present, then returns the message's updated reaction groups.
func (h *ReactionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if strings.TrimSpace(input.Value) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", "Reaction value is required")
		return
	}

	if _, err := h.reactionService.Toggle(r.Context(), userID, messageID, input.Value); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		case errors.Is(err, service.ErrNotMember):
			writeError(w, http.StatusForbidden, "NOT_MEMBER", "You are not a member of this workspace")
		default:
			log.Printf("ERROR toggle reaction: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	groups, err := h.reactionService.Aggregate(r.Context(), userID, messageID)
	if err != nil {
		log.Printf("ERROR aggregate reactions: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"reactions": groups})
}
