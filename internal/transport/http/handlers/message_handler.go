package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/service"
	"github.com/harborchat/harbor/internal/transport/http/middleware"
	"github.com/harborchat/harbor/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessageBody(input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Create(r.Context(), userID, input)
	if err != nil {
		writeMessageError(w, "create message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Page returns one page of a feed, newest first. The destination comes
// from query params; exactly one of channel_id, conversation_id or
// parent_message_id must be set.
func (h *MessageHandler) Page(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	dest, err := destinationFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DESTINATION", "Exactly one of channel_id, conversation_id or parent_message_id must be set")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
	}

	page, err := h.messageService.Page(r.Context(), userID, dest, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrBadCursor) {
			writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Malformed pagination cursor")
		} else {
			log.Printf("ERROR page messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get returns the message, or null when the caller cannot see it.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	msg, err := h.messageService.GetByID(r.Context(), userID, messageID)
	if err != nil {
		log.Printf("ERROR get message: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessageBody(input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Edit(r.Context(), userID, messageID, input.Body)
	if err != nil {
		writeMessageError(w, "edit message", err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := h.messageService.Delete(r.Context(), userID, messageID); err != nil {
		writeMessageError(w, "delete message", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func destinationFromQuery(r *http.Request) (domain.Destination, error) {
	var dest domain.Destination
	q := r.URL.Query()

	if raw := q.Get("channel_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dest, err
		}
		dest.ChannelID = &id
	}
	if raw := q.Get("conversation_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dest, err
		}
		dest.ConversationID = &id
	}
	if raw := q.Get("parent_message_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return dest, err
		}
		dest.ParentMessageID = &id
	}

	return dest, dest.Validate()
}

func writeMessageError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
	case errors.Is(err, service.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
	case errors.Is(err, service.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "NOT_MEMBER", "You are not a member of this workspace")
	case errors.Is(err, service.ErrNotAuthor):
		writeError(w, http.StatusForbidden, "NOT_AUTHOR", "Only the author can modify this message")
	case errors.Is(err, domain.ErrBadDestination):
		writeError(w, http.StatusBadRequest, "INVALID_DESTINATION", "Exactly one of channel_id, conversation_id or parent_message_id must be set")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
