package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeFeedSubscribe   = "feed.subscribe"
	EventTypeFeedUnsubscribe = "feed.unsubscribe"
	EventTypeTypingStart     = "typing.start"
	EventTypeTypingStop      = "typing.stop"
	EventTypePing            = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew     = "message.new"
	EventTypeMessageUpdated = "message.updated"
	EventTypeMessageDeleted = "message.deleted"
	EventTypeTyping         = "typing"
	EventTypePresence       = "presence"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages. Feed identifies
// the destination the event belongs to.
type Event struct {
	Type      string          `json:"type"`
	Feed      string          `json:"feed,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// FeedKey names a destination for the subscription registry.
func FeedKey(dest domain.Destination) string {
	switch {
	case dest.ParentMessageID != nil:
		return "thread:" + dest.ParentMessageID.String()
	case dest.ChannelID != nil:
		return "channel:" + dest.ChannelID.String()
	case dest.ConversationID != nil:
		return "conversation:" + dest.ConversationID.String()
	}
	return ""
}

// --- Client → Server payloads ---

type FeedPayload struct {
	ChannelID       *uuid.UUID `json:"channel_id,omitempty"`
	ConversationID  *uuid.UUID `json:"conversation_id,omitempty"`
	ParentMessageID *uuid.UUID `json:"parent_message_id,omitempty"`
}

func (p FeedPayload) destination() domain.Destination {
	return domain.Destination{
		ChannelID:       p.ChannelID,
		ConversationID:  p.ConversationID,
		ParentMessageID: p.ParentMessageID,
	}
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.EnrichedMessage
}

type MessageDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type TypingPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, feed string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Feed:      feed,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
