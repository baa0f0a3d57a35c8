package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message lives in exactly one of a channel or a conversation. Thread
// replies additionally carry ParentMessageID and share the root's
// destination. Body is an opaque rich-text document; the server stores and
// transports it without interpreting it.
type Message struct {
	ID              uuid.UUID       `json:"id"`
	WorkspaceID     uuid.UUID       `json:"workspace_id"`
	AuthorMemberID  uuid.UUID       `json:"author_member_id"`
	Body            json.RawMessage `json:"body"`
	ImageRef        *string         `json:"image_ref,omitempty"`
	ChannelID       *uuid.UUID      `json:"channel_id,omitempty"`
	ConversationID  *uuid.UUID      `json:"conversation_id,omitempty"`
	ParentMessageID *uuid.UUID      `json:"parent_message_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	// Joined fields
	AuthorName   string  `json:"author_name,omitempty"`
	AuthorAvatar *string `json:"author_avatar,omitempty"`
}

// ReactionGroup is one aggregated reaction value on a message. Groups are
// ordered by first reaction so the client rendering is stable.
type ReactionGroup struct {
	Value     string      `json:"value"`
	Count     int         `json:"count"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

// ThreadMeta summarizes the replies under a thread root. It is computed on
// read from the child messages; a root with no replies has no ThreadMeta.
type ThreadMeta struct {
	ReplyCount      int        `json:"reply_count"`
	LastReplyAt     time.Time  `json:"last_reply_at"`
	LastReplyAuthor string     `json:"last_reply_author"`
	LastReplyAvatar *string    `json:"last_reply_avatar,omitempty"`
}

// EnrichedMessage composes a message with its reaction aggregate and, for
// channel/conversation feeds, its thread metadata.
type EnrichedMessage struct {
	Message
	Reactions []ReactionGroup `json:"reactions"`
	Thread    *ThreadMeta     `json:"thread,omitempty"`
}

// MessagePage is one reverse-chronological page of a feed. NextCursor is
// empty when the feed is exhausted.
type MessagePage struct {
	Items      []EnrichedMessage `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
