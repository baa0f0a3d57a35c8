package domain

import (
	"errors"

	"github.com/google/uuid"
)

var ErrBadDestination = errors.New("exactly one destination must be set")

// Destination addresses a feed: a channel, a 1:1 conversation, or the
// replies under a thread root.
type Destination struct {
	ChannelID       *uuid.UUID
	ConversationID  *uuid.UUID
	ParentMessageID *uuid.UUID
}

func ChannelDestination(id uuid.UUID) Destination {
	return Destination{ChannelID: &id}
}

func ConversationDestination(id uuid.UUID) Destination {
	return Destination{ConversationID: &id}
}

func ThreadDestination(rootID uuid.UUID) Destination {
	return Destination{ParentMessageID: &rootID}
}

// Validate rejects destinations that name zero or several targets.
func (d Destination) Validate() error {
	n := 0
	if d.ChannelID != nil {
		n++
	}
	if d.ConversationID != nil {
		n++
	}
	if d.ParentMessageID != nil {
		n++
	}
	if n != 1 {
		return ErrBadDestination
	}
	return nil
}

// IsThread reports whether the destination is a thread reply feed.
func (d Destination) IsThread() bool {
	return d.ParentMessageID != nil
}

// Matches reports whether a message belongs to this destination. Thread
// destinations match replies of the root; channel and conversation
// destinations match only top-level messages there.
func (d Destination) Matches(m *Message) bool {
	switch {
	case d.ParentMessageID != nil:
		return m.ParentMessageID != nil && *m.ParentMessageID == *d.ParentMessageID
	case d.ChannelID != nil:
		return m.ChannelID != nil && *m.ChannelID == *d.ChannelID && m.ParentMessageID == nil
	case d.ConversationID != nil:
		return m.ConversationID != nil && *m.ConversationID == *d.ConversationID && m.ParentMessageID == nil
	}
	return false
}
