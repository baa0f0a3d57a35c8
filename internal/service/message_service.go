package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotAuthor       = errors.New("only the author can modify a message")
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Notifier pushes feed deltas to subscribed clients. Events are keyed by
// the destination they affect so open pages update without re-paging.
type Notifier interface {
	MessageCreated(dest domain.Destination, msg *domain.EnrichedMessage)
	MessageUpdated(dest domain.Destination, msg *domain.EnrichedMessage)
	MessageDeleted(dest domain.Destination, messageID uuid.UUID)
}

type MessageService struct {
	messageRepo      repository.MessageRepository
	reactionRepo     repository.ReactionRepository
	channelRepo      repository.ChannelRepository
	conversationRepo repository.ConversationRepository
	memberRepo       repository.MemberRepository
	notifier         Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	reactionRepo repository.ReactionRepository,
	channelRepo repository.ChannelRepository,
	conversationRepo repository.ConversationRepository,
	memberRepo repository.MemberRepository,
) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		reactionRepo:     reactionRepo,
		channelRepo:      channelRepo,
		conversationRepo: conversationRepo,
		memberRepo:       memberRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateMessageInput struct {
	ChannelID       *uuid.UUID      `json:"channel_id,omitempty"`
	ConversationID  *uuid.UUID      `json:"conversation_id,omitempty"`
	ParentMessageID *uuid.UUID      `json:"parent_message_id,omitempty"`
	Body            json.RawMessage `json:"body"`
	ImageRef        *string         `json:"image_ref,omitempty"`
}

// Create posts a message. Thread replies inherit the parent's destination;
// whatever channel or conversation the caller supplied alongside a parent
// id is ignored.
func (s *MessageService) Create(ctx context.Context, userID uuid.UUID, input CreateMessageInput) (*domain.EnrichedMessage, error) {
	var workspaceID uuid.UUID
	var channelID, conversationID *uuid.UUID

	if input.ParentMessageID != nil {
		parent, err := s.messageRepo.GetByID(ctx, *input.ParentMessageID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrMessageNotFound
		}
		workspaceID = parent.WorkspaceID
		channelID = parent.ChannelID
		conversationID = parent.ConversationID
	} else {
		dest := domain.Destination{ChannelID: input.ChannelID, ConversationID: input.ConversationID}
		if err := dest.Validate(); err != nil {
			return nil, err
		}
		switch {
		case input.ChannelID != nil:
			ch, err := s.channelRepo.GetByID(ctx, *input.ChannelID)
			if err != nil {
				return nil, err
			}
			if ch == nil {
				return nil, ErrChannelNotFound
			}
			workspaceID = ch.WorkspaceID
			channelID = input.ChannelID
		case input.ConversationID != nil:
			conv, err := s.conversationRepo.GetByID(ctx, *input.ConversationID)
			if err != nil {
				return nil, err
			}
			if conv == nil {
				return nil, ErrConversationNotFound
			}
			workspaceID = conv.WorkspaceID
			conversationID = input.ConversationID
		}
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}

	msg := &domain.Message{
		ID:              uuid.New(),
		WorkspaceID:     workspaceID,
		AuthorMemberID:  member.ID,
		Body:            input.Body,
		ImageRef:        input.ImageRef,
		ChannelID:       channelID,
		ConversationID:  conversationID,
		ParentMessageID: input.ParentMessageID,
		CreatedAt:       time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	enriched, err := s.enrichByID(ctx, msg.ID, msg.ParentMessageID == nil)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.MessageCreated(destinationOf(&enriched.Message), enriched)
		s.notifyRootChanged(ctx, msg.ParentMessageID)
	}

	return enriched, nil
}

// Edit replaces the body and stamps UpdatedAt. Author only.
func (s *MessageService) Edit(ctx context.Context, userID, messageID uuid.UUID, body json.RawMessage) (*domain.EnrichedMessage, error) {
	msg, err := s.requireAuthor(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.UpdateBody(ctx, messageID, body, time.Now()); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	enriched, err := s.enrichByID(ctx, messageID, msg.ParentMessageID == nil)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.MessageUpdated(destinationOf(&enriched.Message), enriched)
	}

	return enriched, nil
}

// Delete removes the message and its reactions in one logical operation.
// Replies of a deleted thread root stay behind as orphans.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.requireAuthor(ctx, userID, messageID)
	if err != nil {
		return err
	}

	if err := s.messageRepo.DeleteCascade(ctx, messageID); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MessageDeleted(destinationOf(msg), messageID)
		s.notifyRootChanged(ctx, msg.ParentMessageID)
	}

	return nil
}

// GetByID returns the enriched message for workspace members and nil for
// everyone else.
func (s *MessageService) GetByID(ctx context.Context, userID, messageID uuid.UUID) (*domain.EnrichedMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	return s.enrich(ctx, msg, msg.ParentMessageID == nil)
}

// Page serves one reverse-chronological page of a destination. Non-members
// and dangling destinations get an empty page, not an error.
func (s *MessageService) Page(ctx context.Context, userID uuid.UUID, dest domain.Destination, cursorToken string, pageSize int) (*domain.MessagePage, error) {
	if err := dest.Validate(); err != nil {
		return nil, err
	}

	workspaceID, ok, err := s.destinationWorkspace(ctx, dest)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.MessagePage{Items: []domain.EnrichedMessage{}}, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return &domain.MessagePage{Items: []domain.EnrichedMessage{}}, nil
	}

	var cursor *domain.Cursor
	if cursorToken != "" {
		c, err := domain.DecodeCursor(cursorToken)
		if err != nil {
			return nil, err
		}
		cursor = &c
	}

	if pageSize <= 0 {
		pageSize = defaultPageSize
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// Fetch one extra row to learn whether another page exists.
	messages, err := s.messageRepo.List(ctx, dest, cursor, pageSize+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > pageSize
	if hasMore {
		messages = messages[:pageSize]
	}

	page := &domain.MessagePage{Items: make([]domain.EnrichedMessage, 0, len(messages))}
	for i := range messages {
		enriched, err := s.enrich(ctx, &messages[i], !dest.IsThread())
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *enriched)
	}

	if hasMore {
		last := messages[len(messages)-1]
		page.NextCursor = domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	return page, nil
}

// CanReadFeed reports whether the user may read the destination's feed.
// It resolves membership the same way Page does, so live subscriptions
// and pagination agree on who sees what.
func (s *MessageService) CanReadFeed(ctx context.Context, userID uuid.UUID, dest domain.Destination) (bool, error) {
	if err := dest.Validate(); err != nil {
		return false, nil
	}

	workspaceID, ok, err := s.destinationWorkspace(ctx, dest)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// destinationWorkspace resolves the workspace owning the destination. The
// second return is false when the destination does not exist.
func (s *MessageService) destinationWorkspace(ctx context.Context, dest domain.Destination) (uuid.UUID, bool, error) {
	switch {
	case dest.ChannelID != nil:
		ch, err := s.channelRepo.GetByID(ctx, *dest.ChannelID)
		if err != nil || ch == nil {
			return uuid.Nil, false, err
		}
		return ch.WorkspaceID, true, nil
	case dest.ConversationID != nil:
		conv, err := s.conversationRepo.GetByID(ctx, *dest.ConversationID)
		if err != nil || conv == nil {
			return uuid.Nil, false, err
		}
		return conv.WorkspaceID, true, nil
	case dest.ParentMessageID != nil:
		root, err := s.messageRepo.GetByID(ctx, *dest.ParentMessageID)
		if err != nil || root == nil {
			return uuid.Nil, false, err
		}
		return root.WorkspaceID, true, nil
	}
	return uuid.Nil, false, domain.ErrBadDestination
}

// requireAuthor loads the message and checks the caller is its author.
func (s *MessageService) requireAuthor(ctx context.Context, userID, messageID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.ID != msg.AuthorMemberID {
		return nil, ErrNotAuthor
	}

	return msg, nil
}

func (s *MessageService) enrichByID(ctx context.Context, messageID uuid.UUID, withThread bool) (*domain.EnrichedMessage, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return s.enrich(ctx, msg, withThread)
}

// enrich composes the raw message with its reaction aggregate and, for
// top-level feeds, the thread summary.
func (s *MessageService) enrich(ctx context.Context, msg *domain.Message, withThread bool) (*domain.EnrichedMessage, error) {
	reactions, err := s.reactionRepo.ListByMessage(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	enriched := &domain.EnrichedMessage{
		Message:   *msg,
		Reactions: AggregateReactions(reactions),
	}

	if withThread {
		meta, err := s.messageRepo.ThreadMeta(ctx, msg.ID)
		if err != nil {
			return nil, err
		}
		enriched.Thread = meta
	}

	return enriched, nil
}

// notifyRootChanged re-publishes a thread root after its replies changed,
// so channel feeds showing the thread summary stay current.
func (s *MessageService) notifyRootChanged(ctx context.Context, rootID *uuid.UUID) {
	if rootID == nil || s.notifier == nil {
		return
	}
	enriched, err := s.enrichByID(ctx, *rootID, true)
	if err != nil {
		return
	}
	s.notifier.MessageUpdated(destinationOf(&enriched.Message), enriched)
}

func destinationOf(m *domain.Message) domain.Destination {
	switch {
	case m.ParentMessageID != nil:
		return domain.ThreadDestination(*m.ParentMessageID)
	case m.ChannelID != nil:
		return domain.ChannelDestination(*m.ChannelID)
	default:
		return domain.ConversationDestination(*m.ConversationID)
	}
}
