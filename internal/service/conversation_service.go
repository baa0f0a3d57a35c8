package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMemberNotFound       = errors.New("member not found")
)

type ConversationService struct {
	conversationRepo repository.ConversationRepository
	memberRepo       repository.MemberRepository
}

func NewConversationService(conversationRepo repository.ConversationRepository, memberRepo repository.MemberRepository) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		memberRepo:       memberRepo,
	}
}

// ResolveOrCreate finds the 1:1 conversation between the caller and the
// other member, creating it on first contact. The lookup matches the pair
// in either order; the unordered-pair unique index catches the race where
// both participants message each other simultaneously, and the loser
// re-reads the winner's row.
func (s *ConversationService) ResolveOrCreate(ctx context.Context, userID, workspaceID, otherMemberID uuid.UUID) (*domain.Conversation, error) {
	caller, err := s.memberRepo.GetByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, ErrNotMember
	}

	other, err := s.memberRepo.GetByID(ctx, otherMemberID)
	if err != nil {
		return nil, err
	}
	if other == nil || other.WorkspaceID != workspaceID {
		return nil, ErrMemberNotFound
	}

	conv, err := s.conversationRepo.GetByMembers(ctx, workspaceID, caller.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	conv = &domain.Conversation{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		MemberOneID: caller.ID,
		MemberTwoID: other.ID,
		CreatedAt:   time.Now(),
	}
	err = s.conversationRepo.Create(ctx, conv)
	if errors.Is(err, repository.ErrConflict) {
		return s.conversationRepo.GetByMembers(ctx, workspaceID, caller.ID, other.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	return conv, nil
}
