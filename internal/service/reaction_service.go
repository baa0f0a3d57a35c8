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

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	messageRepo  repository.MessageRepository
	memberRepo   repository.MemberRepository
	notifier     Notifier
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	messageRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		messageRepo:  messageRepo,
		memberRepo:   memberRepo,
	}
}

func (s *ReactionService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Toggle is the whole reaction state machine: if the caller already reacted
// with this value the reaction is removed, otherwise it is added. Returns
// the affected reaction id.
func (s *ReactionService) Toggle(ctx context.Context, userID, messageID uuid.UUID, value string) (uuid.UUID, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return uuid.Nil, err
	}
	if msg == nil {
		return uuid.Nil, ErrMessageNotFound
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if member == nil {
		return uuid.Nil, ErrNotMember
	}

	reaction := &domain.Reaction{
		ID:          uuid.New(),
		WorkspaceID: msg.WorkspaceID,
		MessageID:   messageID,
		MemberID:    member.ID,
		Value:       value,
		CreatedAt:   time.Now(),
	}
	id, _, err := s.reactionRepo.Toggle(ctx, reaction)
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent identical toggle won the insert; treat this call as
		// the removing half of the pair.
		id, _, err = s.reactionRepo.Toggle(ctx, reaction)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("toggling reaction: %w", err)
	}

	s.notifyMessage(ctx, msg)

	return id, nil
}

// Aggregate returns the grouped reaction counts of a message for workspace
// members and an empty list for everyone else.
func (s *ReactionService) Aggregate(ctx context.Context, userID, messageID uuid.UUID) ([]domain.ReactionGroup, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return []domain.ReactionGroup{}, nil
	}

	member, err := s.memberRepo.GetByWorkspaceAndUser(ctx, msg.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return []domain.ReactionGroup{}, nil
	}

	reactions, err := s.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return AggregateReactions(reactions), nil
}

func (s *ReactionService) notifyMessage(ctx context.Context, msg *domain.Message) {
	if s.notifier == nil {
		return
	}
	reactions, err := s.reactionRepo.ListByMessage(ctx, msg.ID)
	if err != nil {
		return
	}
	enriched := &domain.EnrichedMessage{
		Message:   *msg,
		Reactions: AggregateReactions(reactions),
	}
	s.notifier.MessageUpdated(destinationOf(msg), enriched)
}

// AggregateReactions groups raw reactions by value in first-seen order so
// the rendered groups do not jump around as counts change.
func AggregateReactions(reactions []domain.Reaction) []domain.ReactionGroup {
	groups := []domain.ReactionGroup{}
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Value]
		if !ok {
			i = len(groups)
			index[r.Value] = i
			groups = append(groups, domain.ReactionGroup{Value: r.Value})
		}
		groups[i].Count++
		groups[i].MemberIDs = append(groups[i].MemberIDs, r.MemberID)
	}
	return groups
}
