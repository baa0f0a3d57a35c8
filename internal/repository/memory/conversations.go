package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

type conversationRepo struct {
	s *Store
}

func samePair(c *domain.Conversation, a, b uuid.UUID) bool {
	return (c.MemberOneID == a && c.MemberTwoID == b) ||
		(c.MemberOneID == b && c.MemberTwoID == a)
}

func (r *conversationRepo) GetByMembers(_ context.Context, workspaceID, memberA, memberB uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.conversations {
		if c.WorkspaceID == workspaceID && samePair(&c, memberA, memberB) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (r *conversationRepo) Create(_ context.Context, conv *domain.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.conversations {
		if c.WorkspaceID == conv.WorkspaceID && samePair(&c, conv.MemberOneID, conv.MemberTwoID) {
			return repository.ErrConflict
		}
	}
	r.s.conversations[conv.ID] = *conv
	return nil
}

func (r *conversationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.conversations[id]; ok {
		return &c, nil
	}
	return nil, nil
}
