package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

type memberRepo struct {
	s *Store
}

func (r *memberRepo) Create(_ context.Context, member *domain.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.WorkspaceID == member.WorkspaceID && m.UserID == member.UserID {
			return repository.ErrConflict
		}
	}
	r.s.members[member.ID] = *member
	return nil
}

func (r *memberRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.members[id]; ok {
		r.s.decorate(&m)
		return &m, nil
	}
	return nil, nil
}

func (r *memberRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.members, id)
	return nil
}

func (r *memberRepo) GetByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			m := m
			r.s.decorate(&m)
			return &m, nil
		}
	}
	return nil, nil
}
