package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

type workspaceRepo struct {
	s *Store
}

func (r *workspaceRepo) Create(_ context.Context, ws *domain.Workspace, admin *domain.Member, seed *domain.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.WorkspaceID == admin.WorkspaceID && m.UserID == admin.UserID {
			return repository.ErrConflict
		}
	}
	r.s.workspaces[ws.ID] = *ws
	r.s.members[admin.ID] = *admin
	if seed != nil {
		r.s.channels[seed.ID] = *seed
	}
	return nil
}

func (r *workspaceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ws, ok := r.s.workspaces[id]; ok {
		return &ws, nil
	}
	return nil, nil
}

func (r *workspaceRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Workspace
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		if ws, ok := r.s.workspaces[m.WorkspaceID]; ok {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *workspaceRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ws, ok := r.s.workspaces[id]; ok {
		ws.Name = name
		r.s.workspaces[id] = ws
	}
	return nil
}

func (r *workspaceRepo) UpdateJoinCode(_ context.Context, id uuid.UUID, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ws, ok := r.s.workspaces[id]; ok {
		ws.JoinCode = code
		r.s.workspaces[id] = ws
	}
	return nil
}

func (r *workspaceRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for rid, rc := range r.s.reactions {
		if rc.WorkspaceID == id {
			delete(r.s.reactions, rid)
		}
	}
	for mid, m := range r.s.messages {
		if m.WorkspaceID == id {
			delete(r.s.messages, mid)
		}
	}
	for cid, c := range r.s.conversations {
		if c.WorkspaceID == id {
			delete(r.s.conversations, cid)
		}
	}
	for chid, ch := range r.s.channels {
		if ch.WorkspaceID == id {
			delete(r.s.channels, chid)
		}
	}
	for mid, m := range r.s.members {
		if m.WorkspaceID == id {
			delete(r.s.members, mid)
		}
	}
	delete(r.s.workspaces, id)
	return nil
}
