package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

type channelRepo struct {
	s *Store
}

func (r *channelRepo) Create(_ context.Context, ch *domain.Channel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.channels[ch.ID] = *ch
	return nil
}

func (r *channelRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ch, ok := r.s.channels[id]; ok {
		return &ch, nil
	}
	return nil, nil
}

func (r *channelRepo) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]domain.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Channel
	for _, ch := range r.s.channels {
		if ch.WorkspaceID == workspaceID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *channelRepo) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ch, ok := r.s.channels[id]; ok {
		ch.Name = name
		r.s.channels[id] = ch
	}
	return nil
}

func (r *channelRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for mid, m := range r.s.messages {
		if m.ChannelID != nil && *m.ChannelID == id {
			for rid, rc := range r.s.reactions {
				if rc.MessageID == mid {
					delete(r.s.reactions, rid)
				}
			}
			delete(r.s.messages, mid)
		}
	}
	delete(r.s.channels, id)
	return nil
}
