package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

type reactionRepo struct {
	s *Store
}

func (r *reactionRepo) Toggle(_ context.Context, reaction *domain.Reaction) (uuid.UUID, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rc := range r.s.reactions {
		if rc.MessageID == reaction.MessageID && rc.MemberID == reaction.MemberID && rc.Value == reaction.Value {
			delete(r.s.reactions, id)
			return id, true, nil
		}
	}
	r.s.reactions[reaction.ID] = *reaction
	return reaction.ID, false, nil
}

func (r *reactionRepo) ListByMessage(_ context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Reaction
	for _, rc := range r.s.reactions {
		if rc.MessageID == messageID {
			out = append(out, rc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
