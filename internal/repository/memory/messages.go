package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

type messageRepo struct {
	s *Store
}

func (r *messageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// timestamptz stores microseconds; keep the same precision here so
	// cursors round-trip identically against both substrates.
	msg.CreatedAt = msg.CreatedAt.Truncate(time.Microsecond)
	r.s.messages[msg.ID] = *msg
	return nil
}

func (r *messageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.messages[id]; ok {
		r.s.decorateMessage(&m)
		return &m, nil
	}
	return nil, nil
}

func (r *messageRepo) UpdateBody(_ context.Context, id uuid.UUID, body json.RawMessage, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.messages[id]; ok {
		m.Body = body
		m.UpdatedAt = &updatedAt
		r.s.messages[id] = m
	}
	return nil
}

func (r *messageRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for rid, rc := range r.s.reactions {
		if rc.MessageID == id {
			delete(r.s.reactions, rid)
		}
	}
	delete(r.s.messages, id)
	return nil
}

func (r *messageRepo) List(_ context.Context, dest domain.Destination, cursor *domain.Cursor, limit int) ([]domain.Message, error) {
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.Message
	for _, m := range r.s.messages {
		if !dest.Matches(&m) {
			continue
		}
		if cursor != nil && cursor.After(m.CreatedAt, m.ID) {
			continue
		}
		r.s.decorateMessage(&m)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *messageRepo) ThreadMeta(_ context.Context, rootID uuid.UUID) (*domain.ThreadMeta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var last *domain.Message
	count := 0
	for id := range r.s.messages {
		m := r.s.messages[id]
		if m.ParentMessageID == nil || *m.ParentMessageID != rootID {
			continue
		}
		count++
		if last == nil || m.CreatedAt.After(last.CreatedAt) ||
			(m.CreatedAt.Equal(last.CreatedAt) && m.ID.String() > last.ID.String()) {
			m := m
			last = &m
		}
	}
	if count == 0 {
		return nil, nil
	}
	r.s.decorateMessage(last)
	return &domain.ThreadMeta{
		ReplyCount:      count,
		LastReplyAt:     last.CreatedAt,
		LastReplyAuthor: last.AuthorName,
		LastReplyAvatar: last.AuthorAvatar,
	}, nil
}
