package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrBadCursor = errors.New("malformed cursor")

// Cursor is a position in a reverse-chronological feed. Ordering is by
// (CreatedAt, ID) with the id as tie-break, so the position stays stable
// when rows are inserted or removed around it.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// After reports whether the (createdAt, id) position sorts at or after the
// cursor. Paging fetches rows for which After is false, i.e. rows strictly
// older than the cursor position.
func (c Cursor) After(createdAt time.Time, id uuid.UUID) bool {
	if createdAt.Equal(c.CreatedAt) {
		return id.String() >= c.ID.String()
	}
	return createdAt.After(c.CreatedAt)
}

// Encode renders the cursor as an opaque token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return Cursor{}, ErrBadCursor
	}
	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	return Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
}
