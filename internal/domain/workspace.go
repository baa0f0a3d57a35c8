package domain

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	JoinCode    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkspaceInfo is the membership-safe summary shown on the join screen.
// It never exposes the join code.
type WorkspaceInfo struct {
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}
