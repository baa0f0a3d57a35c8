package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the 1:1 direct-message record between two members of the
// same workspace. The pair is conceptually unordered; lookups must match
// either order and at most one row exists per pair per workspace.
type Conversation struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	MemberOneID uuid.UUID `json:"member_one_id"`
	MemberTwoID uuid.UUID `json:"member_two_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Involves reports whether the member participates in this conversation.
func (c *Conversation) Involves(memberID uuid.UUID) bool {
	return c.MemberOneID == memberID || c.MemberTwoID == memberID
}
