package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/harborchat/harbor/internal/domain"
)

// ErrConflict is returned when an insert violates one of the unique-key
// invariants (one member per workspace+user, one conversation per pair,
// one reaction per message+member+value).
var ErrConflict = errors.New("unique key conflict")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type WorkspaceRepository interface {
	// Create inserts the workspace, its admin member and the seeded default
	// channel atomically.
	Create(ctx context.Context, ws *domain.Workspace, admin *domain.Member, seed *domain.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateJoinCode(ctx context.Context, id uuid.UUID, code string) error
	// DeleteCascade removes the workspace and everything scoped to it
	// (reactions, messages, conversations, channels, members) in one
	// transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	// GetByWorkspaceAndUser is the authorization primitive: a unique-key
	// lookup returning nil when the user is not a member.
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChannelRepository interface {
	Create(ctx context.Context, ch *domain.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Channel, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ConversationRepository interface {
	// GetByMembers matches the pair in either order.
	GetByMembers(ctx context.Context, workspaceID, memberA, memberB uuid.UUID) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body json.RawMessage, updatedAt time.Time) error
	// DeleteCascade removes the message together with its reactions; thread
	// replies are left in place.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	// List returns up to limit messages of the destination strictly older
	// than the cursor, newest first.
	List(ctx context.Context, dest domain.Destination, cursor *domain.Cursor, limit int) ([]domain.Message, error)
	// ThreadMeta derives reply count and last-reply identity for a thread
	// root. It returns nil when the root has no replies.
	ThreadMeta(ctx context.Context, rootID uuid.UUID) (*domain.ThreadMeta, error)
}

type ReactionRepository interface {
	// Toggle removes the (message, member, value) reaction if present,
	// otherwise inserts it. The read-then-write runs atomically. It returns
	// the affected reaction id and whether the call removed it.
	Toggle(ctx context.Context, reaction *domain.Reaction) (uuid.UUID, bool, error)
	// ListByMessage returns the raw reactions of a message in creation
	// order.
	ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error)
}
