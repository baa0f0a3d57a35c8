package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborchat/harbor/internal/domain"
	"github.com/harborchat/harbor/internal/repository"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) GetByMembers(ctx context.Context, workspaceID, memberA, memberB uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, workspace_id, member_one_id, member_two_id, created_at
		FROM conversations
		WHERE workspace_id = $1
			AND ((member_one_id = $2 AND member_two_id = $3)
				OR (member_one_id = $3 AND member_two_id = $2))`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, workspaceID, memberA, memberB).Scan(
		&conv.ID, &conv.WorkspaceID, &conv.MemberOneID, &conv.MemberTwoID, &conv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}

// Create inserts the conversation. The unordered-pair unique index makes
// concurrent first-message races surface as ErrConflict, which the caller
// resolves by re-reading.
func (r *ConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, workspace_id, member_one_id, member_two_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.WorkspaceID, conv.MemberOneID, conv.MemberTwoID, conv.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, workspace_id, member_one_id, member_two_id, created_at
		FROM conversations WHERE id = $1`
	var conv domain.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.WorkspaceID, &conv.MemberOneID, &conv.MemberTwoID, &conv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &conv, err
}
