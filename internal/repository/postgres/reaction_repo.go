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

type ReactionRepo struct {
	pool *pgxpool.Pool
}

func NewReactionRepo(pool *pgxpool.Pool) *ReactionRepo {
	return &ReactionRepo{pool: pool}
}

// Toggle runs the find-then-flip sequence inside one transaction. The
// unique index on (message_id, member_id, value) decides races between two
// identical toggles: the loser's insert surfaces as ErrConflict.
func (r *ReactionRepo) Toggle(ctx context.Context, reaction *domain.Reaction) (uuid.UUID, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, false, err
	}
	defer tx.Rollback(ctx)

	var removedID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM reactions
		WHERE message_id = $1 AND member_id = $2 AND value = $3
		RETURNING id`,
		reaction.MessageID, reaction.MemberID, reaction.Value,
	).Scan(&removedID)
	if err == nil {
		return removedID, true, tx.Commit(ctx)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reactions (id, workspace_id, message_id, member_id, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reaction.ID, reaction.WorkspaceID, reaction.MessageID, reaction.MemberID,
		reaction.Value, reaction.CreatedAt,
	)
	if isUniqueViolation(err) {
		return uuid.Nil, false, repository.ErrConflict
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return reaction.ID, false, tx.Commit(ctx)
}

func (r *ReactionRepo) ListByMessage(ctx context.Context, messageID uuid.UUID) ([]domain.Reaction, error) {
	query := `
		SELECT id, workspace_id, message_id, member_id, value, created_at
		FROM reactions
		WHERE message_id = $1
		ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var rc domain.Reaction
		if err := rows.Scan(&rc.ID, &rc.WorkspaceID, &rc.MessageID, &rc.MemberID, &rc.Value, &rc.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, rc)
	}
	return reactions, rows.Err()
}
