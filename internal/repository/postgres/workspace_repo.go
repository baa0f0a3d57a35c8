package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborchat/harbor/internal/domain"
)

type WorkspaceRepo struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepo(pool *pgxpool.Pool) *WorkspaceRepo {
	return &WorkspaceRepo{pool: pool}
}

// Create inserts the workspace, its admin member and the seeded channel in
// one transaction so a half-created workspace is never observable.
func (r *WorkspaceRepo) Create(ctx context.Context, ws *domain.Workspace, admin *domain.Member, seed *domain.Channel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workspaces (id, name, owner_user_id, join_code, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ws.ID, ws.Name, ws.OwnerUserID, ws.JoinCode, ws.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (id, workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.WorkspaceID, admin.UserID, admin.Role, admin.CreatedAt,
	)
	if err != nil {
		return err
	}

	if seed != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO channels (id, workspace_id, name, created_at)
			VALUES ($1, $2, $3, $4)`,
			seed.ID, seed.WorkspaceID, seed.Name, seed.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *WorkspaceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	query := `SELECT id, name, owner_user_id, join_code, created_at FROM workspaces WHERE id = $1`
	var ws domain.Workspace
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.Name, &ws.OwnerUserID, &ws.JoinCode, &ws.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &ws, err
}

func (r *WorkspaceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	query := `
		SELECT w.id, w.name, w.owner_user_id, w.join_code, w.created_at
		FROM workspaces w
		INNER JOIN members m ON w.id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []domain.Workspace
	for rows.Next() {
		var ws domain.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerUserID, &ws.JoinCode, &ws.CreatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx, `UPDATE workspaces SET name = $1 WHERE id = $2`, name, id)
	return err
}

func (r *WorkspaceRepo) UpdateJoinCode(ctx context.Context, id uuid.UUID, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE workspaces SET join_code = $1 WHERE id = $2`, code, id)
	return err
}

// DeleteCascade removes the workspace and all rows scoped to it. The order
// walks the ownership graph leaf-first inside one transaction; a crash
// mid-way rolls everything back.
func (r *WorkspaceRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	statements := []string{
		`DELETE FROM reactions WHERE workspace_id = $1`,
		`DELETE FROM messages WHERE workspace_id = $1`,
		`DELETE FROM conversations WHERE workspace_id = $1`,
		`DELETE FROM channels WHERE workspace_id = $1`,
		`DELETE FROM members WHERE workspace_id = $1`,
		`DELETE FROM workspaces WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
