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

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO members (id, workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, m.ID, m.WorkspaceID, m.UserID, m.Role, m.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (r *MemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.created_at,
			u.username, u.display_name, u.avatar_url
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.id = $1`
	return r.scanMember(ctx, query, id)
}

// GetByWorkspaceAndUser resolves the caller's membership. The pair is
// backed by a unique index, so this is a point lookup.
func (r *MemberRepo) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT m.id, m.workspace_id, m.user_id, m.role, m.created_at,
			u.username, u.display_name, u.avatar_url
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.workspace_id = $1 AND m.user_id = $2`
	return r.scanMember(ctx, query, workspaceID, userID)
}

func (r *MemberRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}

func (r *MemberRepo) scanMember(ctx context.Context, query string, args ...any) (*domain.Member, error) {
	var m domain.Member
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt,
		&m.Username, &m.DisplayName, &m.AvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}
