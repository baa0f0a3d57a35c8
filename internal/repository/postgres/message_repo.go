package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborchat/harbor/internal/domain"
)

const messageColumns = `
	m.id, m.workspace_id, m.author_member_id, m.body, m.image_ref,
	m.channel_id, m.conversation_id, m.parent_message_id,
	m.created_at, m.updated_at, COALESCE(u.display_name, ''), u.avatar_url`

// authorJoin is a left join: messages outlive authors who left the
// workspace, and those rows must still come back.
const authorJoin = `
	LEFT JOIN members mb ON m.author_member_id = mb.id
	LEFT JOIN users u ON mb.user_id = u.id`

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, workspace_id, author_member_id, body, image_ref,
			channel_id, conversation_id, parent_message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.WorkspaceID, msg.AuthorMemberID, msg.Body, msg.ImageRef,
		msg.ChannelID, msg.ConversationID, msg.ParentMessageID, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m` + authorJoin + `
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.WorkspaceID, &msg.AuthorMemberID, &msg.Body, &msg.ImageRef,
		&msg.ChannelID, &msg.ConversationID, &msg.ParentMessageID,
		&msg.CreatedAt, &msg.UpdatedAt, &msg.AuthorName, &msg.AuthorAvatar,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

func (r *MessageRepo) UpdateBody(ctx context.Context, id uuid.UUID, body json.RawMessage, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET body = $1, updated_at = $2 WHERE id = $3`, body, updatedAt, id)
	return err
}

// DeleteCascade removes the message and its reactions together. Replies
// keep their parent_message_id and become orphans.
func (r *MessageRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reactions WHERE message_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// List pages a destination newest-first with a (created_at, id) keyset
// cursor. Insertions newer than the cursor never shift rows the caller has
// already seen.
func (r *MessageRepo) List(ctx context.Context, dest domain.Destination, cursor *domain.Cursor, limit int) ([]domain.Message, error) {
	var where string
	var args []any
	switch {
	case dest.ParentMessageID != nil:
		where = `m.parent_message_id = $1`
		args = append(args, *dest.ParentMessageID)
	case dest.ChannelID != nil:
		where = `m.channel_id = $1 AND m.parent_message_id IS NULL`
		args = append(args, *dest.ChannelID)
	case dest.ConversationID != nil:
		where = `m.conversation_id = $1 AND m.parent_message_id IS NULL`
		args = append(args, *dest.ConversationID)
	default:
		return nil, domain.ErrBadDestination
	}

	if cursor != nil {
		where += ` AND (m.created_at, m.id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	args = append(args, limit)

	query := `
		SELECT ` + messageColumns + `
		FROM messages m` + authorJoin + `
		WHERE ` + where + `
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.WorkspaceID, &msg.AuthorMemberID, &msg.Body, &msg.ImageRef,
			&msg.ChannelID, &msg.ConversationID, &msg.ParentMessageID,
			&msg.CreatedAt, &msg.UpdatedAt, &msg.AuthorName, &msg.AuthorAvatar,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ThreadMeta derives the reply summary from the child rows instead of a
// denormalized counter.
func (r *MessageRepo) ThreadMeta(ctx context.Context, rootID uuid.UUID) (*domain.ThreadMeta, error) {
	// One query: the window count and the latest reply must come from
	// the same snapshot, or a concurrent delete makes them disagree.
	var meta domain.ThreadMeta
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) OVER (), m.created_at, COALESCE(u.display_name, ''), u.avatar_url
		FROM messages m`+authorJoin+`
		WHERE m.parent_message_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT 1`, rootID,
	).Scan(&meta.ReplyCount, &meta.LastReplyAt, &meta.LastReplyAuthor, &meta.LastReplyAvatar)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
