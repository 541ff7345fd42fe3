package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banterhq/cubby/internal/models"
)

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, room_id, author_id, content, attachment_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.RoomID, msg.AuthorID, msg.Content, msg.AttachmentID, msg.CreatedAt,
	)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	m := &models.Message{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, author_id, content, attachment_id, created_at
		 FROM messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.RoomID, &m.AuthorID, &m.Content, &m.AttachmentID, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *messageRepo) GetByAttachmentID(ctx context.Context, attachmentID int64) (*models.Message, error) {
	m := &models.Message{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, author_id, content, attachment_id, created_at
		 FROM messages WHERE attachment_id = $1`, attachmentID,
	).Scan(&m.ID, &m.RoomID, &m.AuthorID, &m.Content, &m.AttachmentID, &m.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *messageRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}
