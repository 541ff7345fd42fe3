package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banterhq/cubby/internal/models"
)

type attachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepo{pool: pool}
}

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO files (id, owner_id, stored_name, original_name, content_type, size, storage_key, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.OwnerID, a.StoredName, a.OriginalName, a.ContentType, a.Size, a.StorageKey, a.URL, a.CreatedAt,
	)
	return err
}

func (r *attachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	a := &models.Attachment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, stored_name, original_name, content_type, size, storage_key, url, created_at
		 FROM files WHERE id = $1`, id,
	).Scan(&a.ID, &a.OwnerID, &a.StoredName, &a.OriginalName, &a.ContentType, &a.Size, &a.StorageKey, &a.URL, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attachmentRepo) GetByStoredName(ctx context.Context, name string) (*models.Attachment, error) {
	a := &models.Attachment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, stored_name, original_name, content_type, size, storage_key, url, created_at
		 FROM files WHERE stored_name = $1`, name,
	).Scan(&a.ID, &a.OwnerID, &a.StoredName, &a.OriginalName, &a.ContentType, &a.Size, &a.StorageKey, &a.URL, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attachmentRepo) ListByOwner(ctx context.Context, ownerID int64) ([]models.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, stored_name, original_name, content_type, size, storage_key, url, created_at
		 FROM files
		 WHERE owner_id = $1
		 ORDER BY id`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.StoredName, &a.OriginalName, &a.ContentType, &a.Size, &a.StorageKey, &a.URL, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// Delete removes the row and reports whether it existed. Concurrent deletes
// of the same file race on this row; exactly one caller sees true.
func (r *attachmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
