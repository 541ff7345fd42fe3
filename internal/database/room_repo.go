package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banterhq/cubby/internal/models"
)

type roomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) RoomRepository {
	return &roomRepo{pool: pool}
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (id, name, created_at) VALUES ($1, $2, $3)`,
		room.ID, room.Name, room.CreatedAt,
	)
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	room := &models.Room{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return room, err
}

func (r *roomRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}

func (r *roomRepo) AddParticipant(ctx context.Context, roomID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO room_participants (room_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		roomID, userID,
	)
	return err
}

func (r *roomRepo) RemoveParticipant(ctx context.Context, roomID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM room_participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	)
	return err
}

func (r *roomRepo) IsParticipant(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *roomRepo) ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM room_participants WHERE room_id = $1 ORDER BY user_id`,
		roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *roomRepo) RoomIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT room_id FROM room_participants WHERE user_id = $1 ORDER BY room_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
