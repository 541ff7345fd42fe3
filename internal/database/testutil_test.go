package database

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banterhq/cubby/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 100000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

func createTestUser(t *testing.T, pool *pgxpool.Pool) *models.User {
	t.Helper()
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := &models.User{
		ID:           nextID(),
		Username:     fmt.Sprintf("testuser_%d", nextID()),
		DisplayName:  "Test User",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$abc$def",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, user.ID) })
	return user
}

func createTestRoom(t *testing.T, pool *pgxpool.Pool) *models.Room {
	t.Helper()
	repo := NewRoomRepository(pool)
	ctx := context.Background()

	room := &models.Room{
		ID:        nextID(),
		Name:      fmt.Sprintf("testroom_%d", nextID()),
		CreatedAt: time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, room); err != nil {
		t.Fatalf("creating test room: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, room.ID) })
	return room
}

func createTestAttachment(t *testing.T, pool *pgxpool.Pool, ownerID int64) *models.Attachment {
	t.Helper()
	repo := NewAttachmentRepository(pool)
	ctx := context.Background()

	id := nextID()
	name := fmt.Sprintf("%d_%016x.png", time.Now().UnixMilli(), id)
	a := &models.Attachment{
		ID:           id,
		OwnerID:      ownerID,
		StoredName:   name,
		OriginalName: "photo.png",
		ContentType:  "image/png",
		Size:         2048,
		StorageKey:   "uploads/attachments/" + name,
		URL:          "http://localhost:8080/files/" + name + "/download",
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("creating test attachment: %v", err)
	}
	t.Cleanup(func() { _, _ = repo.Delete(ctx, a.ID) })
	return a
}

func createTestMessage(t *testing.T, pool *pgxpool.Pool, roomID, authorID int64, attachmentID *int64) *models.Message {
	t.Helper()
	repo := NewMessageRepository(pool)
	ctx := context.Background()

	msg := &models.Message{
		ID:           nextID(),
		RoomID:       roomID,
		AuthorID:     authorID,
		Content:      "test message",
		AttachmentID: attachmentID,
		CreatedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, msg); err != nil {
		t.Fatalf("creating test message: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, msg.ID) })
	return msg
}
