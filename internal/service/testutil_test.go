package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/banterhq/cubby/internal/models"
	"github.com/banterhq/cubby/internal/snowflake"
)

const (
	testOwnerID  = int64(100)
	testReaderID = int64(101)
	testRoomID   = int64(2000)
	testMsgID    = int64(3000)
	testAttID    = int64(4000)
)

const testStoredName = "1724500000000_0123456789abcdef.jpg"

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

func testAttachment() *models.Attachment {
	return &models.Attachment{
		ID:           testAttID,
		OwnerID:      testOwnerID,
		StoredName:   testStoredName,
		OriginalName: "photo.jpg",
		ContentType:  "image/jpeg",
		Size:         2 << 20,
		StorageKey:   "uploads/attachments/" + testStoredName,
		URL:          "http://localhost:8080/files/" + testStoredName + "/download",
		CreatedAt:    time.Now(),
	}
}

func testMessage(attachmentID int64) *models.Message {
	return &models.Message{
		ID:           testMsgID,
		RoomID:       testRoomID,
		AuthorID:     testOwnerID,
		Content:      "",
		AttachmentID: &attachmentID,
		CreatedAt:    time.Now(),
	}
}

// assertServiceError checks that err is a ServiceError wrapping the given
// sentinel with the given code.
func assertServiceError(t *testing.T, err error, sentinel error, code string) *ServiceError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error wrapping %v, got nil", sentinel)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
	if !errors.Is(svcErr.Err, sentinel) {
		t.Fatalf("error sentinel = %v, want %v (code %s)", svcErr.Err, sentinel, svcErr.Code)
	}
	if svcErr.Code != code {
		t.Errorf("error code = %q, want %q", svcErr.Code, code)
	}
	return svcErr
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

type mockAttachmentRepo struct {
	CreateFn          func(ctx context.Context, a *models.Attachment) error
	GetByIDFn         func(ctx context.Context, id int64) (*models.Attachment, error)
	GetByStoredNameFn func(ctx context.Context, name string) (*models.Attachment, error)
	ListByOwnerFn     func(ctx context.Context, ownerID int64) ([]models.Attachment, error)
	DeleteFn          func(ctx context.Context, id int64) (bool, error)
}

func (m *mockAttachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id int64) (*models.Attachment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) GetByStoredName(ctx context.Context, name string) (*models.Attachment, error) {
	if m.GetByStoredNameFn != nil {
		return m.GetByStoredNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) ListByOwner(ctx context.Context, ownerID int64) ([]models.Attachment, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockAttachmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return true, nil
}

type mockMessageRepo struct {
	CreateFn            func(ctx context.Context, msg *models.Message) error
	GetByIDFn           func(ctx context.Context, id int64) (*models.Message, error)
	GetByAttachmentIDFn func(ctx context.Context, attachmentID int64) (*models.Message, error)
	DeleteFn            func(ctx context.Context, id int64) error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockMessageRepo) GetByAttachmentID(ctx context.Context, attachmentID int64) (*models.Message, error) {
	if m.GetByAttachmentIDFn != nil {
		return m.GetByAttachmentIDFn(ctx, attachmentID)
	}
	return nil, nil
}

func (m *mockMessageRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

type mockRoomRepo struct {
	CreateFn            func(ctx context.Context, room *models.Room) error
	GetByIDFn           func(ctx context.Context, id int64) (*models.Room, error)
	DeleteFn            func(ctx context.Context, id int64) error
	AddParticipantFn    func(ctx context.Context, roomID, userID int64) error
	RemoveParticipantFn func(ctx context.Context, roomID, userID int64) error
	IsParticipantFn     func(ctx context.Context, roomID, userID int64) (bool, error)
	ParticipantIDsFn    func(ctx context.Context, roomID int64) ([]int64, error)
	RoomIDsByUserFn     func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, room)
	}
	return nil
}

func (m *mockRoomRepo) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *mockRoomRepo) AddParticipant(ctx context.Context, roomID, userID int64) error {
	if m.AddParticipantFn != nil {
		return m.AddParticipantFn(ctx, roomID, userID)
	}
	return nil
}

func (m *mockRoomRepo) RemoveParticipant(ctx context.Context, roomID, userID int64) error {
	if m.RemoveParticipantFn != nil {
		return m.RemoveParticipantFn(ctx, roomID, userID)
	}
	return nil
}

func (m *mockRoomRepo) IsParticipant(ctx context.Context, roomID, userID int64) (bool, error) {
	if m.IsParticipantFn != nil {
		return m.IsParticipantFn(ctx, roomID, userID)
	}
	return false, nil
}

func (m *mockRoomRepo) ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error) {
	if m.ParticipantIDsFn != nil {
		return m.ParticipantIDsFn(ctx, roomID)
	}
	return nil, nil
}

func (m *mockRoomRepo) RoomIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	if m.RoomIDsByUserFn != nil {
		return m.RoomIDsByUserFn(ctx, userID)
	}
	return nil, nil
}

type mockUserRepo struct {
	CreateFn          func(ctx context.Context, user *models.User) error
	GetByIDFn         func(ctx context.Context, id int64) (*models.User, error)
	GetByUsernameFn   func(ctx context.Context, username string) (*models.User, error)
	UpdateAvatarKeyFn func(ctx context.Context, id int64, key *string) error
	DeleteFn          func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) UpdateAvatarKey(ctx context.Context, id int64, key *string) error {
	if m.UpdateAvatarKeyFn != nil {
		return m.UpdateAvatarKeyFn(ctx, id, key)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock object store, dispatcher, session revoker
// ---------------------------------------------------------------------------

type mockStore struct {
	mu sync.Mutex

	PutFn     func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignFn func(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error)
	DeleteFn  func(ctx context.Context, key string) error

	PutKeys     []string
	DeletedKeys []string
}

func (m *mockStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.PutFn != nil {
		if err := m.PutFn(ctx, key, reader, size, contentType); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutKeys = append(m.PutKeys, key)
	return nil
}

func (m *mockStore) PresignGet(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error) {
	if m.PresignFn != nil {
		return m.PresignFn(ctx, key, ttl, downloadName)
	}
	url := "http://store.test/" + key + "?sig=deadbeef"
	if downloadName != "" {
		url += "&disposition=attachment"
	}
	return url, nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		if err := m.DeleteFn(ctx, key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}

func (m *mockStore) deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.DeletedKeys...)
}

func (m *mockStore) stored() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.PutKeys...)
}

type dispatchedEvent struct {
	RoomID int64
	UserID int64
	Event  string
	Data   any
}

type mockDispatcher struct {
	mu     sync.Mutex
	events []dispatchedEvent
}

func (m *mockDispatcher) DispatchToRoom(roomID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{RoomID: roomID, Event: event, Data: data})
}

func (m *mockDispatcher) DispatchToUser(userID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, dispatchedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockDispatcher) named(event string) []dispatchedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dispatchedEvent
	for _, e := range m.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type mockRevoker struct {
	RevokeFn func(ctx context.Context, userID int64) (int, error)
	Revoked  []int64
}

func (m *mockRevoker) RevokeUserSessions(ctx context.Context, userID int64) (int, error) {
	m.Revoked = append(m.Revoked, userID)
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, userID)
	}
	return 1, nil
}
