package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/banterhq/cubby/internal/database"
	"github.com/banterhq/cubby/internal/events"
	"github.com/banterhq/cubby/internal/filepolicy"
	"github.com/banterhq/cubby/internal/metrics"
	"github.com/banterhq/cubby/internal/models"
	"github.com/banterhq/cubby/internal/snowflake"
	"github.com/banterhq/cubby/internal/storage"
)

// SignedURLTTL is how long presigned object URLs stay valid. Long enough
// for a client redirect to complete, short enough that a leaked URL goes
// stale quickly.
const SignedURLTTL = 60 * time.Second

// ObjectStore abstracts object storage operations for testability.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error)
	Delete(ctx context.Context, key string) error
}

// FileUpload describes one incoming file.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// FileService handles upload, serving, and deletion of attachments.
type FileService struct {
	attachments database.AttachmentRepository
	messages    database.MessageRepository
	resolver    *AccessResolver
	store       ObjectStore
	snowflake   *snowflake.Generator
	events      events.Dispatcher
	baseURL     string
}

// NewFileService creates a FileService. baseURL is the public origin used
// to build stable attachment URLs.
func NewFileService(
	attachments database.AttachmentRepository,
	messages database.MessageRepository,
	resolver *AccessResolver,
	store ObjectStore,
	sf *snowflake.Generator,
	dispatcher events.Dispatcher,
	baseURL string,
) *FileService {
	return &FileService{
		attachments: attachments,
		messages:    messages,
		resolver:    resolver,
		store:       store,
		snowflake:   sf,
		events:      dispatcher,
		baseURL:     baseURL,
	}
}

// Upload validates the file, writes it to the object store, and catalogs
// it. The object is written first; if cataloging fails the orphan object
// is removed so the catalog stays authoritative.
func (s *FileService) Upload(ctx context.Context, userID int64, up FileUpload) (*models.Attachment, error) {
	name, ext, err := filepolicy.CheckFile(up.Filename, up.ContentType)
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, mapPolicyError(err)
	}
	if err := filepolicy.CheckSize(up.ContentType, up.Size); err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, mapPolicyError(err)
	}
	contentType, _ := filepolicy.CanonicalType(up.ContentType)

	storedName, err := filepolicy.NewStoredName(ext)
	if err != nil {
		slog.Error("generating stored name", "error", err)
		return nil, Internal("INTERNAL", "internal server error")
	}
	key := storage.AttachmentKey(storedName)

	if err := s.store.Put(ctx, key, up.Content, up.Size, contentType); err != nil {
		slog.Error("storing upload", "key", key, "error", err)
		metrics.Uploads.WithLabelValues("failed").Inc()
		metrics.StoreFailures.WithLabelValues("put").Inc()
		return nil, StoreFailed("could not store file")
	}

	att := &models.Attachment{
		ID:           s.snowflake.Generate().Int64(),
		OwnerID:      userID,
		StoredName:   storedName,
		OriginalName: name,
		ContentType:  contentType,
		Size:         up.Size,
		StorageKey:   key,
		URL:          s.baseURL + "/files/" + storedName + "/download",
		CreatedAt:    time.Now(),
	}

	if err := s.attachments.Create(ctx, att); err != nil {
		slog.Error("cataloging upload", "key", key, "error", err)
		// The object landed but the catalog row did not; remove the orphan.
		_ = discardObject(ctx, s.store, key)
		metrics.Uploads.WithLabelValues("failed").Inc()
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.events.DispatchToUser(userID, events.EventFileCreate, att.View())

	metrics.Uploads.WithLabelValues("accepted").Inc()
	metrics.UploadBytes.Observe(float64(up.Size))
	slog.Info("file uploaded", "id", att.ID, "owner", userID, "size", up.Size, "type", contentType)
	return att, nil
}

// DownloadURL authorizes the read and returns a short-lived URL that serves
// the file as an attachment under its original name.
func (s *FileService) DownloadURL(ctx context.Context, userID int64, storedName string) (string, error) {
	access, err := s.authorizeRead(ctx, userID, storedName)
	if err != nil {
		return "", err
	}
	att := access.Attachment

	url, err := s.store.PresignGet(ctx, att.StorageKey, SignedURLTTL, att.OriginalName)
	if err != nil {
		slog.Error("presigning download", "key", att.StorageKey, "error", err)
		return "", Internal("INTERNAL", "internal server error")
	}
	metrics.Downloads.Inc()
	return url, nil
}

// ViewURL authorizes the read and returns a short-lived URL that serves the
// file inline. Only previewable types qualify.
func (s *FileService) ViewURL(ctx context.Context, userID int64, storedName string) (string, error) {
	access, err := s.authorizeRead(ctx, userID, storedName)
	if err != nil {
		return "", err
	}
	att := access.Attachment

	if !filepolicy.Previewable(att.ContentType) {
		return "", Unsupported("NOT_PREVIEWABLE", "this file type cannot be viewed inline")
	}

	url, err := s.store.PresignGet(ctx, att.StorageKey, SignedURLTTL, "")
	if err != nil {
		slog.Error("presigning view", "key", att.StorageKey, "error", err)
		return "", Internal("INTERNAL", "internal server error")
	}
	metrics.Views.Inc()
	return url, nil
}

// Delete removes a file the user owns. The catalog row is the authoritative
// delete; the object removal afterwards is best-effort.
func (s *FileService) Delete(ctx context.Context, userID, attachmentID int64) error {
	access, err := s.resolver.ResolveOwner(ctx, userID, attachmentID)
	if err != nil {
		slog.Error("resolving owner", "id", attachmentID, "error", err)
		return Internal("INTERNAL", "internal server error")
	}
	switch access.Decision {
	case DecisionAllowed:
	case DecisionNotOwner:
		return Forbidden("NOT_OWNER", "only the uploader can delete a file")
	default:
		return NotFound("FILE_NOT_FOUND", "file not found")
	}
	att := access.Attachment

	// Find the room before the row disappears; deleting the row nulls the
	// owning message's reference.
	var roomID int64
	msg, err := s.messages.GetByAttachmentID(ctx, att.ID)
	if err != nil {
		slog.Warn("looking up message for delete event", "id", att.ID, "error", err)
	} else if msg != nil {
		roomID = msg.RoomID
	}

	deleted, err := s.attachments.Delete(ctx, att.ID)
	if err != nil {
		slog.Error("deleting catalog row", "id", att.ID, "error", err)
		return Internal("INTERNAL", "internal server error")
	}
	if !deleted {
		// A concurrent delete won the row.
		return NotFound("FILE_NOT_FOUND", "file not found")
	}

	_ = discardObject(ctx, s.store, att.StorageKey)

	if roomID != 0 {
		s.events.DispatchToRoom(roomID, events.EventFileDelete, events.FileDeleteData{ID: att.ID, RoomID: roomID})
	}

	metrics.Deletes.Inc()
	slog.Info("file deleted", "id", att.ID, "owner", userID)
	return nil
}

// authorizeRead pre-screens the name, runs the resolver, and maps its
// decision. Missing attachment, message, or room all read as a plain 404 so
// responses do not leak which link broke.
func (s *FileService) authorizeRead(ctx context.Context, userID int64, storedName string) (Access, error) {
	if !filepolicy.ValidStoredName(storedName) {
		return Access{}, NotFound("FILE_NOT_FOUND", "file not found")
	}

	access, err := s.resolver.ResolveRead(ctx, userID, storedName)
	if err != nil {
		slog.Error("resolving read access", "file", storedName, "error", err)
		return Access{}, Internal("INTERNAL", "internal server error")
	}

	switch access.Decision {
	case DecisionAllowed:
		return access, nil
	case DecisionNotParticipant:
		return Access{}, Forbidden("FORBIDDEN", "you do not have access to this file")
	default:
		return Access{}, NotFound("FILE_NOT_FOUND", "file not found")
	}
}

// discardObject removes an object from the store. The catalog is
// authoritative; a leftover object only wastes space, so callers may ignore
// the result. Failures are logged as catalog/store divergence.
func discardObject(ctx context.Context, store ObjectStore, key string) error {
	if err := store.Delete(ctx, key); err != nil {
		slog.Warn("object delete failed, catalog and store diverge", "key", key, "error", err)
		metrics.StoreFailures.WithLabelValues("delete").Inc()
		return err
	}
	return nil
}

// mapPolicyError translates filepolicy violations into ServiceErrors. Only
// the absolute cap reads as 413; category ceilings are plain validation.
func mapPolicyError(err error) error {
	var (
		sizeLimit   *filepolicy.SizeLimitError
		unsupported *filepolicy.UnsupportedTypeError
		mismatch    *filepolicy.ExtensionMismatchError
		tooLong     *filepolicy.NameTooLongError
	)
	switch {
	case errors.As(err, &sizeLimit):
		if sizeLimit.Absolute {
			return TooLarge("UPLOAD_TOO_LARGE", sizeLimit.Error())
		}
		return BadRequest("FILE_TOO_LARGE", sizeLimit.Error())
	case errors.As(err, &unsupported):
		return BadRequest("INVALID_CONTENT_TYPE", unsupported.Error())
	case errors.As(err, &mismatch):
		return BadRequest("EXTENSION_MISMATCH", mismatch.Error())
	case errors.As(err, &tooLong):
		return BadRequest("FILENAME_TOO_LONG", tooLong.Error())
	case errors.Is(err, filepolicy.ErrEmptyFile):
		return BadRequest("EMPTY_FILE", "file is empty")
	case errors.Is(err, filepolicy.ErrInvalidName):
		return BadRequest("INVALID_FILENAME", "file name is invalid")
	default:
		return BadRequest("INVALID_FILE", err.Error())
	}
}
