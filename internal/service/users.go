package service

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/banterhq/cubby/internal/auth"
	"github.com/banterhq/cubby/internal/database"
	"github.com/banterhq/cubby/internal/filepolicy"
	"github.com/banterhq/cubby/internal/metrics"
	"github.com/banterhq/cubby/internal/models"
	"github.com/banterhq/cubby/internal/storage"
)

const (
	avatarMaxBytes = 5 << 20
	avatarSize     = 512
)

// SessionRevoker revokes every session a user holds.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID int64) (int, error)
}

// UserService handles avatars and account deletion.
type UserService struct {
	users       database.UserRepository
	attachments database.AttachmentRepository
	store       ObjectStore
	sessions    SessionRevoker
}

// NewUserService creates a UserService.
func NewUserService(
	users database.UserRepository,
	attachments database.AttachmentRepository,
	store ObjectStore,
	sessions SessionRevoker,
) *UserService {
	return &UserService{
		users:       users,
		attachments: attachments,
		store:       store,
		sessions:    sessions,
	}
}

// SetAvatar replaces the user's avatar. The image is normalized to a
// 512x512 PNG before storing; the previous object is removed best-effort
// once the user row points at the new one.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, up FileUpload) (*models.User, error) {
	cat, ok := filepolicy.CategoryOf(up.ContentType)
	if !ok || cat != filepolicy.CategoryImage {
		return nil, BadRequest("INVALID_CONTENT_TYPE", "avatars must be images")
	}
	if up.Size <= 0 {
		return nil, BadRequest("EMPTY_FILE", "file is empty")
	}
	if up.Size > avatarMaxBytes {
		return nil, BadRequest("FILE_TOO_LARGE", "avatars must be 5 MB or smaller")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, NotFound("USER_NOT_FOUND", "user not found")
	}

	img, err := imaging.Decode(up.Content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, BadRequest("INVALID_IMAGE", "could not decode image")
	}
	avatar := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.PNG); err != nil {
		slog.Error("encoding avatar", "userID", userID, "error", err)
		return nil, Internal("INTERNAL", "internal server error")
	}

	storedName, err := filepolicy.NewStoredName("png")
	if err != nil {
		slog.Error("generating avatar name", "userID", userID, "error", err)
		return nil, Internal("INTERNAL", "internal server error")
	}
	key := storage.AvatarKey(storedName)

	if err := s.store.Put(ctx, key, &buf, int64(buf.Len()), "image/png"); err != nil {
		slog.Error("storing avatar", "key", key, "error", err)
		metrics.StoreFailures.WithLabelValues("put").Inc()
		return nil, StoreFailed("could not store avatar")
	}

	oldKey := user.AvatarKey
	if err := s.users.UpdateAvatarKey(ctx, userID, &key); err != nil {
		slog.Error("updating avatar key", "userID", userID, "error", err)
		_ = discardObject(ctx, s.store, key)
		return nil, Internal("INTERNAL", "internal server error")
	}

	// The old object is unreachable now; removing it is best-effort.
	if oldKey != nil {
		_ = discardObject(ctx, s.store, *oldKey)
	}

	user.AvatarKey = &key
	slog.Info("avatar updated", "userID", userID)
	return user, nil
}

// AvatarURL returns a short-lived inline URL for a user's avatar.
func (s *UserService) AvatarURL(ctx context.Context, userID int64) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return "", NotFound("USER_NOT_FOUND", "user not found")
	}
	if user.AvatarKey == nil {
		return "", NotFound("AVATAR_NOT_FOUND", "user has no avatar")
	}

	url, err := s.store.PresignGet(ctx, *user.AvatarKey, SignedURLTTL, "")
	if err != nil {
		slog.Error("presigning avatar", "key", *user.AvatarKey, "error", err)
		return "", Internal("INTERNAL", "internal server error")
	}
	return url, nil
}

// ClearAvatar removes the user's avatar. Clearing an unset avatar is a
// no-op.
func (s *UserService) ClearAvatar(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return NotFound("USER_NOT_FOUND", "user not found")
	}
	if user.AvatarKey == nil {
		return nil
	}

	key := *user.AvatarKey
	if err := s.users.UpdateAvatarKey(ctx, userID, nil); err != nil {
		slog.Error("clearing avatar key", "userID", userID, "error", err)
		return Internal("INTERNAL", "internal server error")
	}
	_ = discardObject(ctx, s.store, key)
	return nil
}

// DeleteAccount removes the user after password confirmation. Catalog rows
// go first via the user-row cascade; the object sweep afterwards is
// best-effort and never aborts the deletion.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return NotFound("USER_NOT_FOUND", "user not found")
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return Unauthorized("INVALID_PASSWORD", "password is incorrect")
	}

	atts, err := s.attachments.ListByOwner(ctx, userID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	// Nothing irreversible has happened yet, so a failed revocation still
	// aborts cleanly.
	if _, err := s.sessions.RevokeUserSessions(ctx, userID); err != nil {
		slog.Error("revoking sessions", "userID", userID, "error", err)
		return Internal("INTERNAL", "internal server error")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		slog.Error("deleting user", "userID", userID, "error", err)
		return Internal("INTERNAL", "internal server error")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, att := range atts {
		key := att.StorageKey
		g.Go(func() error {
			_ = discardObject(gctx, s.store, key)
			return nil
		})
	}
	if user.AvatarKey != nil {
		key := *user.AvatarKey
		g.Go(func() error {
			_ = discardObject(gctx, s.store, key)
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("account deleted", "userID", userID, "files", len(atts))
	return nil
}
