package database

import (
	"context"

	"github.com/banterhq/cubby/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateAvatarKey(ctx context.Context, id int64, key *string) error
	Delete(ctx context.Context, id int64) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	Delete(ctx context.Context, id int64) error
	AddParticipant(ctx context.Context, roomID, userID int64) error
	RemoveParticipant(ctx context.Context, roomID, userID int64) error
	IsParticipant(ctx context.Context, roomID, userID int64) (bool, error)
	ParticipantIDs(ctx context.Context, roomID int64) ([]int64, error)
	RoomIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	GetByAttachmentID(ctx context.Context, attachmentID int64) (*models.Message, error)
	Delete(ctx context.Context, id int64) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id int64) (*models.Attachment, error)
	GetByStoredName(ctx context.Context, name string) (*models.Attachment, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Attachment, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
