package service

import (
	"context"

	"github.com/banterhq/cubby/internal/database"
	"github.com/banterhq/cubby/internal/models"
)

// Decision tags the outcome of an access check. Callers map each decision
// to a response; the resolver itself never builds errors.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionAttachmentMissing
	DecisionMessageMissing
	DecisionRoomMissing
	DecisionNotParticipant
	DecisionNotOwner
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionAttachmentMissing:
		return "attachment_missing"
	case DecisionMessageMissing:
		return "message_missing"
	case DecisionRoomMissing:
		return "room_missing"
	case DecisionNotParticipant:
		return "not_participant"
	case DecisionNotOwner:
		return "not_owner"
	default:
		return "unknown"
	}
}

// Access is the result of an access check. Attachment is non-nil only when
// Decision is DecisionAllowed.
type Access struct {
	Decision   Decision
	Attachment *models.Attachment
}

// AccessResolver answers who may read or delete a stored file. Read access
// follows the chain attachment → message → room → participant; delete
// access is owner-only.
type AccessResolver struct {
	attachments database.AttachmentRepository
	messages    database.MessageRepository
	rooms       database.RoomRepository
}

// NewAccessResolver creates an AccessResolver.
func NewAccessResolver(
	attachments database.AttachmentRepository,
	messages database.MessageRepository,
	rooms database.RoomRepository,
) *AccessResolver {
	return &AccessResolver{
		attachments: attachments,
		messages:    messages,
		rooms:       rooms,
	}
}

// ResolveRead decides whether the user may read the file stored under the
// given name. Any broken link in the chain yields its own decision; errors
// are infrastructure failures only.
func (r *AccessResolver) ResolveRead(ctx context.Context, userID int64, storedName string) (Access, error) {
	att, err := r.attachments.GetByStoredName(ctx, storedName)
	if err != nil {
		return Access{}, err
	}
	if att == nil {
		return Access{Decision: DecisionAttachmentMissing}, nil
	}

	msg, err := r.messages.GetByAttachmentID(ctx, att.ID)
	if err != nil {
		return Access{}, err
	}
	if msg == nil {
		return Access{Decision: DecisionMessageMissing}, nil
	}

	room, err := r.rooms.GetByID(ctx, msg.RoomID)
	if err != nil {
		return Access{}, err
	}
	if room == nil {
		return Access{Decision: DecisionRoomMissing}, nil
	}

	in, err := r.rooms.IsParticipant(ctx, room.ID, userID)
	if err != nil {
		return Access{}, err
	}
	if !in {
		return Access{Decision: DecisionNotParticipant}, nil
	}

	return Access{Decision: DecisionAllowed, Attachment: att}, nil
}

// ResolveOwner decides whether the user owns the attachment, for deletion.
func (r *AccessResolver) ResolveOwner(ctx context.Context, userID, attachmentID int64) (Access, error) {
	att, err := r.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return Access{}, err
	}
	if att == nil {
		return Access{Decision: DecisionAttachmentMissing}, nil
	}
	if att.OwnerID != userID {
		return Access{Decision: DecisionNotOwner}, nil
	}
	return Access{Decision: DecisionAllowed, Attachment: att}, nil
}
