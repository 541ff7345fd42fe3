package models

import "time"

// Message carries at most one attachment; AttachmentID is nil for plain
// text messages.
type Message struct {
	ID           int64     `json:"id,string"`
	RoomID       int64     `json:"room_id,string"`
	AuthorID     int64     `json:"author_id,string"`
	Content      string    `json:"content"`
	AttachmentID *int64    `json:"attachment_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
