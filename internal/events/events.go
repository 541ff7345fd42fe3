// Package events fans out file lifecycle notifications to connected
// WebSocket clients.
package events

import "encoding/json"

// Op codes for socket payloads.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady      = "READY"
	EventFileCreate = "FILE_CREATE"
	EventFileDelete = "FILE_DELETE"
)

// Payload is the envelope for all socket messages.
type Payload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// HelloData is sent by the server right after the upgrade.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server once the connection is subscribed.
type ReadyData struct {
	SessionID string  `json:"session_id"`
	UserID    int64   `json:"user_id,string"`
	Rooms     []int64 `json:"rooms"`
}

// FileDeleteData is the payload for FILE_DELETE events.
type FileDeleteData struct {
	ID     int64 `json:"id,string"`
	RoomID int64 `json:"room_id,string"`
}

// Dispatcher is the interface services use to push events to connected
// clients. The concrete Hub implements it.
type Dispatcher interface {
	DispatchToRoom(roomID int64, event string, data any)
	DispatchToUser(userID int64, event string, data any)
}
