package events

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/banterhq/cubby/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// HandleSocket handles GET /events by upgrading to WebSocket. The route
// runs behind the auth middleware, so the request is already tied to a
// user and session.
func (h *Hub) HandleSocket(c echo.Context) error {
	userID := auth.GetUserID(c)
	sessionID := auth.GetSessionID(c)

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", userID, "error", err)
		return nil
	}

	conn := newConnection(ws, h)
	conn.UserID = userID

	conn.SendPayload(Payload{
		Op: OpHello,
		Data: mustMarshal(HelloData{
			HeartbeatInterval: int(heartbeatInterval.Milliseconds()),
		}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	roomIDs, err := h.roomRepo.RoomIDsByUser(ctx, userID)
	if err != nil {
		slog.Error("loading rooms for socket", "userID", userID, "error", err)
		conn.Close()
		return nil
	}

	h.register(conn)
	for _, roomID := range roomIDs {
		h.subscribe(userID, roomID)
	}

	conn.SendEvent(EventReady, ReadyData{
		SessionID: sessionID,
		UserID:    userID,
		Rooms:     roomIDs,
	})

	go conn.writePump()
	go conn.readPump()

	return nil
}
