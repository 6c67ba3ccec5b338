package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/session"
)

// Client is one WebSocket connection bound to a room session. Inbound
// frames dispatch through the session; outbound frames come from the
// session's update stream plus hub broadcasts.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *session.Manager
	roomID  uint
	userID  uint
	send    chan []byte

	// closed once forwardUpdates has drained; the hub must not close
	// send before then.
	updatesDone chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Manager, roomID, userID uint) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		session: sess,
		roomID:  roomID,
		userID:  userID,
		send:    make(chan []byte, 256),

		updatesDone: make(chan struct{}),
	}
}

// Run starts the client's pumps. The read pump runs until the connection
// drops and then unregisters the client.
func (c *Client) Run() {
	go c.writePump()
	go c.forwardUpdates()
	// Snapshot is queued before reads start so no inbound command can
	// trigger teardown while it is being enqueued.
	c.sendSnapshot()
	go c.readPump()
}

// clientFrame is an inbound command from the browser.
type clientFrame struct {
	Type    string `json:"type"` // "chat" or "code"
	Content string `json:"content"`
}

func (c *Client) readPump() {
	defer func() {
		c.session.Close()
		// Close drained the session's update stream; wait until the
		// forwarder is finished with the send channel before the hub
		// closes it.
		<-c.updatesDone
		unregister := HubMessage{Type: "unregister", Client: c}
		select {
		case c.hub.messageChan <- unregister:
		case <-time.After(1 * time.Second):
			logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": c.roomID}).
				Warn("Timeout sending unregister to hub")
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": c.roomID})
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error")
			} else {
				logCtx.Debug("WebSocket connection closed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handleFrame(payload)
	}
}

func (c *Client) handleFrame(payload []byte) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": c.roomID})

	var frame clientFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		logCtx.WithError(err).Warn("Dropping undecodable client frame")
		c.sendError("invalid frame")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch frame.Type {
	case "chat":
		if err := c.session.SendMessage(ctx, frame.Content); err != nil {
			logCtx.WithError(err).Warn("Chat message rejected")
			c.sendError(err.Error())
		}
	case "code":
		if err := c.session.EditCode(ctx, frame.Content); err != nil {
			logCtx.WithError(err).Warn("Code edit rejected")
			c.sendError(err.Error())
		}
	default:
		logCtx.Warnf("Unknown client frame type: %s", frame.Type)
	}
}

// forwardUpdates streams the session's applied change events as frames.
func (c *Client) forwardUpdates() {
	defer close(c.updatesDone)
	for ev := range c.session.Updates() {
		var frame map[string]interface{}
		switch {
		case ev.Message != nil:
			frame = map[string]interface{}{"type": "message", "message": ev.Message}
		case ev.CodeFile != nil:
			frame = map[string]interface{}{"type": "code", "code_file": ev.CodeFile}
		default:
			continue
		}
		c.enqueue(frame)
	}
}

// sendSnapshot pushes the hydrated room state as the first frame.
func (c *Client) sendSnapshot() {
	c.enqueue(map[string]interface{}{
		"type":      "snapshot",
		"room":      c.session.Room(),
		"members":   c.session.Members(),
		"messages":  c.session.Messages(),
		"code_file": c.session.CodeFile(),
	})
}

func (c *Client) sendError(message string) {
	c.enqueue(map[string]interface{}{"type": "error", "message": message})
}

func (c *Client) enqueue(frame map[string]interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal outbound frame")
		return
	}
	select {
	case c.send <- payload:
	default:
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": c.roomID}).
			Warn("Client send channel full, dropping frame")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": c.userID, "room_id": c.roomID}).
					WithError(err).Warn("Failed to write frame")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) RoomID() uint { return c.roomID }
func (c *Client) UserID() uint { return c.userID }
