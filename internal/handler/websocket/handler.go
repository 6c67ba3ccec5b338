package websocket

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/hub"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/service"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the auth middleware's token check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub         *hub.Hub
	roomService *service.RoomService
	chatService *service.ChatService
	codeService *service.CodeFileService
	subscriber  repository.ChangeSubscriber
}

func NewHandler(h *hub.Hub, rooms *service.RoomService, chat *service.ChatService, code *service.CodeFileService, subscriber repository.ChangeSubscriber) *Handler {
	if h == nil || rooms == nil || chat == nil || code == nil || subscriber == nil {
		panic("websocket.NewHandler: nil dependency")
	}
	return &Handler{
		hub:         h,
		roomService: rooms,
		chatService: chat,
		codeService: code,
		subscriber:  subscriber,
	}
}

// ServeRoom upgrades GET /ws/rooms/:roomId to a WebSocket connection.
// The room session is started before the upgrade so membership denial
// can be reported as a plain HTTP status.
func (h *Handler) ServeRoom(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 32)
	if err != nil || roomID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	roomID := uint(roomID64)

	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	sess := session.New(h.roomService, h.chatService, h.codeService, h.subscriber, roomID, userID)
	if err := sess.Start(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, service.ErrNotAMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this room"})
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		default:
			logCtx.WithError(err).Error("Failed to start room session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join room"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logCtx.WithError(err).Warn("WebSocket upgrade failed")
		sess.Close()
		return
	}

	client := hub.NewClient(h.hub, conn, sess, roomID, userID)
	h.hub.QueueMessage(hub.HubMessage{Type: "register", Client: client})
	client.Run()

	logCtx.WithField("session_id", sess.ID()).Info("WebSocket client connected")
}
