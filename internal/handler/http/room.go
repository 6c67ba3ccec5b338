package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/service"
)

// RoomHandler exposes room management, chat history and code run endpoints.
type RoomHandler struct {
	roomService *service.RoomService
	chatService *service.ChatService
	runService  *service.RunService
}

func NewRoomHandler(roomService *service.RoomService, chatService *service.ChatService, runService *service.RunService) *RoomHandler {
	if roomService == nil || chatService == nil || runService == nil {
		panic("http.NewRoomHandler: nil dependency")
	}
	return &RoomHandler{
		roomService: roomService,
		chatService: chatService,
		runService:  runService,
	}
}

func roomIDParam(c *gin.Context) (uint, bool) {
	roomID64, err := strconv.ParseUint(c.Param("roomId"), 10, 32)
	if err != nil || roomID64 == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid room id")
		return 0, false
	}
	return uint(roomID64), true
}

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	IsPublic    *bool  `json:"is_public"`
}

type CreateRoomResponse struct {
	Message string `json:"message"`
	RoomID  uint   `json:"room_id"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", userID)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	newRoom, err := h.roomService.CreateRoom(c.Request.Context(), userID, req.Name, req.Description, isPublic)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: Failed to create room")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("room_id", newRoom.ID).Info("Handler.CreateRoom: Room created successfully")
	SuccessResponse(c, http.StatusOK, CreateRoomResponse{
		Message: "Room created successfully",
		RoomID:  newRoom.ID,
	})
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	rooms, err := h.roomService.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Handler.ListRooms: Failed to list rooms")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	if _, ok := authenticatedUserID(c); !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	room, err := h.roomService.Room(c.Request.Context(), roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"room": room})
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	joinedRoom, err := h.roomService.JoinRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.JoinRoom: Failed to join room")
		HandleServiceError(c, err)
		return
	}

	logCtx.Info("Handler.JoinRoom: User joined room successfully")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message": "Joined room successfully",
		"room_id": joinedRoom.ID,
	})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	if err := h.roomService.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
		logCtx.WithError(err).Warn("Handler.LeaveRoom: Failed to leave room")
		HandleServiceError(c, err)
		return
	}

	logCtx.Info("Handler.LeaveRoom: User left room")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Left room successfully"})
}

func (h *RoomHandler) ListMembers(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	// Membership listing is private to the room.
	if _, err := h.roomService.Membership(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	members, err := h.roomService.ListMembers(c.Request.Context(), roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"members": members})
}

func (h *RoomHandler) ListMessages(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}

	if _, err := h.roomService.Membership(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"messages": messages})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *RoomHandler) SendMessage(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.SendMessage: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: content is required")
		return
	}

	if _, err := h.roomService.Membership(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), roomID, userID, req.Content)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.SendMessage: Failed to send message")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": msg})
}

func (h *RoomHandler) RunCode(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	if _, err := h.roomService.Membership(c.Request.Context(), roomID, userID); err != nil {
		HandleServiceError(c, err)
		return
	}

	runID, err := h.runService.EnqueueRun(c.Request.Context(), roomID, userID)
	if err != nil {
		logCtx.WithError(err).Error("Handler.RunCode: Failed to enqueue code run")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("run_id", runID).Info("Handler.RunCode: Code run enqueued")
	SuccessResponse(c, http.StatusAccepted, gin.H{
		"message": "Run enqueued",
		"run_id":  runID,
	})
}
