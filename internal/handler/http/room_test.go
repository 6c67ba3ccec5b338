package http_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	httpHandler "github.com/Divyagaur16/codehuddle-collabspace/internal/handler/http"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository/mocks"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/service"
)

type handlerEnv struct {
	roomRepo       *mocks.RoomRepository
	membershipRepo *mocks.MembershipRepository
	messageRepo    *mocks.MessageRepository
	router         *gin.Engine
}

// newHandlerEnv builds a router with the authenticated user stubbed in,
// bypassing the JWT middleware.
func newHandlerEnv(userID uint) *handlerEnv {
	gin.SetMode(gin.TestMode)
	env := &handlerEnv{
		roomRepo:       new(mocks.RoomRepository),
		membershipRepo: new(mocks.MembershipRepository),
		messageRepo:    new(mocks.MessageRepository),
	}

	roomService := service.NewRoomService(env.roomRepo, env.membershipRepo)
	chatService := service.NewChatService(env.messageRepo, new(mocks.ChangePublisher), nil)
	// The asynq client connects lazily; none of these tests enqueue.
	runService := service.NewRunService(asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}))
	handler := httpHandler.NewRoomHandler(roomService, chatService, runService)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.POST("/api/rooms", handler.CreateRoom)
	router.POST("/api/rooms/:roomId/join", handler.JoinRoom)
	router.POST("/api/rooms/:roomId/leave", handler.LeaveRoom)
	router.POST("/api/rooms/:roomId/messages", handler.SendMessage)
	env.router = router
	return env
}

func TestRoomHandler_CreateRoom_OK(t *testing.T) {
	env := newHandlerEnv(7)

	env.roomRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Room")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Room).ID = 42 }).
		Return(nil).Once()
	env.membershipRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Membership")).
		Return(nil).Once()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name": "algo study", "description": "daily"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", body)
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Room created successfully")
	assert.Contains(t, w.Body.String(), `"room_id":42`)
}

func TestRoomHandler_CreateRoom_MissingName(t *testing.T) {
	env := newHandlerEnv(7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomHandler_JoinRoom_NotFound(t *testing.T) {
	env := newHandlerEnv(7)

	env.roomRepo.On("FindByID", mock.Anything, uint(99)).
		Return(nil, repository.ErrRoomNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/99/join", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoomHandler_LeaveRoom_OwnerForbidden(t *testing.T) {
	env := newHandlerEnv(7)

	env.roomRepo.On("FindByID", mock.Anything, uint(4)).
		Return(&domain.Room{ID: 4, OwnerID: 7}, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/4/leave", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.membershipRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomHandler_SendMessage_RequiresMembership(t *testing.T) {
	env := newHandlerEnv(7)

	env.membershipRepo.On("Find", mock.Anything, uint(4), uint(7)).
		Return(nil, repository.ErrMembershipNotFound).Once()

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"content": "hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/4/messages", body)
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
