package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository/mocks"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/service"
)

func TestChatService_SendMessage_PersistsAndPublishes(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	mockPublisher := new(mocks.ChangePublisher)
	mockState := new(mocks.StateRepository)
	chatService := service.NewChatService(mockMessageRepo, mockPublisher, mockState)
	ctx := context.Background()

	mockMessageRepo.On("Create", ctx, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.RoomID == uint(4) && msg.UserID == uint(8) && msg.Content == "hello"
	})).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Message).ID = 17 }).
		Return(nil).Once()
	mockPublisher.On("PublishMessageInserted", ctx, mock.MatchedBy(func(msg domain.Message) bool {
		return msg.ID == uint(17)
	})).Return(nil).Once()
	mockState.On("TouchRoomActivity", ctx, uint(4)).Return(nil).Once()

	msg, err := chatService.SendMessage(ctx, 4, 8, "  hello  ")

	require.NoError(t, err)
	assert.Equal(t, uint(17), msg.ID)
	assert.Equal(t, "hello", msg.Content, "content should be trimmed before persisting")

	mockMessageRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
	mockState.AssertExpectations(t)
}

func TestChatService_SendMessage_EmptyContentRejected(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	mockPublisher := new(mocks.ChangePublisher)
	chatService := service.NewChatService(mockMessageRepo, mockPublisher, nil)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := chatService.SendMessage(context.Background(), 4, 8, content)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrEmptyMessage))
	}

	mockMessageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "PublishMessageInserted", mock.Anything, mock.Anything)
}

func TestChatService_SendMessage_PublishFailureDoesNotFailSend(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	mockPublisher := new(mocks.ChangePublisher)
	chatService := service.NewChatService(mockMessageRepo, mockPublisher, nil)
	ctx := context.Background()

	mockMessageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Message).ID = 3 }).
		Return(nil).Once()
	mockPublisher.On("PublishMessageInserted", ctx, mock.AnythingOfType("domain.Message")).
		Return(errors.New("redis down")).Once()

	msg, err := chatService.SendMessage(ctx, 4, 8, "still works")

	require.NoError(t, err)
	assert.Equal(t, uint(3), msg.ID)
	mockPublisher.AssertExpectations(t)
}

func TestChatService_SendMessage_Unauthenticated(t *testing.T) {
	chatService := service.NewChatService(new(mocks.MessageRepository), new(mocks.ChangePublisher), nil)

	_, err := chatService.SendMessage(context.Background(), 4, 0, "hello")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrUnauthenticated))
}

func TestChatService_ListMessages_ReturnsRepoOrder(t *testing.T) {
	mockMessageRepo := new(mocks.MessageRepository)
	chatService := service.NewChatService(mockMessageRepo, new(mocks.ChangePublisher), nil)
	ctx := context.Background()

	stored := []domain.Message{
		{ID: 1, RoomID: 4, Content: "first"},
		{ID: 2, RoomID: 4, Content: "second"},
	}
	mockMessageRepo.On("ListByRoom", ctx, uint(4)).Return(stored, nil).Once()

	messages, err := chatService.ListMessages(ctx, 4)

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
	mockMessageRepo.AssertExpectations(t)
}
