package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// ChatService appends and lists the per-room chat log.
type ChatService struct {
	messageRepo repository.MessageRepository
	publisher   repository.ChangePublisher
	stateRepo   repository.StateRepository
}

func NewChatService(messageRepo repository.MessageRepository, publisher repository.ChangePublisher, stateRepo repository.StateRepository) *ChatService {
	if messageRepo == nil || publisher == nil {
		panic("MessageRepository and ChangePublisher cannot be nil for ChatService")
	}
	return &ChatService{messageRepo: messageRepo, publisher: publisher, stateRepo: stateRepo}
}

// SendMessage validates, persists and announces one chat message. Content is
// trimmed; an empty result is rejected before any write.
func (s *ChatService) SendMessage(ctx context.Context, roomID, userID uint, content string) (*domain.Message, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	msg := &domain.Message{RoomID: roomID, UserID: userID, Content: content}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		logCtx.WithError(err).Error("Failed to persist message")
		return nil, ErrInternalServer
	}

	// The write already succeeded; notification and activity tracking are
	// best effort from here.
	if err := s.publisher.PublishMessageInserted(ctx, *msg); err != nil {
		logCtx.WithError(err).Error("Failed to publish message-inserted event")
	}
	if s.stateRepo != nil {
		if err := s.stateRepo.TouchRoomActivity(ctx, roomID); err != nil {
			logCtx.WithError(err).Debug("Failed to touch room activity")
		}
	}

	logCtx.WithField("message_id", msg.ID).Debug("Message sent")
	return msg, nil
}

// ListMessages returns the room's chat log in creation order.
func (s *ChatService) ListMessages(ctx context.Context, roomID uint) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to list messages")
		return nil, ErrInternalServer
	}
	return messages, nil
}
