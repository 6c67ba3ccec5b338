package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// GormMessageRepository is the GORM implementation of MessageRepository.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: create message (room %d, user %d): %w", msg.RoomID, msg.UserID, err)
	}
	return nil
}

func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list messages for room %d: %w", roomID, err)
	}
	return messages, nil
}
