package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// GormMembershipRepository is the GORM implementation of MembershipRepository.
type GormMembershipRepository struct {
	db *gorm.DB
}

func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMembershipRepository")
	}
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("gorm: find membership (room %d, user %d): %w", roomID, userID, err)
	}
	return &m, nil
}

func (r *GormMembershipRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error) {
	var members []domain.Membership
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list memberships for room %d: %w", roomID, err)
	}
	return members, nil
}

func (r *GormMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create membership (room %d, user %d): %w", m.RoomID, m.UserID, err)
	}
	return nil
}

func (r *GormMembershipRepository) Delete(ctx context.Context, roomID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&domain.Membership{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete membership (room %d, user %d): %w", roomID, userID, err)
	}
	return nil
}
