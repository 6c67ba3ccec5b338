package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// GormCodeFileRepository is the GORM implementation of CodeFileRepository.
type GormCodeFileRepository struct {
	db *gorm.DB
}

func NewGormCodeFileRepository(db *gorm.DB) *GormCodeFileRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCodeFileRepository")
	}
	return &GormCodeFileRepository{db: db}
}

func (r *GormCodeFileRepository) FindByRoomAndName(ctx context.Context, roomID uint, name string) (*domain.CodeFile, error) {
	var f domain.CodeFile
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND name = ?", roomID, name).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCodeFileNotFound
		}
		return nil, fmt.Errorf("gorm: find code file (room %d, name %s): %w", roomID, name, err)
	}
	return &f, nil
}

func (r *GormCodeFileRepository) Create(ctx context.Context, f *domain.CodeFile) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create code file (room %d, name %s): %w", f.RoomID, f.Name, err)
	}
	return nil
}

func (r *GormCodeFileRepository) UpdateContent(ctx context.Context, roomID uint, name, content, language string) (*domain.CodeFile, error) {
	updates := map[string]interface{}{
		"content":    content,
		"updated_at": time.Now(),
	}
	if language != "" {
		updates["language"] = language
	}
	res := r.db.WithContext(ctx).
		Model(&domain.CodeFile{}).
		Where("room_id = ? AND name = ?", roomID, name).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("gorm: update code file (room %d, name %s): %w", roomID, name, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrCodeFileNotFound
	}
	return r.FindByRoomAndName(ctx, roomID, name)
}
