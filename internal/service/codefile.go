package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// CodeFileService owns the shared "main" buffer of each room.
type CodeFileService struct {
	codeRepo  repository.CodeFileRepository
	publisher repository.ChangePublisher
	stateRepo repository.StateRepository
}

func NewCodeFileService(codeRepo repository.CodeFileRepository, publisher repository.ChangePublisher, stateRepo repository.StateRepository) *CodeFileService {
	if codeRepo == nil || publisher == nil {
		panic("CodeFileRepository and ChangePublisher cannot be nil for CodeFileService")
	}
	return &CodeFileService{codeRepo: codeRepo, publisher: publisher, stateRepo: stateRepo}
}

// EnsureMainFile returns the room's "main" file, creating it with the
// defaults when the room has none yet.
func (s *CodeFileService) EnsureMainFile(ctx context.Context, roomID, userID uint) (*domain.CodeFile, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	f, err := s.codeRepo.FindByRoomAndName(ctx, roomID, domain.MainFileName)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, repository.ErrCodeFileNotFound) {
		logCtx.WithError(err).Error("Failed to fetch main code file")
		return nil, ErrInternalServer
	}

	f = &domain.CodeFile{
		RoomID:    roomID,
		Name:      domain.MainFileName,
		Content:   domain.DefaultFileContent,
		Language:  domain.DefaultLanguage,
		CreatedBy: userID,
	}
	if err := s.codeRepo.Create(ctx, f); err != nil {
		// Two sessions entering an empty room race on the insert; the
		// loser reads the winner's row.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			existing, findErr := s.codeRepo.FindByRoomAndName(ctx, roomID, domain.MainFileName)
			if findErr != nil {
				logCtx.WithError(findErr).Error("Failed to re-read main file after create race")
				return nil, ErrInternalServer
			}
			return existing, nil
		}
		logCtx.WithError(err).Error("Failed to create main code file")
		return nil, ErrInternalServer
	}
	logCtx.Info("Created default main code file")
	return f, nil
}

// UpdateMainFile overwrites the room's "main" content. No diffing, no merge:
// the stored row after two sequential updates holds only the second content.
func (s *CodeFileService) UpdateMainFile(ctx context.Context, roomID, userID uint, content, language string) (*domain.CodeFile, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	f, err := s.codeRepo.UpdateContent(ctx, roomID, domain.MainFileName, content, language)
	if err != nil {
		if errors.Is(err, repository.ErrCodeFileNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to update code file")
		return nil, ErrInternalServer
	}

	if err := s.publisher.PublishCodeFileUpdated(ctx, *f); err != nil {
		logCtx.WithError(err).Error("Failed to publish code-file-updated event")
	}
	if s.stateRepo != nil {
		if err := s.stateRepo.TouchRoomActivity(ctx, roomID); err != nil {
			logCtx.WithError(err).Debug("Failed to touch room activity")
		}
	}
	return f, nil
}
