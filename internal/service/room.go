package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// RoomService owns room lifecycle and membership rules.
type RoomService struct {
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
}

func NewRoomService(roomRepo repository.RoomRepository, membershipRepo repository.MembershipRepository) *RoomService {
	if roomRepo == nil || membershipRepo == nil {
		panic("repositories cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo, membershipRepo: membershipRepo}
}

// CreateRoom creates a room owned by userID and its owner membership. The
// two writes are independent: when the membership insert fails after the
// room insert succeeded, the failure is logged and the room is still
// reported created. The resulting memberless room is a known inconsistency
// of this flow.
func (s *RoomService) CreateRoom(ctx context.Context, userID uint, name, description string, isPublic bool) (*domain.Room, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoomNameRequired
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_name": name})

	room := &domain.Room{
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     userID,
		IsPublic:    isPublic,
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("Failed to save new room")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("room_id", room.ID)

	owner := &domain.Membership{RoomID: room.ID, UserID: userID, Role: domain.RoleOwner}
	if err := s.membershipRepo.Create(ctx, owner); err != nil {
		logCtx.WithError(err).Error("Room created but owner membership insert failed")
	}

	logCtx.Info("Room created")
	return room, nil
}

// Membership returns the caller's membership in the room, or ErrNotAMember
// when none exists.
func (s *RoomService) Membership(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	m, err := s.membershipRepo.Find(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, ErrNotAMember
		}
		logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID}).
			WithError(err).Error("Failed to look up membership")
		return nil, ErrInternalServer
	}
	return m, nil
}

// JoinRoom adds userID to the room as a member. Joining a room the user
// already belongs to is a no-op reported as success.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, userID uint) (*domain.Room, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("Join failed: room not found")
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to look up room for join")
		return nil, ErrInternalServer
	}

	_, err = s.membershipRepo.Find(ctx, roomID, userID)
	if err == nil {
		logCtx.Debug("User already a member, join is a no-op")
		return room, nil
	}
	if !errors.Is(err, repository.ErrMembershipNotFound) {
		logCtx.WithError(err).Error("Failed to check existing membership")
		return nil, ErrInternalServer
	}

	m := &domain.Membership{RoomID: roomID, UserID: userID, Role: domain.RoleMember}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		// A concurrent join may have inserted the row first; that still
		// satisfies the idempotency contract.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Debug("Concurrent join already created membership")
			return room, nil
		}
		logCtx.WithError(err).Error("Failed to create membership")
		return nil, ErrInternalServer
	}

	logCtx.Info("User joined room")
	return room, nil
}

// LeaveRoom removes the caller's membership. The owner is refused: owner
// memberships only go away with the room itself.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Failed to look up room for leave")
		return ErrInternalServer
	}
	if room.OwnerID == userID {
		logCtx.Warn("Owner attempted to leave own room")
		return ErrOwnerCannotLeave
	}

	if err := s.membershipRepo.Delete(ctx, roomID, userID); err != nil {
		logCtx.WithError(err).Error("Failed to delete membership")
		return ErrInternalServer
	}
	logCtx.Info("User left room")
	return nil
}

// ListRoomsForUser returns the rooms the user belongs to, newest first.
func (s *RoomService) ListRoomsForUser(ctx context.Context, userID uint) ([]domain.Room, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	rooms, err := s.roomRepo.ListByMember(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("Failed to list rooms")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// Room returns one room by ID.
func (s *RoomService) Room(ctx context.Context, roomID uint) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to fetch room")
		return nil, ErrInternalServer
	}
	return room, nil
}

// ListMembers returns the room's memberships ordered by join time.
func (s *RoomService) ListMembers(ctx context.Context, roomID uint) ([]domain.Membership, error) {
	members, err := s.membershipRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to list members")
		return nil, ErrInternalServer
	}
	return members, nil
}
