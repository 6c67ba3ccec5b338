// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*domain.Room); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) ListByMember(ctx context.Context, userID uint) ([]domain.Room, error) {
	args := m.Called(ctx, userID)
	if rooms, ok := args.Get(0).([]domain.Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}

type MembershipRepository struct {
	mock.Mock
}

func (m *MembershipRepository) Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error) {
	args := m.Called(ctx, roomID, userID)
	if mem, ok := args.Get(0).(*domain.Membership); ok {
		return mem, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error) {
	args := m.Called(ctx, roomID)
	if members, ok := args.Get(0).([]domain.Membership); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MembershipRepository) Delete(ctx context.Context, roomID, userID uint) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.Message, error) {
	args := m.Called(ctx, roomID)
	if msgs, ok := args.Get(0).([]domain.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

type CodeFileRepository struct {
	mock.Mock
}

func (m *CodeFileRepository) FindByRoomAndName(ctx context.Context, roomID uint, name string) (*domain.CodeFile, error) {
	args := m.Called(ctx, roomID, name)
	if f, ok := args.Get(0).(*domain.CodeFile); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CodeFileRepository) Create(ctx context.Context, f *domain.CodeFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *CodeFileRepository) UpdateContent(ctx context.Context, roomID uint, name, content, language string) (*domain.CodeFile, error) {
	args := m.Called(ctx, roomID, name, content, language)
	if f, ok := args.Get(0).(*domain.CodeFile); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) AddPresence(ctx context.Context, roomID, userID uint) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *StateRepository) RemovePresence(ctx context.Context, roomID, userID uint) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *StateRepository) PresentUserIDs(ctx context.Context, roomID uint) ([]uint, error) {
	args := m.Called(ctx, roomID)
	if ids, ok := args.Get(0).([]uint); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) ClearPresence(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *StateRepository) TouchRoomActivity(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *StateRepository) LastRoomActivity(ctx context.Context, roomID uint) (time.Time, error) {
	args := m.Called(ctx, roomID)
	if t, ok := args.Get(0).(time.Time); ok {
		return t, args.Error(1)
	}
	return time.Time{}, args.Error(1)
}

func (m *StateRepository) ActiveRoomIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]uint); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) ClearRoomActivity(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *StateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type ChangePublisher struct {
	mock.Mock
}

func (m *ChangePublisher) PublishMessageInserted(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ChangePublisher) PublishCodeFileUpdated(ctx context.Context, f domain.CodeFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *ChangePublisher) PublishRunCompleted(ctx context.Context, res domain.RunResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

type ChangeSubscriber struct {
	mock.Mock
}

func (m *ChangeSubscriber) Subscribe(ctx context.Context, roomID uint, kind domain.EventKind) (repository.Subscription, error) {
	args := m.Called(ctx, roomID, kind)
	if sub, ok := args.Get(0).(repository.Subscription); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

type Subscription struct {
	mock.Mock
}

func (m *Subscription) Events() <-chan domain.ChangeEvent {
	args := m.Called()
	if ch, ok := args.Get(0).(<-chan domain.ChangeEvent); ok {
		return ch
	}
	return args.Get(0).(chan domain.ChangeEvent)
}

func (m *Subscription) Unsubscribe() {
	m.Called()
}
