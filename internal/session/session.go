// Package session implements the per-room session manager: one instance
// binds one authenticated user to one room, owning the membership gate,
// initial state hydration, live subscription wiring and teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/service"
)

// State of a session. Denied and Closed are terminal.
type State int32

const (
	StateInitializing State = iota
	StateActive
	StateDenied
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateDenied:
		return "denied"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrNotActive = errors.New("session is not active")
	ErrClosed    = errors.New("session is closed")
)

// Manager orchestrates one user's live view of one room. Construct with New,
// then Start; all exported methods are safe for concurrent use.
type Manager struct {
	id     uuid.UUID
	roomID uint
	userID uint

	rooms      *service.RoomService
	chat       *service.ChatService
	code       *service.CodeFileService
	subscriber repository.ChangeSubscriber

	mu           sync.Mutex
	state        State
	room         domain.Room
	members      []domain.Membership
	messages     []domain.Message
	seen         map[uint]struct{}
	file         domain.CodeFile
	lastWriteErr error

	subs      []repository.Subscription
	updates   chan domain.ChangeEvent
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New builds a session for the given identity and room. The identity is
// passed in explicitly; the session never consults ambient auth state.
func New(rooms *service.RoomService, chat *service.ChatService, code *service.CodeFileService, subscriber repository.ChangeSubscriber, roomID, userID uint) *Manager {
	if rooms == nil || chat == nil || code == nil || subscriber == nil {
		panic("all dependencies must be non-nil for session.Manager")
	}
	return &Manager{
		id:         uuid.New(),
		roomID:     roomID,
		userID:     userID,
		rooms:      rooms,
		chat:       chat,
		code:       code,
		subscriber: subscriber,
		state:      StateInitializing,
		seen:       make(map[uint]struct{}),
		updates:    make(chan domain.ChangeEvent, 64),
		closed:     make(chan struct{}),
	}
}

// Start runs the Initializing phase: membership gate, hydration, live
// subscription wiring. Returns service.ErrNotAMember when access is denied;
// in that case the session is terminal and issues no further fetches. Any
// other failure closes the session; there is no retry.
func (m *Manager) Start(ctx context.Context) error {
	logCtx := logrus.WithFields(logrus.Fields{
		"session_id": m.id,
		"room_id":    m.roomID,
		"user_id":    m.userID,
	})

	if _, err := m.rooms.Membership(ctx, m.roomID, m.userID); err != nil {
		if errors.Is(err, service.ErrNotAMember) {
			m.setState(StateDenied)
			logCtx.Warn("Session denied: no membership")
			return err
		}
		m.Close()
		return fmt.Errorf("membership check: %w", err)
	}

	room, err := m.rooms.Room(ctx, m.roomID)
	if err != nil {
		m.Close()
		return fmt.Errorf("hydrate room: %w", err)
	}
	members, err := m.rooms.ListMembers(ctx, m.roomID)
	if err != nil {
		m.Close()
		return fmt.Errorf("hydrate members: %w", err)
	}
	messages, err := m.chat.ListMessages(ctx, m.roomID)
	if err != nil {
		m.Close()
		return fmt.Errorf("hydrate messages: %w", err)
	}
	file, err := m.code.EnsureMainFile(ctx, m.roomID, m.userID)
	if err != nil {
		m.Close()
		return fmt.Errorf("hydrate code file: %w", err)
	}

	// The caller may have torn the session down while the fetches were in
	// flight; late results must not be applied to a closed session.
	select {
	case <-m.closed:
		return ErrClosed
	default:
	}

	m.mu.Lock()
	m.room = *room
	m.members = members
	m.messages = messages
	for _, msg := range messages {
		m.seen[msg.ID] = struct{}{}
	}
	m.file = *file
	m.mu.Unlock()

	msgSub, err := m.subscriber.Subscribe(ctx, m.roomID, domain.EventMessages)
	if err != nil {
		m.Close()
		return fmt.Errorf("subscribe messages: %w", err)
	}
	codeSub, err := m.subscriber.Subscribe(ctx, m.roomID, domain.EventCode)
	if err != nil {
		msgSub.Unsubscribe()
		m.Close()
		return fmt.Errorf("subscribe code: %w", err)
	}

	// Wiring, worker registration and the Active transition happen in one
	// critical section: a concurrent Close either runs wholly before (the
	// re-check fires and the feeds are released) or wholly after (it finds
	// the subs and the wg registrations and tears them down in order). The
	// session can then never report Active after Close has finished.
	m.mu.Lock()
	select {
	case <-m.closed:
		m.mu.Unlock()
		msgSub.Unsubscribe()
		codeSub.Unsubscribe()
		return ErrClosed
	default:
	}
	m.subs = append(m.subs, msgSub, codeSub)
	m.wg.Add(2)
	m.state = StateActive
	m.mu.Unlock()

	go m.consume(msgSub)
	go m.consume(codeSub)

	logCtx.Info("Session active")
	return nil
}

// SendMessage validates and persists a chat message through the gateway.
// There is no optimistic local append: the message shows up when its
// change event comes back through the bridge.
func (m *Manager) SendMessage(ctx context.Context, content string) error {
	if m.State() != StateActive {
		return ErrNotActive
	}
	_, err := m.chat.SendMessage(ctx, m.roomID, m.userID, content)
	return err
}

// EditCode applies the new content locally first, then persists it. A failed
// write is logged and remembered but neither surfaced nor rolled back: the
// last local edit wins on this side even when persistence failed.
func (m *Manager) EditCode(ctx context.Context, content string) error {
	if m.State() != StateActive {
		return ErrNotActive
	}

	m.mu.Lock()
	m.file.Content = content
	localSeq := m.file.UpdatedAt
	m.mu.Unlock()

	f, err := m.code.UpdateMainFile(ctx, m.roomID, m.userID, content, "")
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": m.id,
			"room_id":    m.roomID,
		}).WithError(err).Error("Code edit persistence failed, keeping local state")
		m.mu.Lock()
		m.lastWriteErr = err
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	// Adopt the persisted timestamp unless a newer local edit landed while
	// the write was in flight.
	if m.file.UpdatedAt.Equal(localSeq) || m.file.UpdatedAt.Before(f.UpdatedAt) {
		m.file.UpdatedAt = f.UpdatedAt
		m.file.Language = f.Language
	}
	m.lastWriteErr = nil
	m.mu.Unlock()
	return nil
}

// Close tears the session down: both subscriptions are cancelled and the
// consumer goroutines drained. Idempotent; safe from any state.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)

		m.mu.Lock()
		subs := m.subs
		m.subs = nil
		prev := m.state
		if prev != StateDenied {
			m.state = StateClosed
		}
		m.mu.Unlock()

		for _, sub := range subs {
			sub.Unsubscribe()
		}
		m.wg.Wait()
		close(m.updates)

		logrus.WithFields(logrus.Fields{
			"session_id": m.id,
			"room_id":    m.roomID,
			"user_id":    m.userID,
		}).Info("Session closed")
	})
}

// Updates streams the change events this session applied, in application
// order, for a UI layer to render. Closed when the session closes.
func (m *Manager) Updates() <-chan domain.ChangeEvent { return m.updates }

func (m *Manager) consume(sub repository.Subscription) {
	defer m.wg.Done()
	for {
		select {
		case <-m.closed:
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			m.apply(ev)
		}
	}
}

// apply folds one change event into local state. Events for foreign rooms
// are ignored outright; the per-kind handlers own dedupe and ordering.
func (m *Manager) apply(ev domain.ChangeEvent) {
	if ev.RoomID != m.roomID {
		return
	}
	switch ev.Kind {
	case domain.EventMessages:
		if ev.Message != nil && m.applyMessage(*ev.Message) {
			m.forward(ev)
		}
	case domain.EventCode:
		if ev.CodeFile != nil && m.applyCodeFile(*ev.CodeFile) {
			m.forward(ev)
		}
	}
}

// applyMessage adds a message to the local log. Delivery is at-least-once,
// so duplicates (by ID) are dropped; out-of-order arrivals insert at their
// created-at position.
func (m *Manager) applyMessage(msg domain.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.seen[msg.ID]; dup {
		return false
	}
	m.seen[msg.ID] = struct{}{}

	i := sort.Search(len(m.messages), func(i int) bool {
		return m.messages[i].CreatedAt.After(msg.CreatedAt)
	})
	m.messages = append(m.messages, domain.Message{})
	copy(m.messages[i+1:], m.messages[i:])
	m.messages[i] = msg
	return true
}

// applyCodeFile replaces the local buffer with a remote update, unless the
// update is stale: anything older than the local timestamp loses, which
// also covers the race between a local optimistic edit and a remote write.
func (m *Manager) applyCodeFile(f domain.CodeFile) bool {
	if f.Name != domain.MainFileName {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if f.UpdatedAt.Before(m.file.UpdatedAt) {
		return false
	}
	m.file = f
	return true
}

func (m *Manager) forward(ev domain.ChangeEvent) {
	select {
	case m.updates <- ev:
	default:
		// Observer is not draining; local state already holds the change.
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ID is the unique identifier of this session instance.
func (m *Manager) ID() uuid.UUID { return m.id }

// Room returns the hydrated room record.
func (m *Manager) Room() domain.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room
}

// Members returns a copy of the hydrated membership list.
func (m *Manager) Members() []domain.Membership {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Membership, len(m.members))
	copy(out, m.members)
	return out
}

// Messages returns a copy of the local chat log in created-at order.
func (m *Manager) Messages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// CodeFile returns the local copy of the shared buffer.
func (m *Manager) CodeFile() domain.CodeFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file
}

// LastWriteErr exposes the most recent swallowed code-write failure, nil
// once a later write succeeds.
func (m *Manager) LastWriteErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastWriteErr
}
