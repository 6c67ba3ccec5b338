// Package hub maintains the set of live WebSocket clients per room and fans
// room-scoped events out to them.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// WebSocket timing and sizing shared by hub and client.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// HubMessage is the internal envelope of the hub's event loop.
type HubMessage struct {
	Type   string // "register" or "unregister"
	Client *Client
}

// Hub tracks connected clients grouped by room. Each client carries its own
// session manager for chat/code state; the hub's own job is presence
// bookkeeping and the room-level run-result feed, which is shared by all
// clients of a room rather than opened per connection.
type Hub struct {
	messageChan chan HubMessage

	rooms   map[uint]map[*Client]bool
	runSubs map[uint]repository.Subscription
	roomsMu sync.RWMutex

	subscriber repository.ChangeSubscriber
	stateRepo  repository.StateRepository
}

func NewHub(subscriber repository.ChangeSubscriber, stateRepo repository.StateRepository) *Hub {
	if subscriber == nil {
		panic("ChangeSubscriber cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[uint]map[*Client]bool),
		runSubs:     make(map[uint]repository.Subscription),
		subscriber:  subscriber,
		stateRepo:   stateRepo,
	}
}

// Run is the hub's event loop; run it in its own goroutine.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		default:
			log.Warnf("Unknown hub message type: %s", msg.Type)
		}
	}
	log.Info("Hub stopped")
}

// QueueMessage enqueues a hub message without blocking. Returns false when
// the hub is saturated.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": client.UserID()})

	h.roomsMu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
		h.openRunFeedLocked(roomID)
	}
	h.rooms[roomID][client] = true
	h.roomsMu.Unlock()

	if h.stateRepo != nil {
		if err := h.stateRepo.AddPresence(context.Background(), roomID, client.UserID()); err != nil {
			logCtx.WithError(err).Warn("Failed to record presence")
		}
	}
	logCtx.Info("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	roomID := client.RoomID()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": client.UserID()})

	h.roomsMu.Lock()
	if roomClients, ok := h.rooms[roomID]; ok {
		if _, exists := roomClients[client]; exists {
			delete(roomClients, client)
			close(client.send)
		}
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
			if sub, ok := h.runSubs[roomID]; ok {
				sub.Unsubscribe()
				delete(h.runSubs, roomID)
			}
		}
	}
	h.roomsMu.Unlock()

	if h.stateRepo != nil {
		if err := h.stateRepo.RemovePresence(context.Background(), roomID, client.UserID()); err != nil {
			logCtx.WithError(err).Warn("Failed to clear presence")
		}
	}
	logCtx.Info("Client unregistered")
}

// openRunFeedLocked starts the shared run-result subscription for a room.
// Caller holds roomsMu.
func (h *Hub) openRunFeedLocked(roomID uint) {
	sub, err := h.subscriber.Subscribe(context.Background(), roomID, domain.EventRuns)
	if err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Error("Failed to open run feed")
		return
	}
	h.runSubs[roomID] = sub
	go func() {
		for ev := range sub.Events() {
			if ev.RunResult == nil {
				continue
			}
			frame, err := json.Marshal(map[string]interface{}{
				"type":       "run_result",
				"run_result": ev.RunResult,
			})
			if err != nil {
				continue
			}
			h.Broadcast(roomID, frame, nil)
		}
	}()
}

// Broadcast sends a frame to every client of a room, skipping sender. Sends
// never block; a saturated client just misses the frame. The lock is held
// across the sends: unregisterClient closes send channels under the write
// lock, so a client seen here cannot have its channel closed mid-send.
func (h *Hub) Broadcast(roomID uint, frame []byte, sender *Client) {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()

	for c := range h.rooms[roomID] {
		if c == sender {
			continue
		}
		select {
		case c.send <- frame:
		default:
			logrus.WithFields(logrus.Fields{
				"room_id": roomID,
				"user_id": c.UserID(),
			}).Warn("Client send channel full, skipping frame")
		}
	}
}

// ActiveRoomIDs lists rooms with at least one connected client.
func (h *Hub) ActiveRoomIDs() []uint {
	h.roomsMu.RLock()
	defer h.roomsMu.RUnlock()
	ids := make([]uint, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}

// StopAllSubscriptions tears down every shared run feed; used on shutdown.
func (h *Hub) StopAllSubscriptions() {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	for id, sub := range h.runSubs {
		sub.Unsubscribe()
		delete(h.runSubs, id)
	}
}
