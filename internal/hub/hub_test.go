package hub_test

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/hub"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository/mocks"
)

type fakeRunFeed struct {
	events       chan domain.ChangeEvent
	once         sync.Once
	mu           sync.Mutex
	unsubscribed bool
}

func newFakeRunFeed() *fakeRunFeed {
	return &fakeRunFeed{events: make(chan domain.ChangeEvent, 8)}
}

func (f *fakeRunFeed) Events() <-chan domain.ChangeEvent { return f.events }

func (f *fakeRunFeed) Unsubscribe() {
	f.once.Do(func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.mu.Unlock()
		close(f.events)
	})
}

func (f *fakeRunFeed) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

func TestHub_RunFeedSharedAcrossClients(t *testing.T) {
	subscriber := new(mocks.ChangeSubscriber)
	stateRepo := new(mocks.StateRepository)
	feed := newFakeRunFeed()

	// One shared feed per room, opened by the first client only.
	subscriber.On("Subscribe", mock.Anything, uint(4), domain.EventRuns).
		Return(repository.Subscription(feed), nil).Once()
	stateRepo.On("AddPresence", mock.Anything, uint(4), mock.AnythingOfType("uint")).Return(nil)

	var removed int32
	stateRepo.On("RemovePresence", mock.Anything, uint(4), mock.AnythingOfType("uint")).
		Run(func(mock.Arguments) { atomic.AddInt32(&removed, 1) }).
		Return(nil)

	h := hub.NewHub(subscriber, stateRepo)
	go h.Run()

	first := hub.NewClient(h, nil, nil, 4, 8)
	second := hub.NewClient(h, nil, nil, 4, 9)
	require.True(t, h.QueueMessage(hub.HubMessage{Type: "register", Client: first}))
	require.True(t, h.QueueMessage(hub.HubMessage{Type: "register", Client: second}))

	require.Eventually(t, func() bool {
		return len(h.ActiveRoomIDs()) == 1
	}, time.Second, 5*time.Millisecond)
	subscriber.AssertNumberOfCalls(t, "Subscribe", 1)

	// Feed stays open while any client remains.
	h.QueueMessage(hub.HubMessage{Type: "unregister", Client: first})
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&removed) == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, feed.isUnsubscribed())
	assert.Len(t, h.ActiveRoomIDs(), 1)

	// Last client out closes the feed and the room entry.
	h.QueueMessage(hub.HubMessage{Type: "unregister", Client: second})
	require.Eventually(t, func() bool {
		return len(h.ActiveRoomIDs()) == 0 && feed.isUnsubscribed()
	}, time.Second, 5*time.Millisecond)
}

// Run-result fan-out and client disconnect race on the same send channels:
// broadcasting must never hit a channel the hub has already closed.
func TestHub_BroadcastDuringUnregisterDoesNotPanic(t *testing.T) {
	subscriber := new(mocks.ChangeSubscriber)
	stateRepo := new(mocks.StateRepository)
	feed := newFakeRunFeed()

	subscriber.On("Subscribe", mock.Anything, uint(4), domain.EventRuns).
		Return(repository.Subscription(feed), nil)
	stateRepo.On("AddPresence", mock.Anything, uint(4), mock.AnythingOfType("uint")).Return(nil)
	stateRepo.On("RemovePresence", mock.Anything, uint(4), mock.AnythingOfType("uint")).Return(nil)

	// The saturated anchor channel makes every broadcast log a warning.
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(os.Stderr)

	h := hub.NewHub(subscriber, stateRepo)
	go h.Run()

	// An anchor client keeps the room alive across the churn below.
	anchor := hub.NewClient(h, nil, nil, 4, 1)
	require.True(t, h.QueueMessage(hub.HubMessage{Type: "register", Client: anchor}))
	require.Eventually(t, func() bool {
		return len(h.ActiveRoomIDs()) == 1
	}, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	var wg sync.WaitGroup
	frame := []byte(`{"type":"run_result"}`)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.Broadcast(4, frame, nil)
				}
			}
		}()
	}

	// Churn clients through the room while the broadcasters run. Any
	// send on a closed channel panics and fails the whole test binary.
	for i := 0; i < 200; i++ {
		c := hub.NewClient(h, nil, nil, 4, uint(100+i))
		for !h.QueueMessage(hub.HubMessage{Type: "register", Client: c}) {
			time.Sleep(time.Millisecond)
		}
		for !h.QueueMessage(hub.HubMessage{Type: "unregister", Client: c}) {
			time.Sleep(time.Millisecond)
		}
	}
	close(done)
	wg.Wait()

	require.Eventually(t, func() bool {
		return len(h.ActiveRoomIDs()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHub_StopAllSubscriptions(t *testing.T) {
	subscriber := new(mocks.ChangeSubscriber)
	stateRepo := new(mocks.StateRepository)
	feed := newFakeRunFeed()

	subscriber.On("Subscribe", mock.Anything, uint(4), domain.EventRuns).
		Return(repository.Subscription(feed), nil).Once()
	stateRepo.On("AddPresence", mock.Anything, uint(4), uint(8)).Return(nil)

	h := hub.NewHub(subscriber, stateRepo)
	go h.Run()

	client := hub.NewClient(h, nil, nil, 4, 8)
	require.True(t, h.QueueMessage(hub.HubMessage{Type: "register", Client: client}))
	require.Eventually(t, func() bool {
		return len(h.ActiveRoomIDs()) == 1
	}, time.Second, 5*time.Millisecond)

	h.StopAllSubscriptions()
	assert.True(t, feed.isUnsubscribed())
}
