package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ticketnest/booking-engine/internal/domain"
)

// MemoryBroadcaster is an in-process hub for single-instance
// deployments and tests. Same contract as RedisBroadcaster: best
// effort, no history, slow subscribers lose events instead of
// blocking publishers.
type MemoryBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan domain.SeatEvent]struct{}
	closed      bool
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{
		subscribers: make(map[uuid.UUID]map[chan domain.SeatEvent]struct{}),
	}
}

func (b *MemoryBroadcaster) Publish(ctx context.Context, event domain.SeatEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[event.ShowtimeID] {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

func (b *MemoryBroadcaster) Subscribe(
	ctx context.Context,
	showtimeID uuid.UUID) (<-chan domain.SeatEvent, func(), error) {

	ch := make(chan domain.SeatEvent, 16)

	b.mu.Lock()
	if b.subscribers[showtimeID] == nil {
		b.subscribers[showtimeID] = make(map[chan domain.SeatEvent]struct{})
	}
	b.subscribers[showtimeID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once

	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if _, ok := b.subscribers[showtimeID][ch]; ok {
				delete(b.subscribers[showtimeID], ch)
				if len(b.subscribers[showtimeID]) == 0 {
					delete(b.subscribers, showtimeID)
				}
				close(ch)
			}
		})
	}

	return ch, unsubscribe, nil
}

func (b *MemoryBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for showtimeID, subs := range b.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(b.subscribers, showtimeID)
	}

	return nil
}
