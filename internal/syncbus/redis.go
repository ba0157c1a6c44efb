package syncbus

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus carries events over a redis pub/sub channel, the server-pushed
// variant of the invalidation bus. Locally published events come back through
// the subscription like everyone else's, so there is a single delivery path.
type RedisBus struct {
	client  *redis.Client
	channel string
	log     *zap.Logger

	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRedisBus(client *redis.Client, channel string, log *zap.Logger) *RedisBus {
	return &RedisBus{
		client:   client,
		channel:  channel,
		log:      log,
		handlers: make(map[int]Handler),
	}
}

// Start opens the subscription and begins fanning messages out. Must be
// called before any event is expected to arrive.
func (b *RedisBus) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	sub := b.client.Subscribe(ctx, b.channel)
	// Force the SUBSCRIBE round trip so a publish right after Start is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return err
	}

	go func() {
		defer close(b.done)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn("dropping malformed sync event", zap.Error(err))
					continue
				}
				b.dispatch(event)
			}
		}
	}()

	return nil
}

func (b *RedisBus) Stop() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
}

func (b *RedisBus) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error("failed to encode sync event", zap.Error(err))
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		// Best-effort by contract; consumers re-validate server-side anyway.
		b.log.Warn("failed to publish sync event",
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
	}
}

func (b *RedisBus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

func (b *RedisBus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
