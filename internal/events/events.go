package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/logger"
)

// Channel every advisor change is published on in-process.
const ADVISOR_CHANNEL = "advisors"

const (
	AdvisorCreated = "advisor.created"
	AdvisorUpdated = "advisor.updated"
	AdvisorDeleted = "advisor.deleted"
)

var ErrBusClosed = errors.New("event bus is closed")

type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	AdvisorID int       `json:"advisorId"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// EventBus fans events out to in-process subscribers and, when an events cache
// client is configured, republishes them on the configured valkey channel.
// Handlers run on the publishing goroutine and must not block.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	nextID      uint64
	closed      bool

	cache   database.CacheClient
	channel string
	log     logger.Logger
}

func New(cache database.CacheClient, config config.Config) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]subscription),
		cache:       cache,
		channel:     config.EventsChannel,
		log:         logger.New("events"),
	}
}

// Subscribe registers handler for channel and returns a func removing it.
func (b *EventBus) Subscribe(channel string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subscribers[channel] = append(b.subscribers[channel], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(channel, id) })
	}
}

func (b *EventBus) remove(channel string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[channel]
	for i, sub := range subs {
		if sub.id == id {
			b.subscribers[channel] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[channel]) == 0 {
		delete(b.subscribers, channel)
	}
}

func (b *EventBus) Publish(channel string, event Event) error {
	return b.PublishContext(context.Background(), channel, event)
}

func (b *EventBus) PublishContext(ctx context.Context, channel string, event Event) error {
	log := b.log.Function("Publish")

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]Handler, 0, len(b.subscribers[channel]))
	for _, sub := range b.subscribers[channel] {
		handlers = append(handlers, sub.handler)
	}
	b.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	for _, handler := range handlers {
		handler(event)
	}

	if b.cache == nil || b.channel == "" {
		return nil
	}

	if err := database.NewCacheBuilder(b.cache, b.channel).
		WithStruct(event).
		WithContext(ctx).
		Publish(); err != nil {
		return log.Err("failed to publish event to cache", err, "type", event.Type, "channel", b.channel)
	}

	return nil
}

func (b *EventBus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}

// Close drops every subscriber. Later publishes fail with ErrBusClosed.
func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.subscribers = make(map[string][]subscription)
	return nil
}
