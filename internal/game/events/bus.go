package events

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// EventBus delivers search events synchronously, in the publisher's
// goroutine. It is safe for concurrent publishers.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  map[string]Subscriber
	funcHandlers map[string][]funcHandler
	nextFuncID   int
	logger       zerolog.Logger
}

type funcHandler struct {
	id     string
	handle EventHandler
}

// NewEventBus creates a bus that reports handler panics through logger
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers:  make(map[string]Subscriber),
		funcHandlers: make(map[string][]funcHandler),
		logger:       logger.With().Str("component", "EventBus").Logger(),
	}
}

// Subscribe registers subscriber, replacing any subscriber with the same id
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[subscriber.ID()] = subscriber
	eb.logger.Debug().Str("subscriber_id", subscriber.ID()).Msg("Subscriber added")
}

// Unsubscribe removes a subscriber by id
func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delete(eb.subscribers, subscriberID)
	eb.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
}

// SubscribeFunc registers handler for one event type and returns its id
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextFuncID++
	id := eventType + "#" + strconv.Itoa(eb.nextFuncID)
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], funcHandler{id: id, handle: handler})
	return id
}

// Publish hands event to every interested subscriber and handler. A panicking
// handler is logged and does not stop delivery to the others.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	eventType := event.Type()
	for id, subscriber := range eb.subscribers {
		if subscriber.InterestedIn(eventType) {
			eb.deliver(event, id, subscriber.HandleEvent)
		}
	}
	for _, h := range eb.funcHandlers[eventType] {
		eb.deliver(event, h.id, h.handle)
	}
}

func (eb *EventBus) deliver(event Event, handlerID string, handle EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("handler_id", handlerID).
				Str("event_type", event.Type()).
				Str("search_id", event.SearchID()).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	handle(event)
}
