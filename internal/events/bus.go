package events

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Topic names a class of event. The set of topics is open-ended; the bus
// does not validate names. Well-known topics live in topics.go.
type Topic string

// Event is what handlers receive: the topic it was emitted on and the
// topic's payload (one of the typed payload structs in topics.go for the
// well-known topics).
type Event struct {
	Topic   Topic `json:"topic"`
	Payload any   `json:"payload"`
}

// Handler is a callback registered against a topic.
type Handler func(Event)

// ErrReentrantEmission is returned by Emit when the topic is already
// mid-emission on this bus. No handlers run for the rejected call.
var ErrReentrantEmission = errors.New("events: reentrant emission")

// Metrics receives bus-level counters. Optional.
type Metrics interface {
	EventEmitted(topic Topic)
	EmissionRejected(topic Topic)
}

type subscription struct {
	h Handler
}

// Bus is a synchronous, in-process publish/subscribe registry. Handlers for
// a topic fire on the emitter's goroutine, in subscription order, against a
// snapshot of the handler list taken when the emission starts. A topic may
// not be emitted again while it is already emitting; different topics nest
// freely.
type Bus struct {
	log *zap.Logger

	mu       sync.Mutex
	subs     map[Topic][]*subscription
	emitting map[Topic]bool
	metrics  Metrics
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:      log,
		subs:     make(map[Topic][]*subscription),
		emitting: make(map[Topic]bool),
	}
}

// WithMetrics attaches a metrics sink and returns the bus for chaining.
func (b *Bus) WithMetrics(m Metrics) *Bus {
	b.mu.Lock()
	b.metrics = m
	b.mu.Unlock()
	return b
}

// Subscribe appends h to topic's handler sequence and returns a capability
// that removes exactly this registration. Calling it more than once is a
// no-op after the first. Subscribing during an emission of the same topic
// takes effect from the next emission.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	sub := &subscription{h: h}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, sub) })
	}
}

func (b *Bus) remove(topic Topic, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	for i, s := range list {
		if s == sub {
			// Copy-on-remove keeps any snapshot taken by an in-flight
			// emission intact.
			next := make([]*subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = next
			}
			return
		}
	}
}

// Emit delivers payload to every handler currently subscribed to topic,
// synchronously and in subscription order. With no subscribers it is a
// no-op. If topic is already mid-emission the call is rejected with
// ErrReentrantEmission and a warning is logged; the guard is cleared on
// every exit path, so a failing handler cannot wedge the topic.
//
// A handler that panics is recovered and logged; delivery continues with
// the remaining handlers of the same pass.
func (b *Bus) Emit(topic Topic, payload any) error {
	b.mu.Lock()
	if b.emitting[topic] {
		m := b.metrics
		b.mu.Unlock()
		b.log.Warn("reentrant emission rejected", zap.String("topic", string(topic)))
		if m != nil {
			m.EmissionRejected(topic)
		}
		return ErrReentrantEmission
	}
	list := b.subs[topic]
	if len(list) == 0 {
		b.mu.Unlock()
		return nil
	}
	snapshot := make([]*subscription, len(list))
	copy(snapshot, list)
	b.emitting[topic] = true
	m := b.metrics
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.emitting, topic)
		b.mu.Unlock()
	}()

	ev := Event{Topic: topic, Payload: payload}
	for _, s := range snapshot {
		b.deliver(topic, s.h, ev)
	}
	if m != nil {
		m.EventEmitted(topic)
	}
	return nil
}

func (b *Bus) deliver(topic Topic, h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", string(topic)),
				zap.Any("panic", r))
		}
	}()
	h(ev)
}

// SubscriberCount reports the number of active handlers for a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
