package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chainwatch/cascade/pkg/logging"
)

// TopicConfig controls buffering for a topic.
type TopicConfig struct {
	BufferSize int  // events retained for replay (0 = none)
	ReplayAll  bool // replay the whole buffer, or only the latest event
}

// Broker is an in-process Publisher with per-topic event buffers.
type Broker struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscription]bool
	version map[string]int
	buffer  map[string][]Event
	config  map[string]TopicConfig
	closed  bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs:    make(map[string]map[*subscription]bool),
		version: make(map[string]int),
		buffer:  make(map[string][]Event),
		config:  make(map[string]TopicConfig),
	}
}

// ConfigureTopic sets the buffering behavior for a topic.
func (b *Broker) ConfigureTopic(topic string, cfg TopicConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.config[topic] = cfg
}

// Subscribe attaches to a topic, replaying buffered events per the
// topic configuration.
func (b *Broker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("broker is closed")
	}

	sub := &subscription{
		topic:  topic,
		events: make(chan Event, 64), // buffered so publishers never block
		broker: b,
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*subscription]bool)
	}
	b.subs[topic][sub] = true

	cfg := b.config[topic]
	replay := make([]Event, len(b.buffer[topic]))
	copy(replay, b.buffer[topic])

	b.mu.Unlock()

	if len(replay) > 0 && !cfg.ReplayAll {
		replay = replay[len(replay)-1:]
	}
	for _, event := range replay {
		select {
		case sub.events <- event:
		default:
			logging.Warn("replay dropped, subscriber channel full", "topic", topic)
		}
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish delivers an event to every subscriber of the topic without
// blocking; a subscriber that cannot keep up loses the event.
func (b *Broker) Publish(topic string, eventType string, data any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}

	b.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: b.version[topic],
	}

	if cfg := b.config[topic]; cfg.BufferSize > 0 {
		buf := append(b.buffer[topic], event)
		if len(buf) > cfg.BufferSize {
			buf = buf[len(buf)-cfg.BufferSize:]
		}
		b.buffer[topic] = buf
	}

	for sub := range b.subs[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("event dropped, subscriber channel full", "topic", topic)
		}
	}

	return nil
}

// Close shuts down the broker and every subscription.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subs {
		for sub := range subs {
			close(sub.events)
		}
	}
	b.subs = make(map[string]map[*subscription]bool)

	return nil
}

func (b *Broker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs := b.subs[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.subs, sub.topic)
		}
	}
}

type subscription struct {
	topic  string
	events chan Event
	broker *Broker
	closed bool
	mu     sync.Mutex
}

func (s *subscription) Topic() string {
	return s.topic
}

func (s *subscription) Events() <-chan Event {
	return s.events
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.broker.unsubscribe(s)

	return nil
}
