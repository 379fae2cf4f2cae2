// Package pubsub distributes analysis progress events to subscribers,
// with per-topic buffering so late subscribers see the current state.
// The web layer streams these events to clients over SSE.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the analysis pipeline.
const (
	TopicAnalysisStatus = "analysis_status"
	TopicReport         = "report"
)

// Event is one published message on a topic.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"` // e.g. "loading", "simulating", "evaluating", "done", "error"
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic ordering
}

// Subscription is a client's handle on a topic stream.
type Subscription interface {
	// Topic returns the subscription topic.
	Topic() string

	// Events returns the channel events arrive on.
	Events() <-chan Event

	// Close detaches the subscription.
	Close() error
}

// Publisher manages subscriptions and event delivery.
type Publisher interface {
	// Subscribe attaches to a topic. Context cancellation closes the
	// subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic.
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and every subscription.
	Close() error
}

// AnalysisStatus is the payload on TopicAnalysisStatus.
type AnalysisStatus struct {
	RunID   string `json:"run_id"`
	State   string `json:"state"` // loading, simulating, evaluating, ranking, done, error
	Message string `json:"message"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
}
