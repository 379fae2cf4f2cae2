package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := broker.Subscribe(ctx, TopicAnalysisStatus)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	status := AnalysisStatus{RunID: "run-1", State: "simulating", Step: 2, Total: 5}
	if err := broker.Publish(TopicAnalysisStatus, "simulating", status); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Topic != TopicAnalysisStatus || event.Type != "simulating" {
			t.Errorf("Got event %+v", event)
		}
		if event.Version != 1 {
			t.Errorf("Version = %d, want 1", event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestReplayLastEvent(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	broker.ConfigureTopic("t", TopicConfig{BufferSize: 5, ReplayAll: false})

	for i := 1; i <= 3; i++ {
		if err := broker.Publish("t", "event", map[string]int{"num": i}); err != nil {
			t.Fatalf("Publish(%d) error = %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := broker.Subscribe(ctx, "t")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	// Only the latest event comes back.
	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Replayed version = %d, want 3", event.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for replay")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReplayAll(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	broker.ConfigureTopic("t", TopicConfig{BufferSize: 2, ReplayAll: true})

	for i := 1; i <= 3; i++ {
		if err := broker.Publish("t", "event", map[string]int{"num": i}); err != nil {
			t.Fatalf("Publish(%d) error = %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := broker.Subscribe(ctx, "t")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	// Buffer holds the last 2 events (versions 2 and 3).
	for _, want := range []int{2, 3} {
		select {
		case event := <-sub.Events():
			if event.Version != want {
				t.Errorf("Replayed version = %d, want %d", event.Version, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for replayed version %d", want)
		}
	}
}

func TestPublishAfterClose(t *testing.T) {
	broker := NewBroker()
	broker.Close()

	if err := broker.Publish("t", "event", nil); err == nil {
		t.Error("Expected error publishing on a closed broker")
	}
	if _, err := broker.Subscribe(context.Background(), "t"); err == nil {
		t.Error("Expected error subscribing on a closed broker")
	}
}
