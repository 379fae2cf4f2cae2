package pubsub

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chainwatch/cascade/pkg/logging"
)

// WriteSSE writes one event in server-sent-event framing:
// "data: {json}\n\n".
func WriteSSE(w io.Writer, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// SSEHandler returns an http.Handler that streams a topic's events to
// the client until it disconnects.
func SSEHandler(pub Publisher, topic string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sub, err := pub.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer sub.Close()

		flusher.Flush()

		for {
			select {
			case event, open := <-sub.Events():
				if !open {
					return
				}
				if err := WriteSSE(w, event); err != nil {
					logging.DebugContext(r.Context(), "sse write failed", "topic", topic, "error", err)
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
}
