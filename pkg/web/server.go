// Package web exposes the analysis engine over HTTP. It is a thin
// consumer of the engine's outputs: handlers translate requests into
// runner calls and never mutate engine results.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainwatch/cascade/pkg/analysis"
	"github.com/chainwatch/cascade/pkg/loader"
	"github.com/chainwatch/cascade/pkg/logging"
	"github.com/chainwatch/cascade/pkg/model"
	"github.com/chainwatch/cascade/pkg/pubsub"
)

// Server serves the analysis API.
type Server struct {
	router   *mux.Router
	broker   *pubsub.Broker
	runner   *analysis.Runner
	defaults analysis.Options

	mu         sync.RWMutex
	graph      *model.Graph
	lastReport *analysis.Report
}

// NewServer creates a server around a loaded graph and default run
// options. The graph may be swapped later via SetGraph (watch mode).
func NewServer(g *model.Graph, defaults analysis.Options) *Server {
	broker := pubsub.NewBroker()
	broker.ConfigureTopic(pubsub.TopicAnalysisStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false, // late subscribers only need the current state
	})
	broker.ConfigureTopic(pubsub.TopicReport, pubsub.TopicConfig{
		BufferSize: 1,
		ReplayAll:  false,
	})

	s := &Server{
		router:   mux.NewRouter(),
		broker:   broker,
		runner:   analysis.NewRunner(broker),
		defaults: defaults,
		graph:    g,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/graph", s.handleGraph).Methods("GET")
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
	api.HandleFunc("/report", s.handleReport).Methods("GET")
	api.Handle("/events/{topic}", s.handleEvents()).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.Use(logging.RequestIDMiddleware)
}

// SetGraph swaps the current graph snapshot (used by the file watcher).
func (s *Server) SetGraph(g *model.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
}

// Graph returns the current graph snapshot.
func (s *Server) Graph() *model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP on the given port until the listener fails.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("web server listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Graph()
	if g == nil {
		writeError(w, http.StatusNotFound, "no graph loaded")
		return
	}
	writeJSON(w, http.StatusOK, loader.Document{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	})
}

// analyzeRequest is the POST /api/analyze body. Graph is optional; when
// absent the server's current graph is analyzed.
type analyzeRequest struct {
	Graph    *loader.Document `json:"graph,omitempty"`
	SourceID string           `json:"source_id"`
	MaxDepth *int             `json:"max_depth,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	g := s.Graph()
	if req.Graph != nil {
		built, err := req.Graph.Build()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g = built
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "no graph loaded")
		return
	}

	opts := s.defaults
	opts.SourceID = req.SourceID
	if req.MaxDepth != nil {
		opts.MaxDepth = *req.MaxDepth
	}

	report, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, model.ErrInvalidArgument), errors.Is(err, model.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	report := s.lastReport
	s.mu.RUnlock()

	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has run yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleEvents() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		topic := mux.Vars(r)["topic"]
		if topic != pubsub.TopicAnalysisStatus && topic != pubsub.TopicReport {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown topic %q", topic))
			return
		}
		pubsub.SSEHandler(s.broker, topic).ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, map[string]string{"error": reason})
}
