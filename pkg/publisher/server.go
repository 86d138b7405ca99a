// Package publisher exposes a live tree over HTTP for external monitors:
// static layout, current status, the root blackboard, and a server-sent
// event stream of status transitions.
package publisher

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/tree"
)

// clientBuffer bounds the per-subscriber event queue. A stalled client loses
// events instead of stalling the ticking goroutine.
const clientBuffer = 256

// Server publishes one tree. Create it with New, attach it to the tree's
// notification bus via Attach, and mount Handler on any HTTP server.
type Server struct {
	tree *tree.Tree

	mu      sync.Mutex
	clients map[chan domain.Transition]struct{}

	metrics prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts a Prometheus scrape endpoint at /metrics serving the
// given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = g }
}

// New creates a publisher for t and subscribes it to the tree's
// notification bus.
func New(t *tree.Tree, opts ...Option) *Server {
	s := &Server{
		tree:    t,
		clients: make(map[chan domain.Transition]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	t.Subscribe(s.broadcast)
	return s
}

// Handler returns the HTTP routes of the publisher.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/status", s.handleStatus)
		r.Get("/blackboard", s.handleBlackboard)
		r.Get("/events", s.handleEvents)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
	return r
}

// broadcast fans one transition out to every connected client, dropping it
// for clients whose buffer is full.
func (s *Server) broadcast(tr domain.Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- tr:
		default:
		}
	}
}

func (s *Server) handleTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.tree.Layout())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.tree.StatusSnapshot())
}

func (s *Server) handleBlackboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.tree.Blackboard().Snapshot())
}

// handleEvents streams transitions as server-sent events until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan domain.Transition, clientBuffer)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case tr := <-ch:
			payload, err := json.Marshal(tr)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: transition\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
