package sessions

import (
	"net/http"

	"github.com/Desarso/intentagent/metrics"
	"github.com/Desarso/intentagent/stores"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Server exposes an agent over HTTP and WebSocket.
type Server struct {
	Agent     AgentInterface
	Store     stores.SessionStore
	Traces    stores.TraceStore
	Reindexer Reindexer
	Stats     StatsProvider
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger

	upgrader websocket.Upgrader
}

// NewServer creates a server for agent backed by store. Optional parts are
// attached with the With* setters.
func NewServer(agent AgentInterface, store stores.SessionStore) *Server {
	return &Server{
		Agent:  agent,
		Store:  store,
		Logger: zerolog.Nop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// WithTraceStore enables the traces endpoint.
func (s *Server) WithTraceStore(t stores.TraceStore) *Server {
	s.Traces = t
	return s
}

// WithReindexer enables the reindex endpoint.
func (s *Server) WithReindexer(r Reindexer) *Server {
	s.Reindexer = r
	return s
}

// WithStats enables the stats endpoint.
func (s *Server) WithStats(p StatsProvider) *Server {
	s.Stats = p
	return s
}

// WithMetrics records request metrics and serves g on /metrics.
func (s *Server) WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) *Server {
	s.Metrics = m
	s.Gatherer = g
	return s
}

func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.Logger = l
	return s
}
