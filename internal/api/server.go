// Package api provides the tokenlens REST and WebSocket server.
package api

import (
	"net/http"
	"time"

	"github.com/tokenlens/tokenlens/core/interp"
	"github.com/tokenlens/tokenlens/core/plugins"
	"github.com/tokenlens/tokenlens/internal/logging"
	"github.com/tokenlens/tokenlens/internal/rates"
)

// Version is reported by the root and health endpoints.
const Version = "0.2.0"

// Server exposes the interpretation engine over HTTP.
type Server struct {
	interp  *interp.Interpreter
	host    *plugins.Host
	rates   *rates.Store
	opts    interp.Options
	started time.Time
}

// NewServer wires the engine into a Server. host and store may be nil
// when plugins or currency support are disabled.
func NewServer(it *interp.Interpreter, host *plugins.Host, store *rates.Store, opts interp.Options) *Server {
	return &Server{
		interp:  it,
		host:    host,
		rates:   store,
		opts:    opts,
		started: time.Now(),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/interpret", s.handleInterpret)
	mux.HandleFunc("/api/v1/formats", s.handleFormats)
	mux.HandleFunc("/api/v1/validate", s.handleValidate)
	mux.HandleFunc("/api/v1/rates", s.handleRates)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return logging.CombinedMiddleware(mux)
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	logging.ServerStartup("rest_api", addr,
		"websocket_protocol", "ws",
		"formats", s.interp.Registry().Len())
	return http.ListenAndServe(addr, s.Handler())
}
