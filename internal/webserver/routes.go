package webserver

import (
	"net/http"

	"github.com/steelyard-dev/steelyard/internal/webapi"
)

// registerRoutes sets up the API and metrics routes on the given mux.
// The server itself is the evaluator seam so POST /api/evaluate always
// sees the latest policy revision.
func registerRoutes(mux *http.ServeMux, s *Server) {
	webapi.RegisterRoutes(mux, webapi.NewHistoryStore(s.history), s)
	mux.Handle("GET /metrics", s.collector.Handler())
}
