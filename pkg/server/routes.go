package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"mercator-hq/nlpolicy/pkg/telemetry/health"
)

// Routes selects the handlers mounted by NewHandler. Nil members are not mounted.
type Routes struct {
	Metrics     http.Handler
	MetricsPath string
	Health      *health.Checker
	Logger      *slog.Logger
}

// NewHandler builds the routed handler wrapped in the middleware chain.
func NewHandler(routes Routes) http.Handler {
	logger := routes.Logger
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}

	mux := http.NewServeMux()
	if routes.Metrics != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, routes.Metrics)
	}
	if routes.Health != nil {
		routes.Health.Mount(mux)
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(logger)(handler)
	return handler
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
