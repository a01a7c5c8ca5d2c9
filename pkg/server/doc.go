// Package server runs the operational HTTP endpoints of the policy compiler:
// Prometheus metrics and health checks. Compilation itself is not exposed
// over HTTP.
//
// # Routes
//
//	GET /metrics   Prometheus exposition (path configurable)
//	GET /healthz   liveness
//	GET /readyz    readiness of schema, probe database and history store
//
// Every request passes through the recovery, request ID and logging
// middleware, outermost first.
//
// # Basic Usage
//
//	handler := server.NewHandler(server.Routes{
//	    Metrics:     collector.Handler(),
//	    MetricsPath: "/metrics",
//	    Health:      checker,
//	})
//	srv := server.New(server.Config{Address: "127.0.0.1:9090"}, handler)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
