// Package httpserver runs the sessiond HTTP surface with graceful shutdown
// and probe handlers.
//
// Server binds its listener in Run, calls start hooks once the address is
// known, and shuts down when the context is cancelled or SIGINT/SIGTERM
// arrives. LivenessHandler and ReadinessHandler back /healthz and /readyz;
// readiness checks are the active session store and, when configured, Redis.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	r.Get("/healthz", httpserver.LivenessHandler())
//	r.Get("/readyz", httpserver.ReadinessHandler(log, cfg.HTTP.ReadyTimeout,
//		httpserver.Check{Name: "active_session_store", Fn: store.Healthcheck},
//	))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Errors are joined with ErrStart or ErrShutdown.
package httpserver
