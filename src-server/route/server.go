package route

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"stellarbot/src-server/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(as *utils.AppState, q Enqueuer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	Vote(r, as, q)
	Health(r, as)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func Health(r chi.Router, as *utils.AppState) {
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := as.BunDB.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Serve starts the webhook server in the background and stops it on
// graceful shutdown.
func Serve(as *utils.AppState, q Enqueuer) *http.Server {
	server := &http.Server{
		Addr:              as.Config.GetVoteListenAddr(),
		Handler:           NewRouter(as, q),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("vote webhook server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("vote webhook server stopped", "error", err)
			as.Shutdown()
		}
	}()

	as.OnGracefulShutdown(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("can't shut down vote webhook server cleanly", "error", err)
		}
	})

	return server
}
