package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cardwall/scramble/pkg/api/handlers"
	"github.com/cardwall/scramble/pkg/api/middleware"
	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Port  int
	Board *board.Board
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterOptions{})
	counter := middleware.NewAccessCounter()

	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())
	r.Use(middleware.NewRateLimitMiddleware(limiter))
	r.Use(middleware.NewAccessCounterMiddleware(counter))

	r.HandleFunc("/look/{player}", handlers.HandleLook(opts.Board)).Methods(http.MethodGet)
	r.HandleFunc("/flip/{player}/{row},{col}", handlers.HandleFlip(opts.Board)).Methods(http.MethodPost)
	r.HandleFunc("/watch/{player}", handlers.HandleWatch(opts.Board)).Methods(http.MethodGet)
	r.HandleFunc("/transform/{player}/{fn}", handlers.HandleTransform(opts.Board)).Methods(http.MethodPost)
	r.HandleFunc("/stats", handlers.HandleStats(counter)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: r,
	}
	return &APIServer{
		server: server,
	}
}

// Start starts the APIServer
func (s *APIServer) Start() {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
