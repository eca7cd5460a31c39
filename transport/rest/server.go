package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/gudapepratik/tictactoe-online/internal/config"
)

type authService interface {
	GenerateToken(username string) (string, error)
}

type Server struct {
	logger *slog.Logger
	conf   *config.Config
	auth   authService
}

func New(logger *slog.Logger, conf *config.Config, auth authService) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		conf:   conf,
		auth:   auth,
	}
}

// Start - starts the HTTP server.
func (that *Server) Start(port string) error {
	router := chi.NewRouter()

	router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{that.conf.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	router.Get("/ping", pingHandler)

	router.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Post("/guest", that.createGuest)
		r.Delete("/guest", that.deleteGuest)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
