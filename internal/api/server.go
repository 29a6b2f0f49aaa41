// Package api exposes the controller's button status over HTTP
// (component C7): a small view of each registered button's recognized
// state, plus a synthetic-edge endpoint that drives a button through an
// in-memory driver, built the same way the project's other HTTP
// servers are: chi router, cors middleware, graceful shutdown on
// SIGINT/SIGTERM.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/larsks/gpiobuttond/internal/controller"
)

// EdgeInjector lets the status API drive a synthetic edge against an
// in-memory driver, so the engine can be operated and observed without
// real hardware. hwdriver/dummy.Driver satisfies this.
type EdgeInjector interface {
	SetLevel(pinID int, level bool, now time.Time)
}

// Server is the button status HTTP server.
type Server struct {
	listenAddr string
	ctrl       *controller.Controller
	injector   EdgeInjector
	router     *chi.Mux
}

// NewServer creates a Server bound to ctrl, listening on the address
// and port given in cfg. injector may be nil, in which case the edge
// injection endpoint responds 409 for every registered button (404 for
// an unknown name).
func NewServer(cfg *Config, ctrl *controller.Controller, injector EdgeInjector) *Server {
	s := &Server{
		listenAddr: fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		ctrl:       ctrl,
		injector:   injector,
		router:     chi.NewRouter(),
	}

	s.router.Use(middleware.Logger)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://*", "https://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.listRoutesHandler)
	s.router.Route("/buttons", func(r chi.Router) {
		r.Get("/", s.listButtonsHandler)
		r.Get("/{name}", s.buttonStatusHandler)
		r.Post("/{name}/edge", s.buttonEdgeHandler)
	})
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts it
// down gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    s.listenAddr,
		Handler: s.router,
	}

	go func() {
		log.Printf("starting status API on %s", s.listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("status API failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down status API...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrServerShutdownFailed, err)
	}

	log.Println("status API stopped")
	return nil
}

// ListRoutes returns the registered (method, pattern) pairs, useful for
// the index handler and for tests.
func (s *Server) ListRoutes() [][]string {
	routes := [][]string{}
	chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error { //nolint:errcheck
		routes = append(routes, []string{method, route})
		return nil
	})
	return routes
}
