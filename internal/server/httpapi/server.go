// Package httpapi exposes the server over JSON-over-HTTP. Routes, request
// bodies, and response shapes follow the wire contract the field clients
// depend on.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mzarins/invsync/internal/logging"
	"github.com/mzarins/invsync/internal/server/inventory"
	"github.com/mzarins/invsync/internal/server/users"
)

// Server wires the HTTP surface to the user and inventory services.
type Server struct {
	users     *users.Service
	inventory *inventory.Service
	logger    logging.Logger
	http      *http.Server
}

func NewServer(addr string, logger logging.Logger, userService *users.Service, inventoryService *inventory.Service) *Server {
	s := &Server{
		users:     userService,
		inventory: inventoryService,
		logger:    logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the chi route tree. Exported so tests can drive the full
// surface through httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/ping", s.handlePing)
	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/reset-password", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/logout", s.handleLogout)
		r.Post("/change-password", s.handleChangePassword)

		r.Post("/inventory", s.handleCreateInventory)
		r.Get("/inventory", s.handleListInventory)
		r.Get("/inventory/assigned", s.handleListAssigned)
		r.Get("/inventory/{id}", s.handleGetInventory)
		r.Put("/inventory/{id}", s.handleUpdateInventory)
		r.Delete("/inventory/{id}", s.handleDeleteInventory)

		r.Get("/users", s.handleListUsers)
		r.Post("/users", s.handleCreateUser)
		r.Delete("/users/{id}", s.handleDeleteUser)

		r.Get("/reports/inventory", s.handleInventoryReport)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "OK"})
}
