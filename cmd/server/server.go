// cmd/server/server.go
package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/CourtReserve/internal/api"
	"github.com/codr1/CourtReserve/internal/api/apiutil"
	"github.com/codr1/CourtReserve/internal/api/auth"
	"github.com/codr1/CourtReserve/internal/api/courts"
	maintenanceapi "github.com/codr1/CourtReserve/internal/api/maintenance"
	"github.com/codr1/CourtReserve/internal/api/reservations"
	"github.com/codr1/CourtReserve/internal/config"
)

func newServer(cfg *config.Config, a *app) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	// Register routes
	registerRoutes(router, a)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func user(h http.HandlerFunc) http.Handler  { return api.RequireUser(h) }
func admin(h http.HandlerFunc) http.Handler { return api.RequireAdmin(h) }

func registerRoutes(mux *http.ServeMux, a *app) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.database.PingContext(ctx); err != nil {
			apiutil.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)
	mux.Handle("GET /api/v1/auth/me", user(auth.HandleMe))
	mux.HandleFunc("POST /api/v1/auth/password-reset", auth.HandlePasswordReset)
	mux.HandleFunc("POST /api/v1/auth/password-reset/confirm", auth.HandlePasswordResetConfirm)

	// Court routes
	mux.HandleFunc("GET /api/v1/courts", courts.HandleListCourts)
	mux.HandleFunc("GET /api/v1/courts/{id}/availability", courts.HandleAvailability)
	mux.HandleFunc("GET /api/v1/courts/{id}/slots", courts.HandleSlots)

	// Reservation routes
	mux.HandleFunc("GET /api/v1/reservations/public", reservations.HandlePublicList)
	mux.Handle("GET /api/v1/reservations", user(reservations.HandleListMine))
	mux.Handle("POST /api/v1/reservations", user(reservations.HandleCreate))
	mux.Handle("GET /api/v1/reservations/{id}", user(reservations.HandleGet))
	mux.Handle("PUT /api/v1/reservations/{id}", user(reservations.HandleUpdate))
	mux.Handle("DELETE /api/v1/reservations/{id}", user(reservations.HandleCancel))

	// Admin routes
	mux.Handle("GET /api/v1/admin/reservations", admin(reservations.HandleAdminList))
	mux.Handle("POST /api/v1/admin/reservations", admin(reservations.HandleAdminCreate))
	mux.Handle("PUT /api/v1/admin/reservations/{id}", admin(reservations.HandleUpdate))
	mux.Handle("PATCH /api/v1/admin/reservations/{id}/status", admin(reservations.HandleAdminSetStatus))
	mux.Handle("DELETE /api/v1/admin/reservations/{id}", admin(reservations.HandleAdminDelete))

	mux.Handle("GET /api/v1/admin/maintenance", admin(maintenanceapi.HandleList))
	mux.Handle("POST /api/v1/admin/maintenance", admin(maintenanceapi.HandleCreate))
	mux.Handle("GET /api/v1/admin/maintenance/{id}", admin(maintenanceapi.HandleGet))
	mux.Handle("PATCH /api/v1/admin/maintenance/{id}", admin(maintenanceapi.HandleUpdate))
	mux.Handle("DELETE /api/v1/admin/maintenance/{id}", admin(maintenanceapi.HandleDelete))

	mux.Handle("POST /api/v1/admin/courts", admin(courts.HandleCreateCourt))
	mux.Handle("PATCH /api/v1/admin/courts/{id}", admin(courts.HandleUpdateCourt))
}
