package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	settingsHandler SettingsHandler,
	securityHandler SecurityHandler,
	cfg RouterConfig,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	// Client IP resolution reads forwarding headers itself, so RealIP stays off.
	// r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Env != "production" {
			r.Get("/debug/ip", DebugIP)
		}

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/check-out", attendanceHandler.CheckOut)
				r.Get("/today", attendanceHandler.Today)
				r.Get("/check-restrictions", attendanceHandler.CheckRestrictions)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Post("/manual", attendanceHandler.ManualEntry)
				})
			})

			r.Route("/settings/attendance", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)

				r.With(middleware.AdminOnly).Put("/", settingsHandler.Update)
			})

			r.Route("/security", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/ip-restrictions", func(r chi.Router) {
					r.Get("/", securityHandler.ListIPRestrictions)
					r.Post("/", securityHandler.CreateIPRestriction)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", securityHandler.GetIPRestriction)
						r.Put("/", securityHandler.UpdateIPRestriction)
						r.Delete("/", securityHandler.DeleteIPRestriction)
					})
				})

				r.Route("/geo-restrictions", func(r chi.Router) {
					r.Get("/", securityHandler.ListGeoRestrictions)
					r.Post("/", securityHandler.CreateGeoRestriction)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", securityHandler.GetGeoRestriction)
						r.Put("/", securityHandler.UpdateGeoRestriction)
						r.Delete("/", securityHandler.DeleteGeoRestriction)
					})
				})

				r.Route("/assignments", func(r chi.Router) {
					r.Get("/", securityHandler.ListAssignments)
					r.Post("/", securityHandler.Assign)
					r.Delete("/{id}", securityHandler.Unassign)
				})
			})
		})
	})

	return r
}
