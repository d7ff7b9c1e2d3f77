package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge/clinic-platform/internal/appointments"
	"github.com/carebridge/clinic-platform/internal/availability"
	"github.com/carebridge/clinic-platform/internal/directory"
	httpmiddleware "github.com/carebridge/clinic-platform/internal/http/middleware"
	"github.com/carebridge/clinic-platform/internal/identity"
	"github.com/carebridge/clinic-platform/internal/reports"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	DirectoryHandler    *directory.Handler
	AvailabilityHandler *availability.Handler
	AppointmentsHandler *appointments.Handler
	ReportsHandler      *reports.Handler
	MetricsHandler      http.Handler
	JWTSecret           string
	CORSAllowedOrigins  []string

	// Requests per second per client, zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (registration, login, doctor discovery)
	r.Group(func(public chi.Router) {
		if cfg.RateLimitRPS > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", cfg.DirectoryHandler.Register)
			auth.Post("/login", cfg.DirectoryHandler.Login)
		})
		public.Get("/doctors", cfg.DirectoryHandler.ListDoctors)
		public.Get("/doctors/{doctorID}/unavailable-dates", cfg.AvailabilityHandler.DoctorDates)
	})

	// Authenticated endpoints (any approved account). Rate limiting sits after
	// Auth so each account gets its own bucket.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Auth(cfg.JWTSecret))
		if cfg.RateLimitRPS > 0 {
			authed.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}

		authed.Route("/appointments", func(appt chi.Router) {
			appt.Post("/", cfg.AppointmentsHandler.Book)
			appt.Get("/", cfg.AppointmentsHandler.ListOwn)
			appt.Get("/{appointmentID}", cfg.AppointmentsHandler.Get)
			appt.Post("/{appointmentID}/status", cfg.AppointmentsHandler.Transition)
		})

		authed.Route("/availability", func(avail chi.Router) {
			avail.Post("/", cfg.AvailabilityHandler.Mark)
			avail.Get("/", cfg.AvailabilityHandler.ListOwn)
			avail.Delete("/{entryID}", cfg.AvailabilityHandler.Unmark)
		})

		authed.Route("/reports", func(rep chi.Router) {
			rep.Post("/", cfg.ReportsHandler.Upload)
			rep.Get("/", cfg.ReportsHandler.ListOwn)
			rep.Route("/{reportID}", func(one chi.Router) {
				one.Get("/", cfg.ReportsHandler.Get)
				one.Get("/file", cfg.ReportsHandler.DownloadFile)
				one.Post("/response", cfg.ReportsHandler.Respond)
				one.Put("/response", cfg.ReportsHandler.EditResponse)
				one.Get("/consultation", cfg.ReportsHandler.DownloadConsultation)
			})
		})
	})

	// Admin endpoints (approval workflow)
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.Auth(cfg.JWTSecret))
		admin.Use(httpmiddleware.RequireRole(identity.RoleAdmin))
		if cfg.RateLimitRPS > 0 {
			admin.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		admin.Get("/doctors/pending", cfg.DirectoryHandler.ListPendingDoctors)
		admin.Post("/accounts/{accountID}/approval", cfg.DirectoryHandler.SetApproval)
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
