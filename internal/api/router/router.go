// Package router assembles the HTTP surface of the booking platform.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bezzin/HerHealth-Hub-sub000/internal/bookings"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/doctors"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/feedback"
	httpmiddleware "github.com/Bezzin/HerHealth-Hub-sub000/internal/http/middleware"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/intake"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/invites"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/linkedin"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/payments"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/slots"
	"github.com/Bezzin/HerHealth-Hub-sub000/internal/video"
	"github.com/Bezzin/HerHealth-Hub-sub000/pkg/logging"
)

// Config carries the handlers and cross-cutting settings the router mounts.
// Optional handlers may be nil; their routes are simply not registered.
type Config struct {
	Logger *logging.Logger

	Slots    *slots.Handler
	Bookings *bookings.Handler
	Doctors  *doctors.Handler
	Invites  *invites.Handler
	Feedback *feedback.Handler
	Payments *payments.Handler
	Webhook  *payments.WebhookHandler
	Intake   *intake.Handler
	LinkedIn *linkedin.Handler
	Video    *video.Handler

	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	AdminJWTSecret     string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Stripe calls this directly; it bypasses CORS and carries its own
	// signature-based authentication.
	if cfg.Webhook != nil {
		r.Post("/webhooks/stripe", cfg.Webhook.Handle)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Doctors != nil {
			api.Get("/doctors", cfg.Doctors.List)
			api.Get("/doctors/{doctorID}", cfg.Doctors.Get)
			api.Post("/doctors/{doctorID}/stripe-account", cfg.Doctors.SetStripeAccount)
			api.Post("/onboarding/{token}", cfg.Doctors.CompleteOnboarding)
		}
		if cfg.Slots != nil {
			api.Get("/doctors/{doctorID}/slots", cfg.Slots.ListAvailable)
			api.Post("/doctors/{doctorID}/slots", cfg.Slots.Create)
		}
		if cfg.Bookings != nil {
			api.Post("/bookings", cfg.Bookings.Create)
			api.Get("/bookings/{bookingID}", cfg.Bookings.Get)
			api.Post("/bookings/{bookingID}/cancel", cfg.Bookings.Cancel)
			api.Post("/bookings/{bookingID}/reschedule", cfg.Bookings.Reschedule)
			api.Post("/bookings/{bookingID}/complete", cfg.Bookings.Complete)
			api.Get("/bookings/{bookingID}/join", cfg.Bookings.Join)
			api.Get("/patients/{patientID}/bookings", cfg.Bookings.ListByPatient)
			api.Get("/doctors/{doctorID}/bookings", cfg.Bookings.ListByDoctor)
		}
		if cfg.Video != nil {
			api.Get("/bookings/{bookingID}/room", cfg.Video.Join)
		}
		if cfg.Payments != nil {
			api.Post("/bookings/{bookingID}/payment-intent", cfg.Payments.CreateIntent)
		}
		if cfg.Feedback != nil {
			api.Post("/bookings/{bookingID}/feedback", cfg.Feedback.Submit)
			api.Get("/doctors/{doctorID}/feedback", cfg.Feedback.ListByDoctor)
		}
		if cfg.Invites != nil {
			api.Get("/invites/{token}", cfg.Invites.Preview)
		}
		if cfg.Intake != nil {
			api.Post("/intake/summarize", cfg.Intake.Summarize)
		}
		if cfg.LinkedIn != nil {
			api.Post("/linkedin/exchange", cfg.LinkedIn.Exchange)
		}
	})

	if cfg.Invites != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Post("/invites", cfg.Invites.Create)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
