package routes

import (
	"github.com/BradenHooton/jobboard/internal/auth"
	"github.com/BradenHooton/jobboard/internal/handlers"
	"github.com/BradenHooton/jobboard/internal/middleware"
	pkghttp "github.com/BradenHooton/jobboard/pkg/http"
	"github.com/go-chi/chi/v5"
)

// Handlers bundles every HTTP handler the API mounts
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Jobs          *handlers.JobHandler
	Reports       *handlers.ReportHandler
	Applications  *handlers.ApplicationHandler
	Credits       *handlers.CreditHandler
	Notifications *handlers.NotificationHandler
	Feedback      *handlers.FeedbackHandler
	Admin         *handlers.AdminHandler
}

// Limits are requests per minute for the rate-limited endpoints
type Limits struct {
	Auth   int
	Apply  int
	Report int
}

// Deps are the auth collaborators the route groups need
type Deps struct {
	Tokens   *auth.TokenManager
	Sessions auth.SessionRevocationChecker
	Users    auth.UserRepository
	IPConfig *pkghttp.IPConfig
	Limits   Limits
}

// RegisterRoutes mounts all /api routes on router
func RegisterRoutes(router chi.Router, h Handlers, deps Deps) {
	authLimit := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: deps.Limits.Auth, IPConfig: deps.IPConfig})
	applyLimit := middleware.RateLimitByUser(middleware.RateLimitConfig{RequestsPerMinute: deps.Limits.Apply, IPConfig: deps.IPConfig})
	reportLimit := middleware.RateLimitByUser(middleware.RateLimitConfig{RequestsPerMinute: deps.Limits.Report, IPConfig: deps.IPConfig})

	requireAuth := auth.AuthMiddleware(deps.Tokens, deps.Sessions, auth.RevocationConfig{FailClosed: true})
	optionalAuth := auth.OptionalAuth(deps.Tokens, deps.Sessions)
	requireAdmin := auth.RequireRole(deps.Users, "admin")

	router.Route("/api", func(r chi.Router) {
		// Public routes
		r.With(authLimit).Post("/auth/register", h.Auth.Register)
		r.With(authLimit).Post("/auth/login", h.Auth.Login)
		r.Post("/auth/logout", h.Auth.Logout)

		// Anonymous or signed-in
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/jobs", h.Jobs.List)
			r.Get("/jobs/{id}", h.Jobs.Get)
			r.With(reportLimit).Post("/feedback", h.Feedback.Submit)
		})

		// Signed-in users
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", h.Auth.Me)
			r.Patch("/users/me", h.Users.UpdateMe)
			r.Post("/users/{id}/referral-code", h.Users.EnsureReferralCode)
			r.Get("/users/{id}/referral-code/qr", h.Users.ReferralQRCode)

			r.With(reportLimit).Post("/jobs/{id}/reports", h.Reports.Submit)

			r.Get("/applications", h.Applications.List)
			r.Get("/applications/grouped", h.Applications.Grouped)
			r.With(applyLimit).Post("/applications", h.Applications.Apply)
			r.Post("/applications/{id}/withdraw", h.Applications.Withdraw)

			r.Get("/credits", h.Credits.Summary)

			r.Get("/notifications", h.Notifications.List)
			r.Get("/notifications/unread-count", h.Notifications.UnreadCount)
			r.Post("/notifications/mark-all-read", h.Notifications.MarkAllRead)
			r.Post("/notifications/{id}/mark-read", h.Notifications.MarkRead)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Post("/jobs", h.Jobs.Create)
				r.Post("/jobs/{id}/archive", h.Jobs.Archive)
				r.Post("/jobs/{id}/restore", h.Jobs.Restore)

				r.Get("/feedback", h.Feedback.List)
				r.Patch("/feedback/{id}", h.Feedback.Respond)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/dashboard/stats", h.Admin.GetDashboardStats)
					r.Patch("/applications/{id}/status", h.Applications.UpdateStatus)
					r.Get("/reported-jobs", h.Reports.List)
					r.Patch("/reported-jobs/{id}", h.Reports.Review)
					r.Get("/users", h.Users.ListUsers)
					r.Post("/users/{id}/credits", h.Credits.Adjust)
					r.Get("/users/{id}/credits", h.Credits.Transactions)
				})
			})
		})
	})
}
