package routes

import (
	"net/http"

	"okrproject/handlers"
	"okrproject/metrics"
	"okrproject/middlewares"
	"okrproject/tracing"

	"go.uber.org/zap"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Objectives *handlers.ObjectiveHandler
	Users      *handlers.UserHandler
	Reports    *handlers.ReportHandler
	Health     *handlers.HealthHandler
	Metrics    http.Handler
}

func SetupRoutes(h Handlers, authn *middlewares.Authenticator) *http.ServeMux {
	mux := http.NewServeMux()

	// Authenticated routes
	user := func(fn http.HandlerFunc) http.Handler {
		return authn.JWTMiddleware(fn)
	}
	// Authenticated routes restricted to admins
	admin := func(fn http.HandlerFunc) http.Handler {
		return authn.JWTMiddleware(middlewares.RequireAdmin(fn))
	}

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("POST /api/auth/logout", user(h.Auth.Logout))
	mux.Handle("GET /api/auth/me", user(h.Auth.Me))
	mux.Handle("PUT /api/auth/profile", user(h.Auth.UpdateProfile))
	mux.Handle("PUT /api/auth/password", user(h.Auth.ChangePassword))
	mux.Handle("POST /api/auth/avatar", user(h.Auth.UploadAvatar))
	mux.Handle("GET /api/users/{id}/avatar", user(h.Auth.DownloadAvatar))

	// OKR routes
	mux.Handle("GET /api/okrs", user(h.Objectives.ListObjectives))
	mux.Handle("POST /api/okrs", user(h.Objectives.CreateObjective))
	mux.Handle("GET /api/okrs/{id}", user(h.Objectives.GetObjective))
	mux.Handle("PUT /api/okrs/{id}", user(h.Objectives.UpdateObjective))
	mux.Handle("DELETE /api/okrs/{id}", user(h.Objectives.DeleteObjective))

	// User management routes
	mux.Handle("GET /api/users", user(h.Users.ListUsers))
	mux.Handle("PUT /api/users/{id}/role", admin(h.Users.UpdateRole))
	mux.Handle("DELETE /api/users/{id}", admin(h.Users.DeleteUser))
	mux.Handle("PUT /api/users/roles", admin(h.Users.BulkUpdateRoles))
	mux.Handle("POST /api/users/bulk-delete", admin(h.Users.BulkDelete))

	// Views
	mux.Handle("GET /api/dashboard", user(h.Reports.Dashboard))
	mux.Handle("GET /api/reports", user(h.Reports.Report))
	mux.Handle("GET /api/directory", user(h.Reports.Directory))

	// Operations
	mux.HandleFunc("GET /healthz", h.Health.Live)
	mux.HandleFunc("GET /readyz", h.Health.Ready)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	return mux
}

// Wrap applies the server-wide middlewares to mux. Request metrics wrap the
// mux directly so the matched pattern is visible to them.
func Wrap(mux *http.ServeMux, log *zap.Logger, prom *metrics.Prometheus, allowedOrigins []string) http.Handler {
	var h http.Handler = mux
	if prom != nil {
		h = prom.HTTPMiddleware(h)
	}
	return middlewares.Chain(h,
		middlewares.Recover(log),
		middlewares.RequestID,
		middlewares.Logging(log),
		middlewares.CORS(allowedOrigins),
		tracing.Middleware("okr-api"),
	)
}
