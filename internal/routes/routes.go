package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/templui/filesmanager/internal/app"
	"github.com/templui/filesmanager/internal/handler"
	"github.com/templui/filesmanager/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	status := handler.NewStatusHandler(app.StatusService)
	users := handler.NewUserHandler(app.UserService)
	files := handler.NewFileHandler(app.FileService, app.Cfg.MaxUploadSize)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /status", status.Status)
	mux.HandleFunc("GET /stats", status.Stats)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /users", users.Create)

	// Public files are readable without a session
	mux.HandleFunc("GET /files/{id}/data", files.Data)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	uploadLimiter := middleware.RateLimitUploads(app.Cfg.UploadRateLimit)

	mux.HandleFunc("GET /users/me", middleware.RequireAuth(users.Me))

	mux.HandleFunc("POST /files", middleware.RequireAuth(uploadLimiter(files.Upload)))
	mux.HandleFunc("GET /files", middleware.RequireAuth(files.List))
	mux.HandleFunc("GET /files/{id}", middleware.RequireAuth(files.Show))
	mux.HandleFunc("PUT /files/{id}/publish", middleware.RequireAuth(files.Publish))
	mux.HandleFunc("PUT /files/{id}/unpublish", middleware.RequireAuth(files.Unpublish))

	// Metrics innermost so it sees the pattern the mux matched
	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
		middleware.Metrics,
	)
}
