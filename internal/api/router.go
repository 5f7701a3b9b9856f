package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/orodjarna/internal/auth"
	"github.com/erazemk/orodjarna/internal/imaging"
	"github.com/erazemk/orodjarna/internal/model"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	DB        *sql.DB
	Lifecycle Lifecycle
	Tokens    *auth.Issuer
	Images    *imaging.Store
	Log       *slog.Logger

	// Metrics is mounted at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter creates the HTTP handler with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, Tokens: d.Tokens, Log: log.With("handler", "auth")}
	issuesHandler := &IssuesHandler{DB: d.DB, Lifecycle: d.Lifecycle, Log: log.With("handler", "issues")}
	returnsHandler := &ReturnsHandler{DB: d.DB, Lifecycle: d.Lifecycle, Log: log.With("handler", "returns")}
	itemsHandler := &ItemsHandler{DB: d.DB, Images: d.Images, Log: log.With("handler", "items")}
	imagesHandler := &ImagesHandler{Images: d.Images, Log: log.With("handler", "images")}
	refsHandler := &ReferencesHandler{DB: d.DB, Log: log.With("handler", "references")}

	authMW := AuthMiddleware(d.Tokens)
	user := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	manager := func(h http.HandlerFunc) http.Handler {
		return Chain(authMW, RequireRole(model.RoleManager))(h)
	}

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Issues (all roles).
	mux.Handle("POST /api/issues", user(issuesHandler.Create))
	mux.Handle("GET /api/issues", user(issuesHandler.List))
	mux.Handle("GET /api/issues/next-code", user(issuesHandler.NextCode))
	mux.Handle("GET /api/issues/by-no/{issueNo}", user(issuesHandler.GetByNo))
	mux.Handle("GET /api/issues/{id}", user(issuesHandler.Get))

	// Returns: create and read (all roles), corrections (manager+).
	mux.Handle("POST /api/returns", user(returnsHandler.Create))
	mux.Handle("POST /api/returns/receive", user(returnsHandler.Receive))
	mux.Handle("GET /api/returns", user(returnsHandler.List))
	mux.Handle("GET /api/returns/next-code", user(returnsHandler.NextCode))
	mux.Handle("GET /api/returns/{id}", user(returnsHandler.Get))
	mux.Handle("PUT /api/returns/{id}/active", manager(returnsHandler.SetActive))
	mux.Handle("PUT /api/returns/{id}/remarks", manager(returnsHandler.UpdateRemarks))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", user(itemsHandler.List))
	mux.Handle("POST /api/items", manager(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", user(itemsHandler.Get))
	mux.Handle("GET /api/items/{id}/history", user(itemsHandler.History))
	mux.Handle("PUT /api/items/{id}/active", manager(itemsHandler.SetActive))
	mux.Handle("PUT /api/items/{id}/image", manager(itemsHandler.UploadImage))

	// Images.
	mux.Handle("POST /api/uploads/images", user(imagesHandler.Upload))
	mux.Handle("GET /api/images/{path...}", user(imagesHandler.Get))

	// Reference data: read (all roles), write (manager+).
	mux.Handle("GET /api/references/{kind}", user(refsHandler.List))
	mux.Handle("POST /api/references/{kind}", manager(refsHandler.Create))
	mux.Handle("PUT /api/references/{kind}/{id}/active", manager(refsHandler.SetActive))
	mux.Handle("POST /api/references/{kind}/import", manager(refsHandler.Import))
	mux.Handle("GET /api/references/{kind}/export", manager(refsHandler.Export))

	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, d.Metrics)
	}

	return Chain(RequestID, Recovery(log), Logging(log))(mux)
}
