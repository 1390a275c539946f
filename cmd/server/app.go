package main

import (
	"net/http"

	"github.com/destinote/destinote/internal/auth"
	"github.com/destinote/destinote/internal/config"
	"github.com/destinote/destinote/internal/handlers"
	"github.com/destinote/destinote/internal/httpx"
	"github.com/destinote/destinote/internal/images"
	"github.com/destinote/destinote/internal/metrics"
	"github.com/destinote/destinote/internal/middleware"
	"github.com/destinote/destinote/internal/policy"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the application is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// ServiceDB bypasses row restrictions and is used for role lookups.
	// Defaults to DB.
	ServiceDB   *gorm.DB
	AuthService handlers.AuthService
	// Tokens verifies bearer tokens. Nil disables bearer authentication.
	Tokens auth.TokenVerifier
}

// App is the main application handler that sets up all routes.
type App struct {
	router   *chi.Mux
	cfg      *config.Config
	gate     *policy.AuthGate
	resolver *auth.Resolver

	auth     *handlers.AuthHandler
	admin    *handlers.AdminHandler
	articles *handlers.ArticleHandler
	comments *handlers.CommentHandler
	follows  *handlers.FollowHandler
	country  *handlers.CountryHandler
	images   *handlers.ImageHandler
	flights  *handlers.FlightHandler
	system   *handlers.SystemHandler
}

// NewApp creates a new application with all routes configured.
func NewApp(d Deps) *App {
	cfg := d.Config
	serviceDB := d.ServiceDB
	if serviceDB == nil {
		serviceDB = d.DB
	}

	sessions := auth.NewSessions(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, !cfg.App.Dev)
	resolver := &auth.Resolver{Sessions: sessions, Tokens: d.Tokens}
	roles := policy.NewDBRoleResolver(serviceDB)
	ag := policy.NewAuthGateWithRoles(roles)

	signer := &images.Signer{
		CloudName: cfg.Images.CloudName,
		APIKey:    cfg.Images.APIKey,
		APISecret: cfg.Images.APISecret,
		Folder:    cfg.Images.Folder,
	}

	app := &App{
		router:   chi.NewRouter(),
		cfg:      cfg,
		gate:     ag,
		resolver: resolver,
		auth:     handlers.NewAuthHandler(d.DB, sessions, resolver, roles, d.AuthService, cfg.App.SiteURL),
		admin:    handlers.NewAdminHandler(d.DB, ag),
		articles: handlers.NewArticleHandler(d.DB, ag),
		comments: handlers.NewCommentHandler(d.DB, ag),
		follows:  handlers.NewFollowHandler(d.DB, ag),
		country:  handlers.NewCountryHandler(d.DB, ag),
		images:   handlers.NewImageHandler(signer, ag),
		flights:  handlers.NewFlightHandler(),
		system:   handlers.NewSystemHandler(d.DB),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.CORS(a.cfg.HTTP))
	r.Use(a.resolver.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	// Operations
	r.Get("/healthz", a.system.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(a.cfg.HTTP))

		r.Get("/auth/callback", a.auth.Callback)

		r.Route("/api", func(r chi.Router) {
			r.Get("/debug/env", a.system.Env)

			r.Post("/auth/logout", a.auth.Logout)
			r.Get("/auth/role", a.auth.Role)

			r.Post("/images/signature", a.images.Signature)

			// Articles
			r.Get("/articles", a.articles.List)
			r.Post("/articles", a.articles.Create)
			r.Get("/articles/slug/{slug}", a.articles.BySlug)
			r.Put("/articles/{id}", a.articles.Update)
			r.Put("/articles/{id}/cover", a.articles.SetCover)
			r.Post("/articles/{id}/photos", a.articles.AddPhoto)
			r.Delete("/articles/{id}/photos/{photoId}", a.articles.DeletePhoto)
			r.Post("/articles/{id}/submit", a.articles.Submit)

			// Comments
			r.Get("/articles/{id}/comments", a.comments.List)
			r.Post("/articles/{id}/comments", a.comments.Create)
			r.Post("/comments/{id}/like", a.comments.ToggleLike)
			r.Delete("/comments/{id}", a.comments.Delete)

			// Users
			r.Get("/users/{id}/followers", a.follows.Followers)
			r.Get("/users/{id}/following", a.follows.Following)
			r.Post("/users/{id}/follow", a.follows.Follow)
			r.Delete("/users/{id}/follow", a.follows.Unfollow)
			r.Get("/users/{id}/visited", a.country.Visited)

			r.Group(func(r chi.Router) {
				r.Use(a.gate.RequireIdentity)
				r.Post("/me/visited/{code}", a.country.MarkVisited)
				r.Delete("/me/visited/{code}", a.country.UnmarkVisited)
			})

			// Reference data
			r.Get("/continents", a.country.Continents)
			r.Get("/countries", a.country.List)
			r.Get("/countries/{code}", a.country.Get)
			r.Get("/flights/links", a.flights.Links)

			r.Route("/admin", func(r chi.Router) {
				r.Use(a.gate.RequireAdmin)
				r.Get("/articles", a.admin.Articles)
				r.Patch("/articles/{id}/status", a.admin.ReviewArticle)
				r.Get("/comments", a.admin.Comments)
				r.Delete("/comments/{id}", a.admin.DeleteComment)
				r.Get("/users", a.admin.Users)
			})
		})
	})
}
