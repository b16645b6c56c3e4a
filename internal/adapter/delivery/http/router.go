// Package http exposes the link registry and the credential endpoints over
// HTTP. Management routes answer with plain-text bodies; listing answers JSON.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shortlink/docs"
	"github.com/vadimbarashkov/shortlink/internal/metrics"
	"github.com/vadimbarashkov/shortlink/internal/validate"
	"github.com/vadimbarashkov/shortlink/pkg/middleware/recoverer"
)

// Options are the router settings taken from configuration.
type Options struct {
	// APIPrefix is mounted in front of /api.
	APIPrefix          string
	PublicMode         bool
	TemporaryRedirect  bool
	SiteURL            string
	Version            string
	CacheControlHeader string
	AllowedOrigins     []string
}

// NewRouter initializes a chi router with the middleware stack, the
// management API under opts.APIPrefix and the redirect route.
func NewRouter(
	logger *httplog.Logger,
	opts Options,
	sessions *Sessions,
	linkUseCase linkUseCase,
	authUseCase authUseCase,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", apiKeyHeader},
		AllowCredentials: true,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(middleware.Compress(5))

	if opts.CacheControlHeader != "" {
		r.Use(middleware.SetHeader("Cache-Control", opts.CacheControlHeader))
	}

	r.NotFound(handleNotFound)

	r.Handle("/metrics", metrics.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(docs.Swagger)
	})

	lh := newLinkHandler(linkUseCase, validate.New(), opts.TemporaryRedirect)
	ah := newAuthHandler(authUseCase, sessions, opts.PublicMode)

	r.Route(opts.APIPrefix+"/api", func(r chi.Router) {
		r.Get("/siteurl", handleText(opts.SiteURL))
		r.Get("/version", handleText(opts.Version))

		r.Post("/login", ah.login)
		r.Delete("/logout", ah.logout)

		if opts.PublicMode {
			r.Post("/new", lh.addLink)
		} else {
			r.With(ah.requireAuth).Post("/new", lh.addLink)
		}

		r.With(ah.requireListAuth).Get("/all", lh.listLinks)

		r.Group(func(r chi.Router) {
			r.Use(ah.requireAuth)

			r.Put("/edit/{shortCode}", lh.editLink)
			r.Delete("/del/{shortCode}", lh.deleteLink)
			r.Post("/key", ah.generateAPIKey)
			r.Delete("/key", ah.resetAPIKey)
		})
	})

	r.Get("/{shortCode}", lh.resolveShortCode)

	return r
}
