package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GregMSThompson/moneylog/internal/handlers"
	"github.com/GregMSThompson/moneylog/internal/middleware"
)

type Options struct {
	Log         *slog.Logger
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int
	// Auth guards /api when set.
	Auth *middleware.Middleware
	// AccessKey reads the key query parameter on shell page loads. It is
	// ignored when Auth is set: page loads carry no ID token, so the key
	// can only change through POST /api/session/key.
	AccessKey func(http.Handler) http.Handler
	// Shell serves everything outside /api; nil disables it.
	Shell http.Handler
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(opts.Log).LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.ConfirmHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst).RateLimit)

	sh := handlers.NewStateHandlers(deps)
	eh := handlers.NewEntryHandlers(deps)
	wh := handlers.NewWishHandlers(deps)
	seh := handlers.NewSettingsHandlers(deps)
	ih := handlers.NewImageHandlers(deps)
	vh := handlers.NewViewHandlers(deps)

	r.Route("/api", func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth.FirebaseAuth)
		}
		r.Get("/state", sh.GetState)
		r.Post("/sync", sh.Sync)
		r.Post("/session/key", sh.SetAccessKey)
		r.Get("/notices", sh.GetNotices)
		r.Get("/filter", eh.GetFilter)
		r.Put("/filter", eh.SetFilter)
		r.Get("/chart", eh.GetChart)
		r.Post("/images", ih.UploadImage)

		r.Mount("/entries", eh.EntryRoutes())
		r.Mount("/wishes", wh.WishRoutes())
		r.Mount("/settings", seh.SettingsRoutes())
		r.Mount("/view", vh.ViewRoutes())
	})

	r.Get("/manifest.json", sh.Manifest)

	keyFromURL := opts.AccessKey
	if opts.Auth != nil {
		keyFromURL = nil
	}
	if opts.Shell != nil {
		shell := opts.Shell
		if keyFromURL != nil {
			shell = keyFromURL(shell)
		}
		r.Handle("/*", shell)
	} else if keyFromURL != nil {
		r.With(keyFromURL).Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}
	return r
}
