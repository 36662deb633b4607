// Package server exposes the lemma bank over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/lemmabank/internal/config"
	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/fetch"
	"github.com/example/lemmabank/internal/segment"
	"github.com/example/lemmabank/internal/urlcheck"
	"github.com/example/lemmabank/internal/vite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultHTTPTimeout bounds the handling of a single request.
	DefaultHTTPTimeout = 30 * time.Second
	// EntryPoint is the Vite entry rendered by the HTML shell.
	EntryPoint = "src/main.ts"
)

// Server holds the HTTP router and its dependencies.
type Server struct {
	cfg      *config.Config
	db       *sqlx.DB
	router   chi.Router
	validate *validator.Validate
	metrics  *metrics

	lemmas    *database.LemmaRepository
	wordforms *database.WordformRepository
	phrases   *database.PhraseRepository
	sentences *database.SentenceRepository
	sources   *database.SourceRepository
	users     *database.UserRepository
	vocab     *database.VocabRepository

	detector *segment.Detector
	fetcher  *fetch.Fetcher
	manifest *vite.Manifest
}

// New wires the routes. manifest may be nil when no frontend is built.
func New(cfg *config.Config, db *sqlx.DB, manifest *vite.Manifest) *Server {
	s := &Server{
		cfg:       cfg,
		db:        db,
		router:    chi.NewRouter(),
		validate:  newValidator(),
		metrics:   newMetrics(),
		lemmas:    database.NewLemmaRepository(db),
		wordforms: database.NewWordformRepository(db),
		phrases:   database.NewPhraseRepository(db),
		sentences: database.NewSentenceRepository(db),
		sources:   database.NewSourceRepository(db),
		users:     database.NewUserRepository(db),
		vocab:     database.NewVocabRepository(db),
		detector:  segment.NewDetector(cfg.SupportedLanguages),
		fetcher:   fetch.New(urlcheck.New(cfg.AllowPrivateURLs), cfg.FetchTimeout),
		manifest:  manifest,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(s.metrics.middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(DefaultHTTPTimeout))
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir))))
	if dir := distDir(s.cfg.ViteManifest); dir != "" && s.cfg.ViteDevServer == "" {
		if base := "/" + strings.Trim(s.cfg.ViteBase, "/") + "/"; base != "//" {
			r.Handle(base+"*", http.StripPrefix(base, http.FileServer(http.Dir(dir))))
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", s.handleLanguages)
		r.Post("/tokenize", s.handleTokenize)

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleListSources)
			r.Post("/", s.handleCreateSource)
			r.Get("/{slug}", s.handleGetSource)
			r.Post("/{slug}/image", s.handleUploadSourceImage)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Patch("/", s.handleUpdateUser)
				r.Get("/vocab", s.handleListVocab)
				r.Post("/vocab", s.handleAddVocab)
				r.Get("/vocab/due", s.handleDueVocab)
				r.Post("/vocab/{vocabID}/review", s.handleReviewVocab)
			})
		})

		r.Route("/{lang}", func(r chi.Router) {
			r.Use(s.requireLanguage)

			r.Get("/lemmas", s.handleListLemmas)
			r.Post("/lemmas", s.handleCreateLemma)
			r.Get("/lemmas/{slug}", s.handleGetLemma)
			r.Patch("/lemmas/{slug}", s.handleUpdateLemma)
			r.Delete("/lemmas/{slug}", s.handleDeleteLemma)
			r.Post("/lemmas/{slug}/wordforms", s.handleCreateWordform)
			r.Get("/wordforms/{form}", s.handleLookupWordform)

			r.Get("/phrases", s.handleListPhrases)
			r.Post("/phrases", s.handleCreatePhrase)

			r.Get("/sentences", s.handleListSentences)
			r.Post("/sentences", s.handleCreateSentence)
		})
	})
}

// distDir is the Vite build directory holding manifest, which Vite writes
// to .vite/manifest.json inside it.
func distDir(manifest string) string {
	if manifest == "" {
		return ""
	}
	dir := filepath.Dir(manifest)
	if filepath.Base(dir) == ".vite" {
		dir = filepath.Dir(dir)
	}
	return dir
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.HTTPAddr).Msg("http server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Routes names the API URL patterns shared with the frontend.
var Routes = map[string]string{
	"health":       "/healthz",
	"languages":    "/api/languages",
	"tokenize":     "/api/tokenize",
	"lemmas":       "/api/{lang}/lemmas",
	"lemma":        "/api/{lang}/lemmas/{slug}",
	"wordforms":    "/api/{lang}/lemmas/{slug}/wordforms",
	"wordform":     "/api/{lang}/wordforms/{form}",
	"phrases":      "/api/{lang}/phrases",
	"sentences":    "/api/{lang}/sentences",
	"sources":      "/api/sources",
	"source":       "/api/sources/{slug}",
	"source_image": "/api/sources/{slug}/image",
	"users":        "/api/users",
	"user":         "/api/users/{id}",
	"vocab":        "/api/users/{id}/vocab",
	"vocab_due":    "/api/users/{id}/vocab/due",
	"vocab_review": "/api/users/{id}/vocab/{vocabID}/review",
}
