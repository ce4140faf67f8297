// Package server mounts guessed Show, Edit and List pages for every resource
// of a data provider on a chi router.
//
//	GET /{resource}               list
//	GET /{resource}/{id}          edit
//	GET /{resource}/{id}/show     show
//
// The format query parameter selects a registered renderer (html by default,
// json) or the generated snippet (format=snippet).
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/guesser"
	"github.com/goliatone/go-guesser/pkg/render"
	"github.com/goliatone/go-guesser/pkg/renderers/html"
	"github.com/goliatone/go-guesser/pkg/renderers/jsontree"
	"github.com/goliatone/go-guesser/pkg/resource"
)

// Server builds one guesser per request; nothing inferred is shared between
// requests.
type Server struct {
	provider      dataprovider.Provider
	resources     *resource.Registry
	renderers     *render.Registry
	logger        logrus.FieldLogger
	importPackage string
	production    bool
	perPage       int
}

type Option func(*Server)

// WithResources supplies identifier fields and relationships.
func WithResources(registry *resource.Registry) Option {
	return func(s *Server) {
		s.resources = registry
	}
}

// WithRenderers replaces the default html, json and snippet renderers. The
// registry's default format answers requests without a format parameter.
func WithRenderers(registry *render.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithImportPackage sets the package named in generated snippets.
func WithImportPackage(pkg string) Option {
	return func(s *Server) {
		s.importPackage = strings.TrimSpace(pkg)
	}
}

// WithProduction silences the snippet log channel of request guessers.
func WithProduction(production bool) Option {
	return func(s *Server) {
		s.production = production
	}
}

// WithPerPage sets the default list page size.
func WithPerPage(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// New constructs a Server reading records from provider.
func New(provider dataprovider.Provider, opts ...Option) (*Server, error) {
	if provider == nil {
		return nil, errors.New("server: data provider is required")
	}
	s := &Server{
		provider:      provider,
		importPackage: guesser.DefaultImportPackage,
		perPage:       25,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.OrDiscard(s.logger)

	if s.renderers == nil {
		htmlRenderer, err := html.New(html.WithSnippet(!s.production))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderers = render.NewRegistry()
		s.renderers.MustRegister(
			htmlRenderer,
			jsontree.New(jsontree.WithSnippet(!s.production)),
			render.SnippetRenderer{},
		)
	}
	return s, nil
}

// Handler returns a router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the guesser routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handleResources)
	r.Route("/{resource}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleEdit)
		r.Get("/{id}/show", s.handleShow)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(started).String(),
		}).Debug("server: request")
	})
}
