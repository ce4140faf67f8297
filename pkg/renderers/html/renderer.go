package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-guesser/internal/naming"
	"github.com/goliatone/go-guesser/pkg/render"
	rendertemplate "github.com/goliatone/go-guesser/pkg/render/template"
	gotemplate "github.com/goliatone/go-guesser/pkg/render/template/gotemplate"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.ViewRenderer
	basePath         string
	policy           *bluemonday.Policy
	showSnippet      bool
	postHooks        []gotemplatepkg.PostHook
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.ViewRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithBasePath prefixes the links to other records, e.g. "/admin".
func WithBasePath(prefix string) Option {
	return func(cfg *config) {
		cfg.basePath = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithPolicy replaces the sanitizer applied to rich text values.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithSnippet embeds the guessed source below the page when the page carries
// one.
func WithSnippet(enabled bool) Option {
	return func(cfg *config) {
		cfg.showSnippet = enabled
	}
}

// WithPostHooks renders through the go-template engine and passes every page
// through hooks, in order, before it is returned. Ignored when
// WithTemplateRenderer is set.
func WithPostHooks(hooks ...gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		for _, hook := range hooks {
			if hook != nil {
				cfg.postHooks = append(cfg.postHooks, hook)
			}
		}
	}
}

// Renderer draws guessed Show, Edit and List pages as HTML documents.
type Renderer struct {
	templates   rendertemplate.ViewRenderer
	basePath    string
	policy      *bluemonday.Policy
	showSnippet bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	renderer := cfg.templateRenderer
	switch {
	case renderer != nil:
	case len(cfg.postHooks) > 0:
		engine, err := gotemplate.NewGoTemplate(gotemplatepkg.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		for _, hook := range cfg.postHooks {
			engine.RegisterPostHook(hook)
		}
		renderer = engine
	default:
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		basePath:    cfg.basePath,
		policy:      cfg.policy,
		showSnippet: cfg.showSnippet,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws page with the template named after page.View.
func (r *Renderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	view := strings.ToLower(strings.TrimSpace(page.View))
	data := map[string]any{
		"view":     view,
		"resource": page.Resource,
		"title":    r.title(page),
	}
	if r.showSnippet && page.Snippet != "" {
		data["snippet"] = page.Snippet
	}

	switch view {
	case "show":
		data["fields"] = r.recordCells(page, false)
	case "edit":
		data["fields"] = r.recordCells(page, true)
		if id, ok := r.identifier(page.Fields(), recordData(page.Record())); ok {
			data["action"] = r.href(page.Resource, id, "")
		}
	case "list":
		columns, rows := r.grid(page)
		data["columns"] = columns
		data["rows"] = rows
		if page.Total > 0 {
			data["total"] = strconv.Itoa(page.Total)
		}
	default:
		return nil, fmt.Errorf("html renderer: unsupported view %q", page.View)
	}

	result, err := r.templates.RenderTemplate(view, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) title(page render.Page) string {
	if title := strings.TrimSpace(page.Title); title != "" {
		return title
	}
	return naming.Label(page.Resource)
}

func (r *Renderer) href(resource, id, suffix string) string {
	if resource == "" || id == "" {
		return ""
	}
	return r.basePath + "/" + resource + "/" + id + suffix
}
