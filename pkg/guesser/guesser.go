package guesser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-guesser/internal/logging"
	"github.com/goliatone/go-guesser/pkg/dataprovider"
	"github.com/goliatone/go-guesser/pkg/detect"
	"github.com/goliatone/go-guesser/pkg/element"
	"github.com/goliatone/go-guesser/pkg/model"
	"github.com/goliatone/go-guesser/pkg/resource"
	"github.com/goliatone/go-guesser/pkg/typemap"
)

var (
	// ErrClosed is returned once the guesser has been closed.
	ErrClosed = errors.New("guesser: closed")
	// ErrNotReady is returned when no tree has been built yet.
	ErrNotReady = errors.New("guesser: not ready")
	// ErrNoResource is returned by Load before SetResource.
	ErrNoResource = errors.New("guesser: resource is not set")
)

// State is the lifecycle position of a guesser.
type State uint8

const (
	StateIdle State = iota
	StateDetecting
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Ticket captures the resource and generation an in-flight fetch was started
// for. Apply drops results whose ticket no longer matches.
type Ticket struct {
	resource   string
	generation uint64
}

// Resource returns the resource the ticket was issued for.
func (t Ticket) Resource() string {
	return t.resource
}

// Query selects what Load fetches: ID for show and edit views, List for list
// views.
type Query struct {
	ID   any
	List dataprovider.ListParams
}

// Guesser infers a view for one resource at a time. Each instance owns its
// tree; nothing is shared between instances.
type Guesser struct {
	mu sync.Mutex

	id            string
	kind          ViewKind
	types         typemap.TypeMap
	detector      *detect.Detector
	resources     *resource.Registry
	logger        logrus.FieldLogger
	production    bool
	importPackage string
	denylist      []string

	resource   string
	generation uint64
	state      State
	inferences []detect.Inference
	sample     []*model.Record
	root       *element.Element
	node       model.Node
	snippet    string
	snippetErr error
	snippetSet bool
}

// Option customises a Guesser.
type Option func(*Guesser)

// WithTypeMap replaces the view's built-in type map.
func WithTypeMap(types typemap.TypeMap) Option {
	return func(g *Guesser) {
		g.types = types
	}
}

// WithDetector replaces the detector built from the resource registry.
func WithDetector(detector *detect.Detector) Option {
	return func(g *Guesser) {
		g.detector = detector
	}
}

// WithLogger sets the developer log channel.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Guesser) {
		g.logger = logger
	}
}

// WithProduction disables snippet logging.
func WithProduction(production bool) Option {
	return func(g *Guesser) {
		g.production = production
	}
}

// WithImportPackage sets the package named in the snippet import line.
func WithImportPackage(pkg string) Option {
	return func(g *Guesser) {
		g.importPackage = strings.TrimSpace(pkg)
	}
}

// WithDenylist replaces the components excluded from the import line.
func WithDenylist(names ...string) Option {
	return func(g *Guesser) {
		g.denylist = append([]string(nil), names...)
	}
}

// WithResources supplies the resource configuration used by the default
// detector.
func WithResources(registry *resource.Registry) Option {
	return func(g *Guesser) {
		g.resources = registry
	}
}

// New constructs an idle guesser for kind.
func New(kind ViewKind, opts ...Option) (*Guesser, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("guesser: invalid view kind %d", uint8(kind))
	}
	g := &Guesser{
		id:            uuid.NewString(),
		kind:          kind,
		types:         kind.TypeMap(),
		importPackage: DefaultImportPackage,
		denylist:      append([]string(nil), DefaultDenylist...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.logger = logging.OrDiscard(g.logger)
	if g.detector == nil {
		g.detector = detect.New(
			detect.WithRelationships(g.resources),
			detect.WithLogger(g.logger),
		)
	}
	if !g.types.Has(model.TagForm) {
		return nil, fmt.Errorf("guesser: type map %q has no %s entry", g.types.Name(), model.TagForm)
	}
	return g, nil
}

// ID identifies the instance in log entries.
func (g *Guesser) ID() string {
	return g.id
}

// Kind returns the view kind.
func (g *Guesser) Kind() ViewKind {
	return g.kind
}

// Resource returns the current resource.
func (g *Guesser) Resource() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resource
}

// State returns the current lifecycle state.
func (g *Guesser) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SetResource switches the guesser to name. A different resource discards
// the current tree and returns the guesser to idle before any sample for the
// new resource is applied. Setting the same resource again is a no-op.
func (g *Guesser) SetResource(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateClosed || name == g.resource {
		return
	}
	g.resource = name
	g.generation++
	g.resetLocked(StateIdle)
}

// Begin issues a ticket for a fetch of the current resource.
func (g *Guesser) Begin() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Ticket{resource: g.resource, generation: g.generation}
}

// Apply feeds a record sample fetched under ticket. It reports whether the
// sample produced a new tree. Stale tickets, including tickets issued before
// Close, empty samples and samples arriving once the guesser is ready are
// ignored without error. Tickets issued after Close yield ErrClosed. A type map
// lacking an entry for a detected tag is a configuration error; the guesser
// stays idle.
func (g *Guesser) Apply(ticket Ticket, records []*model.Record) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	log := g.logger.WithFields(logrus.Fields{
		"guesser":  g.id,
		"resource": g.resource,
		"view":     g.kind.String(),
	})

	switch {
	case ticket.generation != g.generation || ticket.resource != g.resource:
		log.WithField("ticket_resource", ticket.resource).Debug("guesser: dropping stale sample")
		return false, nil
	case g.state == StateClosed:
		return false, ErrClosed
	case g.state == StateReady:
		return false, nil
	}

	sample := make([]*model.Record, 0, len(records))
	for _, record := range records {
		if record != nil {
			sample = append(sample, record)
		}
	}
	if len(sample) == 0 {
		return false, nil
	}

	g.state = StateDetecting
	inferences := g.detector.Detect(g.resource, sample)
	children, err := detect.Elements(g.types, inferences)
	if err != nil {
		g.resetLocked(StateIdle)
		return false, fmt.Errorf("guesser: %s %s: %w", g.kind, g.resource, err)
	}
	root, err := element.Synthesize(g.types, model.TagForm, model.Props{}, children...)
	if err != nil {
		g.resetLocked(StateIdle)
		return false, fmt.Errorf("guesser: %s %s: %w", g.kind, g.resource, err)
	}
	node, err := root.Render()
	if err != nil {
		g.resetLocked(StateIdle)
		return false, fmt.Errorf("guesser: %s %s: %w", g.kind, g.resource, err)
	}

	g.inferences = inferences
	g.sample = sample
	g.root = root
	g.node = node
	g.state = StateReady
	log.WithField("fields", len(inferences)).Debug("guesser: ready")

	if !g.production {
		snippet, err := g.snippetLocked()
		if err != nil {
			log.WithError(err).Warn("guesser: snippet generation failed")
		} else {
			log.Info(snippet)
		}
	}
	return true, nil
}

// Load fetches a sample for the current resource from provider and applies
// it. The fetch runs without holding the guesser, so a resource switch or
// Close during the fetch makes the result stale.
func (g *Guesser) Load(ctx context.Context, provider dataprovider.Provider, query Query) (bool, error) {
	ticket := g.Begin()
	if ticket.resource == "" {
		return false, ErrNoResource
	}
	if g.State() == StateClosed {
		return false, ErrClosed
	}

	var records []*model.Record
	if g.kind.FetchesList() {
		result, err := provider.GetList(ctx, ticket.resource, query.List)
		if err != nil {
			return false, fmt.Errorf("guesser: fetch %s: %w", ticket.resource, err)
		}
		records = result.Records
	} else {
		record, err := provider.GetOne(ctx, ticket.resource, query.ID)
		if err != nil {
			return false, fmt.Errorf("guesser: fetch %s/%v: %w", ticket.resource, query.ID, err)
		}
		records = []*model.Record{record}
	}
	return g.Apply(ticket, records)
}

// Close discards the tree and rejects further samples.
func (g *Guesser) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.resetLocked(StateClosed)
}

// Node returns the rendered tree once the guesser is ready.
func (g *Guesser) Node() (model.Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateReady {
		return model.Node{}, false
	}
	return g.node, true
}

// Root returns the inferred element tree once the guesser is ready.
func (g *Guesser) Root() (*element.Element, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateReady {
		return nil, false
	}
	return g.root, true
}

// Inferences returns a copy of the detected fields once ready.
func (g *Guesser) Inferences() []detect.Inference {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]detect.Inference(nil), g.inferences...)
}

// Sample returns the records the current tree was inferred from.
func (g *Guesser) Sample() []*model.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*model.Record(nil), g.sample...)
}

// Snippet returns the generated source for the current tree.
func (g *Guesser) Snippet() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateClosed:
		return "", ErrClosed
	case StateReady:
		return g.snippetLocked()
	default:
		return "", ErrNotReady
	}
}

func (g *Guesser) snippetLocked() (string, error) {
	if g.snippetSet {
		return g.snippet, g.snippetErr
	}
	representation, err := g.root.Representation()
	if err == nil {
		g.snippet = FormatSnippet(g.kind, g.resource, representation, g.importPackage, g.denylist)
	}
	g.snippetErr = err
	g.snippetSet = true
	return g.snippet, g.snippetErr
}

func (g *Guesser) resetLocked(state State) {
	g.state = state
	g.inferences = nil
	g.sample = nil
	g.root = nil
	g.node = model.Node{}
	g.snippet = ""
	g.snippetErr = nil
	g.snippetSet = false
}
