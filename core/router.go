package core

import (
	"context"
	"fmt"
	"log"
	"mortify/models"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
)

// RouteKind is the outcome of matching one request path.
type RouteKind int

const (
	Unmatched RouteKind = iota
	AppShell
	Manifest
	ServiceWorker
	OfflineFallback
)

func (k RouteKind) String() string {
	switch k {
	case AppShell:
		return "app_shell"
	case Manifest:
		return "manifest"
	case ServiceWorker:
		return "service_worker"
	case OfflineFallback:
		return "offline"
	default:
		return "unmatched"
	}
}

// queryVar is the rewrite tag a matched route resolves to.
func (k RouteKind) queryVar() string {
	switch k {
	case AppShell:
		return "mortify_app"
	case Manifest:
		return "mortify_manifest"
	case ServiceWorker:
		return "mortify_sw"
	case OfflineFallback:
		return "mortify_offline"
	default:
		return ""
	}
}

// Route pairs a compiled path pattern with the kind it dispatches to.
type Route struct {
	Pattern *regexp.Regexp
	Kind    RouteKind
}

// Flusher rebuilds the host-side rewrite rules. It is expensive and must
// not run per request.
type Flusher interface {
	FlushRoutes(ctx context.Context, rules []models.RewriteRule) error
}

type routeTable struct {
	slug       string
	routes     []Route
	registered bool
	flushed    bool
}

// Router holds the route table for the configured slug. Match is lock-free;
// Register, Activate and Deactivate are serialized.
type Router struct {
	mu      sync.Mutex
	table   atomic.Pointer[routeTable]
	flusher Flusher
}

// NewRouter creates a router with an empty table. flusher may be nil.
func NewRouter(flusher Flusher) *Router {
	r := &Router{flusher: flusher}
	r.table.Store(&routeTable{})
	return r
}

// BuildRoutes derives the four app routes for slug, in match order.
// The slug is escaped, so characters like "." or "+" match literally.
func BuildRoutes(slug string) []Route {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return nil
	}
	quoted := regexp.QuoteMeta(slug)
	return []Route{
		{Pattern: regexp.MustCompile(`^` + quoted + `/?$`), Kind: AppShell},
		{Pattern: regexp.MustCompile(`^` + quoted + `/manifest\.webmanifest$`), Kind: Manifest},
		{Pattern: regexp.MustCompile(`^` + quoted + `/sw\.js$`), Kind: ServiceWorker},
		{Pattern: regexp.MustCompile(`^` + quoted + `/offline\.html$`), Kind: OfflineFallback},
	}
}

// Register installs the routes for slug. Registering the slug that is
// already installed is a no-op; a new slug replaces the table and flushes
// once. changed reports whether the table was replaced. When a flush fails
// the new table stays live and the next Register of the same slug retries it.
func (r *Router) Register(ctx context.Context, slug string) (changed bool, err error) {
	slug = NormalizeSlug(slug)

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.table.Load()
	if current.registered && current.slug == slug {
		if current.flushed {
			return false, nil
		}
		return false, r.flushLocked(ctx, current)
	}

	next := &routeTable{slug: slug, routes: BuildRoutes(slug), registered: true}
	r.table.Store(next)
	log.Printf("Routes registered for slug %q (%d routes)", slug, len(next.routes))
	return true, r.flushLocked(ctx, next)
}

// Activate registers slug and flushes exactly once, even when the slug is
// already installed.
func (r *Router) Activate(ctx context.Context, slug string) error {
	slug = NormalizeSlug(slug)

	r.mu.Lock()
	defer r.mu.Unlock()

	next := &routeTable{slug: slug, routes: BuildRoutes(slug), registered: true}
	r.table.Store(next)
	log.Printf("Router activated for slug %q", slug)
	return r.flushLocked(ctx, next)
}

// Deactivate removes every route and flushes the now empty rule set.
func (r *Router) Deactivate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &routeTable{}
	r.table.Store(next)
	return r.flushLocked(ctx, next)
}

func (r *Router) flushLocked(ctx context.Context, t *routeTable) error {
	if r.flusher == nil {
		t.flushed = true
		return nil
	}
	if err := r.flusher.FlushRoutes(ctx, rulesFor(t.routes)); err != nil {
		return fmt.Errorf("failed to flush rewrite rules: %w", err)
	}
	t.flushed = true
	return nil
}

// Match resolves a request path. Only the path is considered; a query
// string is dropped before matching.
func (r *Router) Match(path string) RouteKind {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "/")
	for _, route := range r.table.Load().routes {
		if route.Pattern.MatchString(path) {
			return route.Kind
		}
	}
	return Unmatched
}

// Slug returns the slug of the installed table.
func (r *Router) Slug() string {
	return r.table.Load().slug
}

// Routes returns a copy of the installed table.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.table.Load().routes...)
}

// Rules returns the installed table in its persisted form.
func (r *Router) Rules() []models.RewriteRule {
	return rulesFor(r.table.Load().routes)
}

// Rule is the persisted form of the route.
func (r Route) Rule() models.RewriteRule {
	return models.RewriteRule{
		Pattern: r.Pattern.String(),
		Query:   r.Kind.queryVar() + "=1",
	}
}

func rulesFor(routes []Route) []models.RewriteRule {
	rules := make([]models.RewriteRule, 0, len(routes))
	for _, route := range routes {
		rules = append(rules, route.Rule())
	}
	return rules
}
