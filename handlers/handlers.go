package handlers

import (
	"context"
	"io/fs"
	"mortify/commerce"
	"mortify/config"
	"mortify/core"
	"mortify/metrics"
	"mortify/service"
	"net/http"
	"sync"
	"time"
)

// AjaxPath is the cart endpoint mounted by this service. LegacyAjaxPath is
// accepted as well so existing clients keep working.
const (
	AjaxPath       = "/ajax"
	LegacyAjaxPath = "/wp-admin/admin-ajax.php"
)

// Options carries the dependencies of the HTTP layer. Commerce, Upstream,
// Metrics, Ping, Assets and Shutdown are optional.
type Options struct {
	Config   *config.Config
	Site     core.Site
	Settings *service.SettingsService
	Router   *core.Router
	PWA      *core.PWAResponder
	Shell    core.ShellRenderer
	Commerce commerce.Commerce
	Upstream http.Handler
	Metrics  *metrics.Metrics
	Ping     func(ctx context.Context) bool
	Assets   fs.FS
	Shutdown chan<- struct{}
}

// Handler serves the app routes, the cart endpoint and the admin API.
type Handler struct {
	cfg      *config.Config
	site     core.Site
	settings *service.SettingsService
	router   *core.Router
	pwa      *core.PWAResponder
	shell    core.ShellRenderer
	commerce commerce.Commerce
	tabs     []core.TabProvider
	upstream http.Handler
	metrics  *metrics.Metrics
	ping     func(ctx context.Context) bool
	assets   fs.FS
	shutdown *shutdownManager

	// writeMu keeps the stored slug and the installed route table in step.
	writeMu sync.Mutex
}

// New builds a handler. Commerce backends contribute their storefront tabs.
func New(opts Options) *Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Settings
	}
	h := &Handler{
		cfg:      cfg,
		site:     opts.Site,
		settings: opts.Settings,
		router:   opts.Router,
		pwa:      opts.PWA,
		shell:    opts.Shell,
		commerce: opts.Commerce,
		upstream: opts.Upstream,
		metrics:  opts.Metrics,
		ping:     opts.Ping,
		assets:   opts.Assets,
		shutdown: &shutdownManager{ch: opts.Shutdown},
	}
	if opts.Commerce != nil {
		h.tabs = append(h.tabs, commerce.NewTabProvider(opts.Commerce))
	}
	return h
}

// shutdownManager manages shutdown confirmation codes
type shutdownManager struct {
	mu        sync.RWMutex
	code      string
	expiresAt time.Time
	ch        chan<- struct{}
}

func (h *Handler) cartURL() string {
	if h.commerce != nil {
		if link := h.commerce.Links().Cart; link != "" {
			return link
		}
	}
	return h.cfg.CartURL
}
