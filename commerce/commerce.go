package commerce

import (
	"context"
	"errors"
	"mortify/models"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable means the cart backend could not be reached or answered garbage.
	ErrUnavailable = errors.New("commerce unavailable")
	// ErrNoCart means the backend has no cart for the session.
	ErrNoCart = errors.New("no cart for session")
	// ErrInvalidQuantity is returned when adding a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// SessionCookie carries the cart session id for the in-memory backend.
const SessionCookie = "mortify_cart"

// Session identifies the visitor whose cart is queried.
type Session struct {
	Key     string         // value of SessionCookie, empty for new visitors
	Cookies []*http.Cookie // forwarded as-is to remote backends
}

// SessionFromRequest collects the session of an incoming request.
func SessionFromRequest(r *http.Request) Session {
	s := Session{Cookies: r.Cookies()}
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.Key = strings.TrimSpace(c.Value)
	}
	return s
}

// Links are the storefront pages the shell links to.
type Links struct {
	Shop    string
	Cart    string
	Account string
}

// Commerce is the cart backend the cart count endpoint talks to.
type Commerce interface {
	CartCount(ctx context.Context, s Session) (int, error)
	Links() Links
}

// CartWriter is implemented by backends that can modify a cart directly.
type CartWriter interface {
	NewSession() string
	Add(ctx context.Context, s Session, quantity int) (int, error)
}

// TabProvider contributes the storefront tabs of a commerce backend.
type TabProvider struct {
	commerce Commerce
}

// NewTabProvider returns a provider for c.
func NewTabProvider(c Commerce) *TabProvider {
	return &TabProvider{commerce: c}
}

// Tabs returns Shop, Cart and Account, skipping links that are not set.
func (p *TabProvider) Tabs(context.Context) []models.Tab {
	if p == nil || p.commerce == nil {
		return nil
	}
	links := p.commerce.Links()
	candidates := []models.Tab{
		{Label: "Shop", Icon: "🛍️", URL: links.Shop},
		{Label: "Cart", Icon: "🛒", URL: links.Cart},
		{Label: "Account", Icon: "👤", URL: links.Account},
	}

	tabs := make([]models.Tab, 0, len(candidates))
	for _, tab := range candidates {
		if tab.URL != "" {
			tabs = append(tabs, tab)
		}
	}
	return tabs
}
