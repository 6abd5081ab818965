package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	storeCartPath     = "/wp-json/wc/store/cart"
	maxCartBodyBytes  = 1 << 20
	defaultAPITimeout = 3 * time.Second
)

// StoreAPI reads cart counts from a WooCommerce Store API. The visitor's
// cookies are forwarded so the store resolves its own session.
type StoreAPI struct {
	baseURL string
	client  *http.Client
	memo    *cache.Cache
	links   Links
}

// NewStoreAPI creates a client for the store at baseURL. Counts are reused
// per session for memoTTL; zero disables reuse.
func NewStoreAPI(baseURL string, links Links, timeout, memoTTL time.Duration) *StoreAPI {
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	api := &StoreAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		links:   links,
	}
	if memoTTL > 0 {
		api.memo = cache.New(memoTTL, 2*memoTTL)
	}
	return api
}

type storeCart struct {
	ItemsCount *int `json:"items_count"`
}

// CartCount fetches items_count of the visitor's cart. A 404 maps to
// ErrNoCart, every other failure to ErrUnavailable.
func (s *StoreAPI) CartCount(ctx context.Context, sess Session) (int, error) {
	if s.baseURL == "" {
		return 0, fmt.Errorf("%w: store URL not configured", ErrUnavailable)
	}

	key := memoKey(sess)
	if s.memo != nil && key != "" {
		if v, ok := s.memo.Get(key); ok {
			return v.(int), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+storeCartPath, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	for _, c := range sess.Cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrNoCart
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: store API returned %d", ErrUnavailable, resp.StatusCode)
	}

	var cart storeCart
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCartBodyBytes)).Decode(&cart); err != nil {
		return 0, fmt.Errorf("%w: invalid cart payload: %v", ErrUnavailable, err)
	}
	if cart.ItemsCount == nil {
		return 0, fmt.Errorf("%w: cart payload has no items_count", ErrUnavailable)
	}

	count := max(*cart.ItemsCount, 0)
	if s.memo != nil && key != "" {
		s.memo.Set(key, count, cache.DefaultExpiration)
	}
	return count, nil
}

func (s *StoreAPI) Links() Links {
	return s.links
}

func memoKey(sess Session) string {
	if sess.Key != "" {
		return "session:" + sess.Key
	}
	parts := make([]string, 0, len(sess.Cookies))
	for _, c := range sess.Cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}
