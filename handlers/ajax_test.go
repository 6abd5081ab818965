package handlers

import (
	"errors"
	"mortify/commerce"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartCountResponses(t *testing.T) {
	tests := []struct {
		name     string
		commerce commerce.Commerce
		want     string
	}{
		{name: "no commerce subsystem", commerce: nil, want: `{"success":false,"data":{"count":0}}`},
		{name: "count", commerce: fakeCommerce{count: 3}, want: `{"success":true,"data":{"count":3}}`},
		{name: "empty cart", commerce: fakeCommerce{count: 0}, want: `{"success":true,"data":{"count":0}}`},
		{name: "negative count clamped", commerce: fakeCommerce{count: -2}, want: `{"success":true,"data":{"count":0}}`},
		{name: "no cart", commerce: fakeCommerce{err: commerce.ErrNoCart}, want: `{"success":false,"data":{"count":0}}`},
		{name: "unavailable", commerce: fakeCommerce{err: commerce.ErrUnavailable}, want: `{"success":false,"data":{"count":0}}`},
		{name: "other error", commerce: fakeCommerce{err: errors.New("boom")}, want: `{"success":false,"data":{"count":0}}`},
		{name: "panic", commerce: fakeCommerce{boom: true}, want: `{"success":false,"data":{"count":0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(o *Options) { o.Commerce = tt.commerce })

			for _, target := range []string{
				"/ajax?action=get_cart_count",
				"/ajax?action=mortify_get_cart_count",
				"/wp-admin/admin-ajax.php?action=mortify_get_cart_count",
			} {
				rec := s.do(http.MethodGet, target, "")
				require.Equal(t, http.StatusOK, rec.Code, target)
				assert.JSONEq(t, tt.want, rec.Body.String(), target)
			}
		})
	}
}

func TestCartCountViaPostForm(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Commerce = fakeCommerce{count: 7} })

	form := url.Values{"action": {"get_cart_count"}}.Encode()
	rec := s.do(http.MethodPost, "/ajax", form, func(req *http.Request) {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"count":7}}`, rec.Body.String())
}

func TestUnknownAjaxAction(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/ajax?action=heartbeat", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "0", rec.Body.String())
}

func TestAddToCartWithMemoryStore(t *testing.T) {
	store := commerce.NewMemoryStore(commerce.Links{Cart: "/cart/"})
	s := newTestServer(t, func(o *Options) { o.Commerce = store })

	rec := s.do(http.MethodPost, "/ajax?action=add_to_cart&quantity=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"count":2}}`, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, commerce.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	withSession := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: commerce.SessionCookie, Value: cookies[0].Value})
	}

	rec = s.do(http.MethodPost, "/ajax?action=add_to_cart", "", withSession)
	assert.JSONEq(t, `{"success":true,"data":{"count":3}}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/ajax?action=get_cart_count", "", withSession)
	assert.JSONEq(t, `{"success":true,"data":{"count":3}}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/ajax?action=get_cart_count", "")
	assert.JSONEq(t, `{"success":false,"data":{"count":0}}`, rec.Body.String(), "a visitor without a session has no cart")

	rec = s.do(http.MethodPost, "/ajax?action=add_to_cart&quantity=-1", "", withSession)
	assert.JSONEq(t, `{"success":false,"data":{"count":0}}`, rec.Body.String())
}

func TestAddToCartWithoutWriter(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Commerce = fakeCommerce{count: 1} })

	rec := s.do(http.MethodPost, "/ajax?action=add_to_cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"data":{"count":0}}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}
