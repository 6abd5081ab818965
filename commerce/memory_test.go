package commerce

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Links{Cart: "/cart/"})

	key := store.NewSession()
	_, err := uuid.Parse(key)
	require.NoError(t, err, "session ids are uuids")
	sess := Session{Key: key}

	_, err = store.CartCount(ctx, sess)
	assert.ErrorIs(t, err, ErrNoCart)

	count, err := store.Add(ctx, sess, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.Add(ctx, sess, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	count, err = store.CartCount(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	store.Clear(ctx, sess)
	count, err = store.CartCount(ctx, sess)
	require.NoError(t, err, "an emptied cart still exists")
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, store.Carts())

	_, err = store.Add(ctx, sess, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = store.Add(ctx, Session{}, 1)
	assert.ErrorIs(t, err, ErrNoCart)
	_, err = store.CartCount(ctx, Session{})
	assert.ErrorIs(t, err, ErrNoCart)

	assert.Equal(t, "/cart/", store.Links().Cart)
}

func TestSessionFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/ajax?action=get_cart_count", nil)
	req.Header.Set("Cookie", "mortify_cart=abc; woocommerce_cart_hash=xyz")

	sess := SessionFromRequest(req)
	assert.Equal(t, "abc", sess.Key)
	assert.Len(t, sess.Cookies, 2)

	empty := SessionFromRequest(httptest.NewRequest("GET", "/", nil))
	assert.Empty(t, empty.Key)
	assert.Empty(t, empty.Cookies)
}

func TestTabProvider(t *testing.T) {
	p := NewTabProvider(NewMemoryStore(Links{Shop: "/shop/", Cart: "/cart/", Account: "/my-account/"}))
	tabs := p.Tabs(context.Background())
	require.Len(t, tabs, 3)
	assert.Equal(t, "Shop", tabs[0].Label)
	assert.Equal(t, "🛒", tabs[1].Icon)
	assert.Equal(t, "/my-account/", tabs[2].URL)

	partial := NewTabProvider(NewMemoryStore(Links{Cart: "/cart/"}))
	assert.Len(t, partial.Tabs(context.Background()), 1)

	var none *TabProvider
	assert.Nil(t, none.Tabs(context.Background()))
}
