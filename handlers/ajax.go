package handlers

import (
	"errors"
	"fmt"
	"mortify/commerce"
	"mortify/core"
	"mortify/metrics"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const sessionCookieMaxAge = 48 * 60 * 60

type cartCountData struct {
	Count int `json:"count"`
}

type cartCountResponse struct {
	Success bool          `json:"success"`
	Data    cartCountData `json:"data"`
}

// Ajax answers the cart actions. Any other action belongs to the host and
// is passed through.
func (h *Handler) Ajax(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		action = c.PostForm("action")
	}

	switch action {
	case "get_cart_count", "mortify_get_cart_count":
		h.cartCount(c)
	case "add_to_cart", "mortify_add_to_cart":
		h.addToCart(c)
	default:
		if h.upstream != nil {
			h.upstream.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.String(http.StatusBadRequest, "0")
	}
}

func (h *Handler) cartCount(c *gin.Context) {
	defer h.recoverCart(c)

	if h.commerce == nil {
		h.metrics.ObserveCart(metrics.CartDisabled)
		writeCart(c, false, 0)
		return
	}

	count, err := h.commerce.CartCount(c.Request.Context(), commerce.SessionFromRequest(c.Request))
	switch {
	case err == nil:
		h.metrics.ObserveCart(metrics.CartOK)
		writeCart(c, true, max(count, 0))
	case errors.Is(err, commerce.ErrNoCart):
		h.metrics.ObserveCart(metrics.CartEmpty)
		writeCart(c, false, 0)
	case errors.Is(err, commerce.ErrUnavailable):
		h.metrics.ObserveCart(metrics.CartUnavailable)
		core.LogWarn("Cart", "Cart backend unavailable", err.Error())
		writeCart(c, false, 0)
	default:
		h.metrics.ObserveCart(metrics.CartError)
		core.LogErrorWithDetail("Cart", "Cart count failed", err.Error())
		writeCart(c, false, 0)
	}
}

func (h *Handler) addToCart(c *gin.Context) {
	defer h.recoverCart(c)

	writer, ok := h.commerce.(commerce.CartWriter)
	if !ok {
		writeCart(c, false, 0)
		return
	}

	quantity := 1
	if raw := c.DefaultQuery("quantity", c.PostForm("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeCart(c, false, 0)
			return
		}
		quantity = n
	}

	sess := commerce.SessionFromRequest(c.Request)
	if sess.Key == "" {
		sess.Key = writer.NewSession()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(commerce.SessionCookie, sess.Key, sessionCookieMaxAge, "/", "", c.Request.TLS != nil, true)
	}

	count, err := writer.Add(c.Request.Context(), sess, quantity)
	if err != nil {
		core.LogWarn("Cart", "Add to cart failed", err.Error())
		writeCart(c, false, 0)
		return
	}
	writeCart(c, true, count)
}

// recoverCart keeps a panicking backend from reaching the client.
func (h *Handler) recoverCart(c *gin.Context) {
	if r := recover(); r != nil {
		h.metrics.ObserveCart(metrics.CartError)
		core.LogErrorWithContext("Cart", "Cart handler panic", fmt.Sprint(r), map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		writeCart(c, false, 0)
	}
}

func writeCart(c *gin.Context, success bool, count int) {
	c.JSON(http.StatusOK, cartCountResponse{Success: success, Data: cartCountData{Count: count}})
}
