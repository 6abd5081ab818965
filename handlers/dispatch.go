package handlers

import (
	"bytes"
	"mortify/core"
	"mortify/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dispatch is mounted as the NoRoute handler. It answers the four app
// routes of the current slug and passes every other request to the host.
func (h *Handler) Dispatch(c *gin.Context) {
	kind := h.router.Match(c.Request.URL.Path)
	h.metrics.ObserveRoute(kind.String())

	if kind == core.Unmatched || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		h.passThrough(c)
		return
	}

	settings := h.settings.Read(c.Request.Context())
	switch kind {
	case core.AppShell:
		h.serveShell(c, settings)
	case core.Manifest:
		h.serveManifest(c, settings)
	case core.ServiceWorker:
		h.serveServiceWorker(c, settings)
	case core.OfflineFallback:
		h.serveOffline(c)
	}
}

func (h *Handler) serveShell(c *gin.Context, settings models.Settings) {
	ctx := c.Request.Context()
	tabs := core.MergeTabs(ctx, settings.Tabs, h.tabs...)

	data, err := core.BuildShell(h.site, settings, tabs, c.Request.URL.Path, h.cartURL(), core.DefaultPage(settings.AppSlug))
	if err != nil {
		core.LogErrorWithDetail("Shell", "Failed to build app shell", err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.shell.Render(&buf, data); err != nil {
		core.LogErrorWithDetail("Shell", "Failed to render app shell", err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) serveManifest(c *gin.Context, settings models.Settings) {
	body, err := h.pwa.Manifest(settings)
	if err != nil {
		core.LogErrorWithDetail("PWA", "Failed to encode manifest", err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, core.ManifestContentType, body)
}

func (h *Handler) serveServiceWorker(c *gin.Context, settings models.Settings) {
	body, err := h.pwa.ServiceWorkerFor(settings)
	if err != nil {
		core.LogErrorWithDetail("PWA", "Failed to render service worker", err.Error())
		c.Status(http.StatusInternalServerError)
		return
	}
	// Browsers must revalidate the worker so a new cache name is picked up.
	c.Header("Cache-Control", "no-cache")
	c.Header("Service-Worker-Allowed", h.site.AppPath(settings.AppSlug))
	c.Data(http.StatusOK, core.ServiceWorkerContentType, body)
}

func (h *Handler) serveOffline(c *gin.Context) {
	body, err := h.pwa.Offline()
	if err != nil {
		core.LogErrorWithDetail("PWA", "Offline page missing", err.Error())
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, core.OfflineContentType, body)
}

func (h *Handler) passThrough(c *gin.Context) {
	if h.upstream == nil {
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	h.upstream.ServeHTTP(c.Writer, c.Request)
}
