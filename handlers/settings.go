package handlers

import (
	"errors"
	"mortify/core"
	"mortify/models"
	"mortify/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type routeView struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
	Query   string `json:"query"`
}

// GetSettings returns the merged settings
func (h *Handler) GetSettings(c *gin.Context) {
	okV2(c, h.settings.Read(c.Request.Context()))
}

// UpdateSettings sanitizes and stores a settings write, then re-registers
// the routes. Registering an unchanged slug is a no-op. Writes are
// serialized so the router always ends on the stored slug.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req models.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		errV2(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	res, err := h.settings.Write(c.Request.Context(), req)
	if err != nil {
		h.metrics.ObserveSettingsWrite("write", "error")
		h.storeError(c, "Failed to save settings", err)
		return
	}
	h.metrics.ObserveSettingsWrite("write", "ok")

	flushErr := h.registerRoutes(c, res.Settings.AppSlug)
	okV2(c, gin.H{
		"settings":     res.Settings,
		"slug_changed": res.SlugChanged,
		"rejected":     nonNil(res.Rejected),
		"flush_error":  flushErr,
	})
}

// ResetSettings drops the stored settings and routes the default slug
func (h *Handler) ResetSettings(c *gin.Context) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	settings, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		h.metrics.ObserveSettingsWrite("reset", "error")
		h.storeError(c, "Failed to reset settings", err)
		return
	}
	h.metrics.ObserveSettingsWrite("reset", "ok")

	flushErr := h.registerRoutes(c, settings.AppSlug)
	okV2(c, gin.H{
		"settings":    settings,
		"flush_error": flushErr,
	})
}

// GetRoutes lists the installed route table
func (h *Handler) GetRoutes(c *gin.Context) {
	routes := h.router.Routes()
	views := make([]routeView, 0, len(routes))
	for _, route := range routes {
		rule := route.Rule()
		views = append(views, routeView{
			Pattern: rule.Pattern,
			Kind:    route.Kind.String(),
			Query:   rule.Query,
		})
	}
	okV2(c, gin.H{
		"slug":   h.router.Slug(),
		"routes": views,
	})
}

// registerRoutes returns the flush failure message, if any. The new table
// is live either way.
func (h *Handler) registerRoutes(c *gin.Context, slug string) any {
	if _, err := h.router.Register(c.Request.Context(), slug); err != nil {
		core.LogErrorWithDetail("Router", "Failed to flush rewrite rules", err.Error())
		return err.Error()
	}
	return nil
}

func (h *Handler) storeError(c *gin.Context, message string, err error) {
	core.LogErrorWithDetail("Settings", message, err.Error())
	if errors.Is(err, service.ErrStoreUnavailable) {
		errV2(c, http.StatusServiceUnavailable, CodeUnavailable, message, err.Error())
		return
	}
	errV2(c, http.StatusInternalServerError, CodeInternal, message, err.Error())
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
