package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"mortify/models"
	"mortify/version"
)

// Content types of the PWA routes.
const (
	ManifestContentType      = "application/manifest+json"
	ServiceWorkerContentType = "application/javascript"
	OfflineContentType       = "text/html; charset=UTF-8"
)

// OfflineFile is the name of the offline page inside the asset filesystem.
const OfflineFile = "offline.html"

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

// PWAResponder builds the manifest, service worker and offline page.
type PWAResponder struct {
	site  Site
	files fs.FS
}

// NewPWAResponder creates a responder reading the offline page from files.
func NewPWAResponder(site Site, files fs.FS) *PWAResponder {
	return &PWAResponder{site: site, files: files}
}

// Icon192 and Icon512 are the fixed manifest icon URLs.
func (p *PWAResponder) Icon192() string { return p.site.Asset("icons/icon-192.png") }
func (p *PWAResponder) Icon512() string { return p.site.Asset("icons/icon-512.png") }

// Manifest renders the web app manifest. Empty fields fall back to the defaults.
func (p *PWAResponder) Manifest(settings models.Settings) ([]byte, error) {
	pwa := settings.PWA
	def := models.DefaultSettings(p.site.HomeURL).PWA
	orDefault := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}

	doc := manifest{
		Name:            orDefault(pwa.Name, def.Name),
		ShortName:       orDefault(pwa.ShortName, def.ShortName),
		StartURL:        orDefault(pwa.StartURL, def.StartURL),
		Display:         orDefault(pwa.Display, def.Display),
		BackgroundColor: orDefault(pwa.BackgroundColor, def.BackgroundColor),
		ThemeColor:      orDefault(pwa.ThemeColor, def.ThemeColor),
		Icons: []manifestIcon{
			{Src: p.Icon192(), Sizes: "192x192", Type: "image/png"},
			{Src: p.Icon512(), Sizes: "512x512", Type: "image/png"},
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// CacheName is the service worker cache for the current build and slug.
func (p *PWAResponder) CacheName(settings models.Settings) string {
	return "mortify-" + version.AssetVersion() + "-" + NormalizeSlug(settings.AppSlug)
}

// CoreAssets is the list the service worker precaches at install.
func (p *PWAResponder) CoreAssets(settings models.Settings) []string {
	slug := settings.AppSlug
	return []string{
		p.site.AppPath(slug),
		p.site.ManifestPath(slug),
		p.site.OfflinePath(slug),
		p.site.VersionedAsset("app.css"),
		p.site.VersionedAsset("app.js"),
	}
}

// ServiceWorkerFor renders the worker script for settings.
func (p *PWAResponder) ServiceWorkerFor(settings models.Settings) ([]byte, error) {
	return RenderServiceWorker(p.CacheName(settings), p.CoreAssets(settings))
}

// Offline returns the offline page verbatim.
func (p *PWAResponder) Offline() ([]byte, error) {
	data, err := fs.ReadFile(p.files, OfflineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read offline page: %w", err)
	}
	return data, nil
}
