package core

import (
	"mortify/version"
	"net/url"
	"strings"
)

// Site describes where the app lives on the public host.
type Site struct {
	HomeURL   string // base URL without trailing slash
	AssetsURL string // absolute URL prefix of the embedded assets, with trailing slash
	AjaxPath  string // path of the AJAX endpoint
}

// NormalizeSlug trims surrounding slashes and whitespace.
func NormalizeSlug(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}

// AppPath is the app shell root, e.g. "/app/".
func (s Site) AppPath(slug string) string {
	return "/" + NormalizeSlug(slug) + "/"
}

// ManifestPath is the web app manifest path.
func (s Site) ManifestPath(slug string) string {
	return s.AppPath(slug) + "manifest.webmanifest"
}

// ServiceWorkerPath is the service worker script path.
func (s Site) ServiceWorkerPath(slug string) string {
	return s.AppPath(slug) + "sw.js"
}

// OfflinePath is the offline fallback page path.
func (s Site) OfflinePath(slug string) string {
	return s.AppPath(slug) + "offline.html"
}

// URL joins a root-relative path onto HomeURL.
func (s Site) URL(path string) string {
	return s.HomeURL + "/" + strings.TrimLeft(path, "/")
}

// Asset returns the absolute URL of an embedded asset.
func (s Site) Asset(name string) string {
	return s.AssetsURL + strings.TrimLeft(name, "/")
}

// VersionedAsset appends the build version so browsers and the service
// worker cache refetch after an upgrade.
func (s Site) VersionedAsset(name string) string {
	return s.Asset(name) + "?ver=" + url.QueryEscape(version.AssetVersion())
}
