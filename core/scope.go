package core

import "strings"

// InAppScope reports whether the request path lies under the app slug.
// It is a strict prefix test on the path: "/app" and "/app/..." match,
// "/blog/app/" or "/?p=/app/" do not. Any query string is ignored.
func InAppScope(path, slug string) bool {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return false
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	prefix := "/" + slug
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// ClientData is exposed to the app script as window.mortifyApp.
type ClientData struct {
	AjaxURL string `json:"ajax_url"`
	HomeURL string `json:"home_url"`
	CartAPI string `json:"cart_api"`
	SWURL   string `json:"sw_url"`
	AppPath string `json:"app_path"`
}

// Enqueued lists what the shell must load for a request.
type Enqueued struct {
	Styles  []string
	Scripts []string
	Data    *ClientData
}

// AssetsFor returns the app stylesheet, script and client data, but only
// for paths inside the app scope. Outside of it the result is empty.
func AssetsFor(path, slug string, site Site) Enqueued {
	if !InAppScope(path, slug) {
		return Enqueued{}
	}
	return Enqueued{
		Styles:  []string{site.VersionedAsset("app.css")},
		Scripts: []string{site.VersionedAsset("app.js")},
		Data: &ClientData{
			AjaxURL: site.URL(site.AjaxPath),
			HomeURL: site.HomeURL,
			CartAPI: site.URL("/wp-json/wc/store/cart"),
			SWURL:   site.URL(site.ServiceWorkerPath(slug)),
			AppPath: site.AppPath(slug),
		},
	}
}
