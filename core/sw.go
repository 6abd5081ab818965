package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

var serviceWorkerTemplate = template.Must(template.New("sw.js").Funcs(template.FuncMap{
	"js": func(v any) (string, error) {
		data, err := json.Marshal(v)
		return string(data), err
	},
}).Parse(`// Mortify service worker
const CACHE_NAME = {{ js .CacheName }};
const OFFLINE_URL = {{ js .OfflineURL }};
const CORE_ASSETS = {{ js .CoreAssets }};

// Fetch every core asset first and only then touch the cache, so a single
// failure leaves no partially populated cache behind.
function precache() {
  return Promise.all(CORE_ASSETS.map(url =>
    fetch(url, { cache: 'reload' }).then(response => {
      if (!response || !response.ok) {
        throw new Error('precache failed for ' + url);
      }
      return [url, response];
    })
  )).then(entries =>
    caches.open(CACHE_NAME)
      .then(cache => Promise.all(entries.map(entry => cache.put(entry[0], entry[1]))))
      .catch(err => caches.delete(CACHE_NAME).then(() => { throw err; }))
  );
}

self.addEventListener('install', event => {
  event.waitUntil(precache().then(() => self.skipWaiting()));
});

self.addEventListener('activate', event => {
  event.waitUntil(
    caches.keys()
      .then(keys => Promise.all(keys
        .filter(key => key !== CACHE_NAME)
        .map(key => caches.delete(key))))
      .then(() => self.clients.claim())
  );
});

self.addEventListener('fetch', event => {
  if (event.request.mode !== 'navigate') {
    return;
  }
  event.respondWith(
    fetch(event.request).catch(() => caches.match(OFFLINE_URL))
  );
});
`))

// RenderServiceWorker renders the worker script. The offline fallback is the core
// asset ending in "/offline.html".
func RenderServiceWorker(cacheName string, coreAssets []string) ([]byte, error) {
	if coreAssets == nil {
		coreAssets = []string{}
	}
	offline := ""
	for _, asset := range coreAssets {
		if strings.HasSuffix(asset, "/"+OfflineFile) {
			offline = asset
			break
		}
	}

	var buf bytes.Buffer
	err := serviceWorkerTemplate.Execute(&buf, struct {
		CacheName  string
		OfflineURL string
		CoreAssets []string
	}{cacheName, offline, coreAssets})
	if err != nil {
		return nil, fmt.Errorf("failed to render service worker: %w", err)
	}
	return buf.Bytes(), nil
}
