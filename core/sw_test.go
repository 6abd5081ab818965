package core

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workerEnv stands in for the browser: a cache storage keyed by cache name,
// a network that can be switched off per URL and an event dispatcher that
// records what the worker handed to waitUntil and respondWith.
const workerEnv = `
var listeners = {};
var store = {};
var failing = {};
var networkUp = true;
var skipped = false;
var claimed = false;
var outcome = {};

var self = {
  addEventListener: function (type, fn) { listeners[type] = fn; },
  skipWaiting: function () { skipped = true; return Promise.resolve(); },
  clients: { claim: function () { claimed = true; return Promise.resolve(); } }
};

var caches = {
  open: function (name) {
    if (!store[name]) { store[name] = {}; }
    var entries = store[name];
    return Promise.resolve({
      put: function (url, response) { entries[url] = response; return Promise.resolve(); }
    });
  },
  keys: function () { return Promise.resolve(Object.keys(store)); },
  "delete": function (name) {
    var existed = Object.prototype.hasOwnProperty.call(store, name);
    delete store[name];
    return Promise.resolve(existed);
  },
  match: function (url) {
    for (var name in store) {
      if (store[name][url]) { return Promise.resolve(store[name][url]); }
    }
    return Promise.resolve(undefined);
  }
};

function fetch(request) {
  var url = typeof request === 'string' ? request : request.url;
  if (!networkUp || failing[url]) {
    return Promise.reject(new TypeError('network error for ' + url));
  }
  return Promise.resolve({ ok: true, url: url });
}

function dispatch(type, event) {
  var ev = event || {};
  ev.waitUntil = function (p) {
    outcome[type] = 'pending';
    p.then(function () { outcome[type] = 'ok'; }, function (err) { outcome[type] = 'failed: ' + err.message; });
  };
  ev.respondWith = function (p) {
    outcome.responded = true;
    p.then(function (response) { outcome.response = response; });
  };
  listeners[type](ev);
}
`

func newWorker(t *testing.T, cacheName string, assets []string, setup string) *goja.Runtime {
	t.Helper()

	script, err := RenderServiceWorker(cacheName, assets)
	require.NoError(t, err)

	vm := goja.New()
	_, err = vm.RunString(workerEnv)
	require.NoError(t, err)
	if setup != "" {
		_, err = vm.RunString(setup)
		require.NoError(t, err)
	}
	_, err = vm.RunString(string(script))
	require.NoError(t, err, "generated service worker must be valid JavaScript")
	return vm
}

// eval runs expr and returns its JSON form. Pending promise jobs have been
// drained by the time RunString returns.
func eval(t *testing.T, vm *goja.Runtime, expr string) string {
	t.Helper()
	v, err := vm.RunString("JSON.stringify(" + expr + ")")
	require.NoError(t, err)
	if goja.IsUndefined(v) {
		return "undefined"
	}
	return v.String()
}

func run(t *testing.T, vm *goja.Runtime, code string) {
	t.Helper()
	_, err := vm.RunString(code)
	require.NoError(t, err)
}

func TestServiceWorkerInterpolation(t *testing.T) {
	script, err := RenderServiceWorker("mortify-1.0.0-app", []string{"/app/", "/app/offline.html", `/x"y.js`})
	require.NoError(t, err)
	body := string(script)

	assert.Contains(t, body, `const CACHE_NAME = "mortify-1.0.0-app";`)
	assert.Contains(t, body, `const OFFLINE_URL = "/app/offline.html";`)
	assert.Contains(t, body, `const CORE_ASSETS = ["/app/","/app/offline.html","/x\"y.js"];`)
}

func TestServiceWorkerWithoutOfflineAsset(t *testing.T) {
	script, err := RenderServiceWorker("c", nil)
	require.NoError(t, err)
	assert.Contains(t, string(script), `const OFFLINE_URL = "";`)
	assert.Contains(t, string(script), `const CORE_ASSETS = [];`)
}

func TestServiceWorkerInstallCachesEveryAsset(t *testing.T) {
	assets := []string{"/app/", "/app/offline.html", "/assets/app.js"}
	vm := newWorker(t, "v2", assets, "")

	run(t, vm, "dispatch('install')")

	assert.Equal(t, `"ok"`, eval(t, vm, "outcome.install"))
	assert.Equal(t, `["v2"]`, eval(t, vm, "Object.keys(store)"))
	assert.Equal(t, `["/app/","/app/offline.html","/assets/app.js"]`, eval(t, vm, "Object.keys(store.v2)"))
	assert.Equal(t, "true", eval(t, vm, "skipped"))
}

func TestServiceWorkerInstallIsAllOrNothing(t *testing.T) {
	assets := []string{"/a", "/b", "/c"}
	vm := newWorker(t, "v2", assets, "failing['/b'] = true;")

	run(t, vm, "dispatch('install')")

	outcome := eval(t, vm, "outcome.install")
	assert.True(t, strings.HasPrefix(outcome, `"failed: `), "install must fail, got %s", outcome)
	assert.Equal(t, `[]`, eval(t, vm, "Object.keys(store)"), "no cache may be left behind")
	assert.Equal(t, "false", eval(t, vm, "skipped"))
}

func TestServiceWorkerInstallDropsCacheWhenPutFails(t *testing.T) {
	setup := `
var realOpen = caches.open;
caches.open = function (name) {
  return realOpen(name).then(function () {
    return { put: function () { return Promise.reject(new Error('quota exceeded')); } };
  });
};`
	vm := newWorker(t, "v2", []string{"/a"}, setup)

	run(t, vm, "dispatch('install')")

	assert.Equal(t, `"failed: quota exceeded"`, eval(t, vm, "outcome.install"))
	assert.Equal(t, `[]`, eval(t, vm, "Object.keys(store)"))
}

func TestServiceWorkerActivateDeletesStaleCaches(t *testing.T) {
	vm := newWorker(t, "v2", []string{"/a"}, "store.v1 = {}; store.v2 = {}; store.other = {};")

	run(t, vm, "dispatch('activate')")

	assert.Equal(t, `"ok"`, eval(t, vm, "outcome.activate"))
	assert.Equal(t, `["v2"]`, eval(t, vm, "Object.keys(store)"))
	assert.Equal(t, "true", eval(t, vm, "claimed"))
}

func TestServiceWorkerNavigationFallsBackOffline(t *testing.T) {
	setup := `store.v2 = { '/app/offline.html': { offline: true } }; networkUp = false;`
	vm := newWorker(t, "v2", []string{"/app/", "/app/offline.html"}, setup)

	run(t, vm, "dispatch('fetch', { request: { mode: 'navigate', url: '/app/orders/' } })")

	assert.Equal(t, "true", eval(t, vm, "outcome.responded"))
	assert.Equal(t, `{"offline":true}`, eval(t, vm, "outcome.response"))
}

func TestServiceWorkerNavigationOnline(t *testing.T) {
	vm := newWorker(t, "v2", []string{"/app/offline.html"}, "")

	run(t, vm, "dispatch('fetch', { request: { mode: 'navigate', url: '/app/orders/' } })")

	assert.Equal(t, `{"ok":true,"url":"/app/orders/"}`, eval(t, vm, "outcome.response"))
}

func TestServiceWorkerIgnoresSubresources(t *testing.T) {
	vm := newWorker(t, "v2", []string{"/app/offline.html"}, "networkUp = false;")

	run(t, vm, "dispatch('fetch', { request: { mode: 'no-cors', url: '/img/logo.png' } })")

	assert.Equal(t, "undefined", eval(t, vm, "outcome.responded"))
}
