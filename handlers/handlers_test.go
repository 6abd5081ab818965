package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mortify/commerce"
	"mortify/config"
	"mortify/core"
	"mortify/metrics"
	"mortify/models"
	"mortify/service"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryOptions struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryOptions) GetOption(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *memoryOptions) SetOption(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *memoryOptions) DeleteOption(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

type countingFlusher struct {
	mu    sync.Mutex
	count int
}

func (f *countingFlusher) FlushRoutes(context.Context, []models.RewriteRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return nil
}

func (f *countingFlusher) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

type fakeCommerce struct {
	count int
	err   error
	boom  bool
	links commerce.Links
}

func (f fakeCommerce) CartCount(context.Context, commerce.Session) (int, error) {
	if f.boom {
		panic("cart backend exploded")
	}
	return f.count, f.err
}

func (f fakeCommerce) Links() commerce.Links { return f.links }

type testServer struct {
	engine   *gin.Engine
	handler  *Handler
	options  *memoryOptions
	flusher  *countingFlusher
	router   *core.Router
	shutdown chan struct{}
}

func newTestServer(t *testing.T, mutate func(*Options)) *testServer {
	t.Helper()

	cfg := *config.Settings
	cfg.HomeURL = "https://shop.example"
	cfg.AssetsPath = "/_mortify/assets/"
	cfg.CartURL = ""
	cfg.AdminPasswordHash = ""
	cfg.CommerceMode = "none"
	cfg.Normalize()

	site := core.Site{HomeURL: cfg.HomeURL, AssetsURL: cfg.AssetURL(""), AjaxPath: AjaxPath}
	opts := &memoryOptions{values: map[string]string{}}
	flusher := &countingFlusher{}
	router := core.NewRouter(flusher)
	require.NoError(t, router.Activate(context.Background(), "app"))

	shell, err := core.NewTemplateRenderer(os.DirFS("../templates"))
	require.NoError(t, err)

	assets := fstest.MapFS{
		core.OfflineFile: {Data: []byte("<h1>You're offline</h1>")},
		"app.css":        {Data: []byte("body{}")},
	}
	shutdown := make(chan struct{}, 1)

	o := Options{
		Config:   &cfg,
		Site:     site,
		Settings: service.NewSettingsService(opts, cfg.HomeURL),
		Router:   router,
		PWA:      core.NewPWAResponder(site, assets),
		Shell:    shell,
		Metrics:  metrics.New(nil),
		Ping:     func(context.Context) bool { return true },
		Assets:   assets,
		Shutdown: shutdown,
	}
	if mutate != nil {
		mutate(&o)
	}

	h := New(o)
	engine := gin.New()
	h.Mount(engine)
	return &testServer{engine: engine, handler: h, options: opts, flusher: flusher, router: router, shutdown: shutdown}
}

func (s *testServer) do(method, target, body string, prepare ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, p := range prepare {
		p(req)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func fromLoopback(req *http.Request) {
	req.RemoteAddr = "127.0.0.1:50000"
}

func decodeV2(t *testing.T, rec *httptest.ResponseRecorder) (ResponseV2, map[string]any) {
	t.Helper()
	var resp ResponseV2
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	data, _ := resp.Data.(map[string]any)
	return resp, data
}
