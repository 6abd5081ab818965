package core

import (
	"encoding/json"
	"mortify/models"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() Site {
	return Site{
		HomeURL:   "https://shop.example",
		AssetsURL: "https://shop.example/_mortify/assets/",
		AjaxPath:  "/ajax",
	}
}

func TestManifest(t *testing.T) {
	p := NewPWAResponder(testSite(), fstest.MapFS{})
	settings := models.DefaultSettings("https://shop.example")
	settings.PWA.Name = "Corner Shop"
	settings.PWA.ShortName = "Corner"
	settings.PWA.ThemeColor = "#111111"

	body, err := p.Manifest(settings)
	require.NoError(t, err)

	var doc struct {
		Name            string `json:"name"`
		ShortName       string `json:"short_name"`
		StartURL        string `json:"start_url"`
		Display         string `json:"display"`
		BackgroundColor string `json:"background_color"`
		ThemeColor      string `json:"theme_color"`
		Icons           []struct {
			Src   string `json:"src"`
			Sizes string `json:"sizes"`
			Type  string `json:"type"`
		} `json:"icons"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))

	assert.Equal(t, "Corner Shop", doc.Name)
	assert.Equal(t, "Corner", doc.ShortName)
	assert.Equal(t, "/app/", doc.StartURL)
	assert.Equal(t, "standalone", doc.Display)
	assert.Equal(t, "#ffffff", doc.BackgroundColor)
	assert.Equal(t, "#111111", doc.ThemeColor)

	require.Len(t, doc.Icons, 2)
	assert.Equal(t, "192x192", doc.Icons[0].Sizes)
	assert.Equal(t, "512x512", doc.Icons[1].Sizes)
	assert.Equal(t, "https://shop.example/_mortify/assets/icons/icon-192.png", doc.Icons[0].Src)
	assert.Equal(t, "https://shop.example/_mortify/assets/icons/icon-512.png", doc.Icons[1].Src)
	for _, icon := range doc.Icons {
		assert.Equal(t, "image/png", icon.Type)
	}

	assert.NotContains(t, string(body), `\/`, "slashes are not escaped")
	assert.Contains(t, string(body), "\n    \"name\"", "pretty printed")
}

func TestManifestEmptyFieldsUseDefaults(t *testing.T) {
	p := NewPWAResponder(testSite(), fstest.MapFS{})

	body, err := p.Manifest(models.Settings{AppSlug: "app"})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Mortify 2026", doc["name"])
	assert.Equal(t, "Mortify", doc["short_name"])
	assert.Equal(t, "standalone", doc["display"])
	assert.Equal(t, "#2563eb", doc["theme_color"])
}

func TestCoreAssetsAndCacheName(t *testing.T) {
	p := NewPWAResponder(testSite(), fstest.MapFS{})
	settings := models.Settings{AppSlug: "store"}

	assets := p.CoreAssets(settings)
	require.Len(t, assets, 5)
	assert.Equal(t, "/store/", assets[0])
	assert.Equal(t, "/store/manifest.webmanifest", assets[1])
	assert.Equal(t, "/store/offline.html", assets[2])
	assert.True(t, strings.HasPrefix(assets[3], "https://shop.example/_mortify/assets/app.css?ver="))
	assert.True(t, strings.HasPrefix(assets[4], "https://shop.example/_mortify/assets/app.js?ver="))

	name := p.CacheName(settings)
	assert.True(t, strings.HasPrefix(name, "mortify-"))
	assert.True(t, strings.HasSuffix(name, "-store"))
	assert.NotEqual(t, name, p.CacheName(models.Settings{AppSlug: "app"}))
}

func TestOffline(t *testing.T) {
	files := fstest.MapFS{OfflineFile: {Data: []byte("<h1>You're offline</h1>")}}
	p := NewPWAResponder(testSite(), files)

	body, err := p.Offline()
	require.NoError(t, err)
	assert.Equal(t, "<h1>You're offline</h1>", string(body))

	_, err = NewPWAResponder(testSite(), fstest.MapFS{}).Offline()
	assert.Error(t, err)
}
