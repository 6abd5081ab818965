package core

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mortify/models"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ShellRenderer writes the app shell page.
type ShellRenderer interface {
	Render(w io.Writer, data ShellData) error
}

// TabView is a tab plus its highlight state for the current request.
type TabView struct {
	models.Tab
	Active bool
}

// Page is the content placed into the shell's main area.
type Page struct {
	Title   string
	Content template.HTML
}

// ShellData is everything the shell templates render from.
type ShellData struct {
	Lang             string
	Title            string
	Brand            models.Brand
	PWA              models.PWA
	Tabs             []TabView
	ManifestURL      string
	ServiceWorkerURL string
	IconURL          string
	CartURL          string
	Styles           []string
	Scripts          []string
	AppData          template.JS
	Content          template.HTML
	ShowBack         bool
}

// DefaultPage is shown when no content source supplies one.
func DefaultPage(slug string) Page {
	return Page{
		Title:   ucfirst(NormalizeSlug(slug)),
		Content: template.HTML("<p>This is the Mortify 2026 app shell.</p>"),
	}
}

// BuildShell assembles the template data for a request to path. tabs must
// already include provider tabs.
func BuildShell(site Site, settings models.Settings, tabs []models.Tab, path, cartURL string, page Page) (ShellData, error) {
	slug := NormalizeSlug(settings.AppSlug)
	enqueued := AssetsFor(path, slug, site)

	appData := []byte("{}")
	if enqueued.Data != nil {
		var err error
		if appData, err = json.Marshal(enqueued.Data); err != nil {
			return ShellData{}, fmt.Errorf("failed to encode client data: %w", err)
		}
	}

	current := trailingSlash(site.URL(path))
	views := make([]TabView, 0, len(tabs))
	for _, tab := range tabs {
		views = append(views, TabView{
			Tab:    tab,
			Active: tab.URL != "" && strings.HasPrefix(current, trailingSlash(tab.URL)),
		})
	}

	trimmed := strings.TrimRight(path, "/")
	return ShellData{
		Lang:             "en",
		Title:            page.Title,
		Brand:            settings.Brand,
		PWA:              settings.PWA,
		Tabs:             views,
		ManifestURL:      site.URL(site.ManifestPath(slug)),
		ServiceWorkerURL: site.URL(site.ServiceWorkerPath(slug)),
		IconURL:          site.Asset("icons/icon-192.png"),
		CartURL:          cartURL,
		Styles:           enqueued.Styles,
		Scripts:          enqueued.Scripts,
		AppData:          template.JS(appData),
		Content:          page.Content,
		ShowBack:         !strings.HasSuffix(trimmed, "/"+slug),
	}, nil
}

// TemplateRenderer renders shell.html and its partials from a filesystem.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses every *.html file at the root of files.
func NewTemplateRenderer(files fs.FS) (*TemplateRenderer, error) {
	tmpl, err := template.New("shell").ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse shell templates: %w", err)
	}
	if tmpl.Lookup("shell.html") == nil {
		return nil, fmt.Errorf("shell.html template not found")
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes shell.html.
func (r *TemplateRenderer) Render(w io.Writer, data ShellData) error {
	return r.tmpl.ExecuteTemplate(w, "shell.html", data)
}

func trailingSlash(s string) string {
	return strings.TrimRight(s, "/") + "/"
}

func ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
