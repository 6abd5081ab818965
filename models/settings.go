package models

// SettingsOptionName is the option row holding the persisted settings blob.
const SettingsOptionName = "mortify_settings"

// Display values accepted for the web app manifest.
const (
	DisplayStandalone = "standalone"
	DisplayFullscreen = "fullscreen"
	DisplayMinimalUI  = "minimal-ui"
	DisplayBrowser    = "browser"
)

// Settings is the app shell configuration, stored as a single JSON blob.
type Settings struct {
	AppSlug string `json:"app_slug" yaml:"app_slug"`
	Brand   Brand  `json:"brand" yaml:"brand"`
	Tabs    []Tab  `json:"tabs" yaml:"tabs"`
	PWA     PWA    `json:"pwa" yaml:"pwa"`
}

// Brand holds the colors and font used by the shell.
type Brand struct {
	Primary string `json:"primary" yaml:"primary"`
	Accent  string `json:"accent" yaml:"accent"`
	Font    string `json:"font" yaml:"font"`
}

// Tab is one entry of the bottom navigation.
type Tab struct {
	Label string `json:"label" yaml:"label"`
	Icon  string `json:"icon" yaml:"icon"`
	URL   string `json:"url" yaml:"url"`
}

// PWA holds the web app manifest fields.
type PWA struct {
	Name            string `json:"name" yaml:"name"`
	ShortName       string `json:"short_name" yaml:"short_name"`
	ThemeColor      string `json:"theme_color" yaml:"theme_color"`
	BackgroundColor string `json:"background_color" yaml:"background_color"`
	Display         string `json:"display" yaml:"display"`
	StartURL        string `json:"start_url" yaml:"start_url"`
}

// DefaultSettings returns the default structure. homeURL is the site base
// URL without a trailing slash and feeds the default Home tab.
func DefaultSettings(homeURL string) Settings {
	return Settings{
		AppSlug: "app",
		Brand: Brand{
			Primary: "#2563eb",
			Accent:  "#10b981",
			Font:    "system-ui",
		},
		Tabs: []Tab{
			{Label: "Home", Icon: "🏠", URL: homeURL + "/"},
		},
		PWA: PWA{
			Name:            "Mortify 2026",
			ShortName:       "Mortify",
			ThemeColor:      "#2563eb",
			BackgroundColor: "#ffffff",
			Display:         DisplayStandalone,
			StartURL:        "/app/",
		},
	}
}

// Clone returns a copy that does not share the Tabs backing array.
func (s Settings) Clone() Settings {
	out := s
	if s.Tabs != nil {
		out.Tabs = append([]Tab(nil), s.Tabs...)
	}
	return out
}

// BrandInput is the partial brand payload of a settings write.
type BrandInput struct {
	Primary *string `json:"primary" yaml:"primary"`
	Accent  *string `json:"accent" yaml:"accent"`
	Font    *string `json:"font" yaml:"font"`
}

// PWAInput is the partial manifest payload of a settings write.
type PWAInput struct {
	Name            *string `json:"name" yaml:"name"`
	ShortName       *string `json:"short_name" yaml:"short_name"`
	ThemeColor      *string `json:"theme_color" yaml:"theme_color"`
	BackgroundColor *string `json:"background_color" yaml:"background_color"`
	Display         *string `json:"display" yaml:"display"`
	StartURL        *string `json:"start_url" yaml:"start_url"`
}

// SettingsInput is a settings write request. Nil fields are left untouched.
type SettingsInput struct {
	AppSlug *string     `json:"app_slug" yaml:"app_slug"`
	Brand   *BrandInput `json:"brand" yaml:"brand"`
	Tabs    []Tab       `json:"tabs" yaml:"tabs"`
	PWA     *PWAInput   `json:"pwa" yaml:"pwa"`
}

// InputFromSettings converts a full record into a write request touching every field.
func InputFromSettings(s Settings) SettingsInput {
	tabs := s.Tabs
	if tabs == nil {
		tabs = []Tab{}
	}
	return SettingsInput{
		AppSlug: &s.AppSlug,
		Brand: &BrandInput{
			Primary: &s.Brand.Primary,
			Accent:  &s.Brand.Accent,
			Font:    &s.Brand.Font,
		},
		Tabs: tabs,
		PWA: &PWAInput{
			Name:            &s.PWA.Name,
			ShortName:       &s.PWA.ShortName,
			ThemeColor:      &s.PWA.ThemeColor,
			BackgroundColor: &s.PWA.BackgroundColor,
			Display:         &s.PWA.Display,
			StartURL:        &s.PWA.StartURL,
		},
	}
}
