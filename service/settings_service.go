package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mortify/core"
	"mortify/models"
	"strings"
)

var ErrStoreUnavailable = errors.New("settings store unavailable")

type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}

// OptionStore is the key-value table the settings blob lives in.
type OptionStore interface {
	GetOption(ctx context.Context, name string) (value string, ok bool, err error)
	SetOption(ctx context.Context, name, value string) error
	DeleteOption(ctx context.Context, name string) error
}

// WriteResult is the outcome of a settings write.
type WriteResult struct {
	Settings    models.Settings `json:"settings"`
	SlugChanged bool            `json:"slug_changed"`
	Rejected    []string        `json:"rejected"` // fields left unchanged because they failed validation
}

// SettingsService reads, sanitizes and persists the app shell settings.
type SettingsService struct {
	store   OptionStore
	homeURL string
}

// NewSettingsService constructs a settings service. store may be nil, in
// which case every read returns the defaults.
func NewSettingsService(store OptionStore, homeURL string) *SettingsService {
	return &SettingsService{store: store, homeURL: strings.TrimRight(homeURL, "/")}
}

// Defaults returns the default settings for this site.
func (s *SettingsService) Defaults() models.Settings {
	return models.DefaultSettings(s.homeURL)
}

// Read returns the stored settings shallow-merged over the defaults: a top
// level key present in the stored object replaces the default value wholly.
// Missing or unreadable data yields the defaults.
func (s *SettingsService) Read(ctx context.Context) models.Settings {
	settings := s.Defaults()
	if s.store == nil {
		return settings
	}

	raw, ok, err := s.store.GetOption(ctx, models.SettingsOptionName)
	if err != nil {
		core.LogWarn("Settings", "Failed to load settings, using defaults", err.Error())
		return settings
	}
	if !ok {
		return settings
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return settings
	}

	if v, ok := fields["app_slug"]; ok {
		var slug string
		if json.Unmarshal(v, &slug) == nil {
			settings.AppSlug = slug
		}
	}
	if v, ok := fields["brand"]; ok {
		var brand models.Brand
		if json.Unmarshal(v, &brand) == nil {
			settings.Brand = brand
		}
	}
	if v, ok := fields["tabs"]; ok {
		var tabs []models.Tab
		if json.Unmarshal(v, &tabs) == nil {
			settings.Tabs = tabs
		}
	}
	if v, ok := fields["pwa"]; ok {
		var pwa models.PWA
		if json.Unmarshal(v, &pwa) == nil {
			settings.PWA = pwa
		}
	}
	return settings
}

// Write applies every recognized and valid field of in on top of the
// current settings and persists the complete record.
func (s *SettingsService) Write(ctx context.Context, in models.SettingsInput) (WriteResult, error) {
	if s.store == nil {
		return WriteResult{}, wrapSentinel("settings store not configured", ErrStoreUnavailable)
	}

	current := s.Read(ctx)
	next := current.Clone()
	var rejected []string
	reject := func(field, value string) {
		rejected = append(rejected, field)
		core.LogWarn("Settings", "Rejected invalid value for "+field, value)
	}

	if in.AppSlug != nil {
		if slug := SanitizeSlug(*in.AppSlug); slug != "" {
			next.AppSlug = slug
		} else {
			reject("app_slug", *in.AppSlug)
		}
	}

	if b := in.Brand; b != nil {
		applyColor(&next.Brand.Primary, b.Primary, "brand.primary", reject)
		applyColor(&next.Brand.Accent, b.Accent, "brand.accent", reject)
		if b.Font != nil {
			next.Brand.Font = SanitizeText(*b.Font)
		}
	}

	if in.Tabs != nil {
		if tabs, ok := sanitizeTabs(in.Tabs); ok {
			next.Tabs = tabs
		} else {
			reject("tabs", "")
		}
	}

	if p := in.PWA; p != nil {
		if p.Name != nil {
			next.PWA.Name = SanitizeText(*p.Name)
		}
		if p.ShortName != nil {
			next.PWA.ShortName = SanitizeText(*p.ShortName)
		}
		applyColor(&next.PWA.ThemeColor, p.ThemeColor, "pwa.theme_color", reject)
		applyColor(&next.PWA.BackgroundColor, p.BackgroundColor, "pwa.background_color", reject)
		if p.Display != nil {
			if d := strings.ToLower(strings.TrimSpace(*p.Display)); ValidDisplay(d) {
				next.PWA.Display = d
			} else {
				reject("pwa.display", *p.Display)
			}
		}
		if p.StartURL != nil {
			if u := strings.TrimSpace(*p.StartURL); ValidLink(u) {
				next.PWA.StartURL = u
			} else {
				reject("pwa.start_url", *p.StartURL)
			}
		}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.store.SetOption(ctx, models.SettingsOptionName, string(data)); err != nil {
		return WriteResult{}, wrapSentinel(fmt.Sprintf("failed to save settings: %v", err), ErrStoreUnavailable)
	}

	return WriteResult{
		Settings:    next,
		SlugChanged: next.AppSlug != current.AppSlug,
		Rejected:    rejected,
	}, nil
}

// Reset removes the stored settings so that Read returns the defaults.
func (s *SettingsService) Reset(ctx context.Context) (models.Settings, error) {
	if s.store == nil {
		return models.Settings{}, wrapSentinel("settings store not configured", ErrStoreUnavailable)
	}
	if err := s.store.DeleteOption(ctx, models.SettingsOptionName); err != nil {
		return models.Settings{}, wrapSentinel(fmt.Sprintf("failed to reset settings: %v", err), ErrStoreUnavailable)
	}
	return s.Defaults(), nil
}

func applyColor(dst *string, value *string, field string, reject func(field, value string)) {
	if value == nil {
		return
	}
	if c := strings.TrimSpace(*value); ValidHexColor(c) {
		*dst = c
		return
	}
	reject(field, *value)
}

// sanitizeTabs cleans labels and icons. A single invalid URL rejects the
// whole list.
func sanitizeTabs(in []models.Tab) ([]models.Tab, bool) {
	out := make([]models.Tab, 0, len(in))
	for _, tab := range in {
		link := strings.TrimSpace(tab.URL)
		if !ValidLink(link) {
			return nil, false
		}
		out = append(out, models.Tab{
			Label: SanitizeText(tab.Label),
			Icon:  SanitizeText(tab.Icon),
			URL:   link,
		})
	}
	return out, true
}
