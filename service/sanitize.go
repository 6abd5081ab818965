package service

import (
	"mortify/models"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	slugInvalidRuns = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRuns    = regexp.MustCompile(`-{2,}`)
	htmlTagPattern  = regexp.MustCompile(`(?s)<[^>]*>`)
)

// SanitizeSlug turns free text into a URL path segment: lowercase ASCII
// letters, digits and single dashes. "Mön Shop!" becomes "mon-shop".
func SanitizeSlug(s string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	slug := strings.ToLower(strings.TrimSpace(stripped))
	slug = slugInvalidRuns.ReplaceAllString(slug, "-")
	slug = slugDashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SanitizeText strips markup and collapses whitespace.
func SanitizeText(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return strings.Join(strings.Fields(s), " ")
}

// displayModes is the validator rule for manifest display modes.
var displayModes = "oneof=" + strings.Join([]string{
	models.DisplayStandalone, models.DisplayFullscreen, models.DisplayMinimalUI, models.DisplayBrowser,
}, " ")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// fieldValidator shares gin's binding engine so request binding and settings
// sanitizing agree on what a URL is.
func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate = v
			return
		}
		validate = validator.New()
	})
	return validate
}

// ValidHexColor accepts #rgb and #rrggbb in either case. The validator's
// hexcolor rule also takes #rgba and #rrggbbaa, which manifests reject.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// ValidLink accepts absolute http(s) URLs with a host and root-relative paths.
func ValidLink(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n\"'<>") {
		return false
	}
	if strings.HasPrefix(raw, "/") {
		if strings.HasPrefix(raw, "//") {
			return false
		}
		raw = "http://localhost" + raw
	}
	return fieldValidator().Var(raw, "http_url") == nil
}

// ValidDisplay reports whether s is a manifest display mode.
func ValidDisplay(s string) bool {
	return fieldValidator().Var(s, displayModes) == nil
}
