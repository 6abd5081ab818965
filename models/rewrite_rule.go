package models

// RewriteRule maps a path pattern (without leading slash) to the query
// variables it resolves to, e.g. "^app/sw\.js$" -> "mortify_sw=1".
type RewriteRule struct {
	Pattern string `json:"pattern"`
	Query   string `json:"query"`
}
