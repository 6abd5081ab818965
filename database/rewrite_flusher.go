package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mortify/models"
	"sync/atomic"
)

// RewriteRulesOptionName holds the compiled rewrite rules written by each flush.
const RewriteRulesOptionName = "mortify_rewrite_rules"

// RewriteFlusher persists the compiled route table into the options table.
// Rebuilding that row is the expensive step that must only run on activation
// and slug changes.
type RewriteFlusher struct {
	store   *OptionStore
	flushes atomic.Uint64
}

// NewRewriteFlusher creates a flusher writing through store.
func NewRewriteFlusher(store *OptionStore) *RewriteFlusher {
	return &RewriteFlusher{store: store}
}

// FlushRoutes replaces the stored rule set with rules.
func (f *RewriteFlusher) FlushRoutes(ctx context.Context, rules []models.RewriteRule) error {
	if rules == nil {
		rules = []models.RewriteRule{}
	}
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rewrite rules: %w", err)
	}
	if err := f.store.SetOption(ctx, RewriteRulesOptionName, string(data)); err != nil {
		return fmt.Errorf("failed to store rewrite rules: %w", err)
	}
	n := f.flushes.Add(1)
	log.Printf("Rewrite rules flushed (%d rules, flush #%d)", len(rules), n)
	return nil
}

// StoredRules returns the rule set written by the last flush.
func (f *RewriteFlusher) StoredRules(ctx context.Context) ([]models.RewriteRule, error) {
	raw, ok, err := f.store.GetOption(ctx, RewriteRulesOptionName)
	if err != nil || !ok {
		return nil, err
	}
	var rules []models.RewriteRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rewrite rules: %w", err)
	}
	return rules, nil
}

// Flushes returns how many flushes ran since startup.
func (f *RewriteFlusher) Flushes() uint64 {
	return f.flushes.Load()
}
