package core

import (
	"context"
	"mortify/models"
)

// TabProvider contributes tabs on top of the user-configured ones.
type TabProvider interface {
	Tabs(ctx context.Context) []models.Tab
}

// MergeTabs returns the user tabs followed by every provider tab whose label
// is not already present. User tabs are kept as entered, duplicates included.
func MergeTabs(ctx context.Context, user []models.Tab, providers ...TabProvider) []models.Tab {
	merged := append([]models.Tab(nil), user...)
	seen := make(map[string]bool, len(merged))
	for _, tab := range merged {
		seen[tab.Label] = true
	}

	for _, p := range providers {
		if p == nil {
			continue
		}
		for _, tab := range p.Tabs(ctx) {
			if seen[tab.Label] {
				continue
			}
			seen[tab.Label] = true
			merged = append(merged, tab)
		}
	}
	return merged
}
