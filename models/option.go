package models

import "time"

// Option stores one named value of the site's generic key/value options table.
// Plugin-level blobs (settings, compiled rewrite rules) live here instead of
// getting dedicated tables.
type Option struct {
	Name      string    `gorm:"primaryKey;column:option_name;size:191" json:"name"`
	Value     string    `gorm:"type:text;column:option_value" json:"value"`
	Autoload  bool      `gorm:"default:true" json:"autoload"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the options table name stable regardless of naming strategy.
func (Option) TableName() string {
	return "options"
}
