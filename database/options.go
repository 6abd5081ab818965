package database

import (
	"context"
	"errors"
	"mortify/models"
	"strings"

	"gorm.io/gorm"
)

var errNoDatabase = errors.New("database not initialized")

// OptionStore reads and writes rows of the options table.
type OptionStore struct {
	db *gorm.DB
}

// NewOptionStore wraps an opened database.
func NewOptionStore(db *gorm.DB) *OptionStore {
	return &OptionStore{db: db}
}

// GetOption returns a persisted option value.
// ok is false when the option does not exist.
func (s *OptionStore) GetOption(ctx context.Context, name string) (value string, ok bool, err error) {
	if s == nil || s.db == nil {
		return "", false, errNoDatabase
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, errors.New("empty option name")
	}

	var opt models.Option
	if err := s.db.WithContext(ctx).First(&opt, "option_name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return opt.Value, true, nil
}

// SetOption creates or replaces an option. A single row write is atomic in SQLite.
func (s *OptionStore) SetOption(ctx context.Context, name, value string) error {
	if s == nil || s.db == nil {
		return errNoDatabase
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty option name")
	}

	return s.db.WithContext(ctx).Save(&models.Option{Name: name, Value: value, Autoload: true}).Error
}

// DeleteOption removes an option if it exists.
func (s *OptionStore) DeleteOption(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return errNoDatabase
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty option name")
	}

	return s.db.WithContext(ctx).Where("option_name = ?", name).Delete(&models.Option{}).Error
}
