package service

import "strings"

// Services is the service container handed to the HTTP layer
type Services struct {
	Settings *SettingsService
}

// NewServices wires all services against the option store
func NewServices(store OptionStore, homeURL string) *Services {
	return &Services{
		Settings: NewSettingsService(store, strings.TrimRight(homeURL, "/")),
	}
}
