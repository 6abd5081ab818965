package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig server configuration
type ServerConfig struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Token       string `yaml:"token,omitempty"`
}

// Config CLI configuration
type Config struct {
	DefaultServer string                  `yaml:"default_server"`
	Servers       map[string]ServerConfig `yaml:"servers"`
	configPath    string
}

// getConfigPath gets the configuration file path
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".mortify")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads the configuration from ~/.mortify/config.yaml
func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration at configPath, writing a default
// one when the file does not exist yet
func LoadConfigFrom(configPath string) (*Config, error) {
	config := &Config{
		configPath: configPath,
		Servers:    make(map[string]ServerConfig),
	}

	// If config file doesn't exist, create default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.DefaultServer = "local"
		config.Servers["local"] = ServerConfig{
			URL:         "http://localhost:8088",
			Description: "Local Mortify service",
		}
		if err := config.Save(); err != nil {
			return nil, err
		}
		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %v", configPath, err)
	}
	if config.Servers == nil {
		config.Servers = make(map[string]ServerConfig)
	}

	config.configPath = configPath
	return config, nil
}

// Save saves the configuration
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// AddServer adds a server. token is the admin password sent as a bearer token.
func (c *Config) AddServer(name, url, description, token string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if url == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	c.Servers[name] = ServerConfig{
		URL:         strings.TrimRight(url, "/"),
		Description: description,
		Token:       token,
	}

	// If this is the first server, set it as default
	if c.DefaultServer == "" {
		c.DefaultServer = name
	}

	return c.Save()
}

// Resolve picks the server to talk to. An explicit serverURL wins over the
// default profile; the token comes from the profile with a matching URL
// unless one is given.
func (c *Config) Resolve(serverURL, token string) (string, string) {
	serverURL = strings.TrimRight(serverURL, "/")
	if c == nil {
		return serverURL, token
	}
	if serverURL == "" {
		if srv, err := c.GetDefaultServer(); err == nil {
			serverURL = strings.TrimRight(srv.URL, "/")
		}
	}
	if token == "" {
		if srv, ok := c.Servers[c.DefaultServer]; ok && strings.TrimRight(srv.URL, "/") == serverURL {
			return serverURL, srv.Token
		}
		for _, srv := range c.Servers {
			if strings.TrimRight(srv.URL, "/") == serverURL {
				token = srv.Token
				break
			}
		}
	}
	return serverURL, token
}

// RemoveServer removes a server
func (c *Config) RemoveServer(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	delete(c.Servers, name)

	// If the deleted server was the default, select another as default
	if c.DefaultServer == name {
		c.DefaultServer = ""
		for serverName := range c.Servers {
			c.DefaultServer = serverName
			break
		}
	}

	return c.Save()
}

// SetDefault sets the default server
func (c *Config) SetDefault(name string) error {
	if _, exists := c.Servers[name]; !exists {
		return fmt.Errorf("server '%s' not found", name)
	}

	c.DefaultServer = name
	return c.Save()
}

// GetServer gets server configuration
func (c *Config) GetServer(name string) (*ServerConfig, error) {
	if name == "" {
		name = c.DefaultServer
	}

	server, exists := c.Servers[name]
	if !exists {
		return nil, fmt.Errorf("server '%s' not found", name)
	}

	return &server, nil
}

// GetDefaultServer gets the default server configuration
func (c *Config) GetDefaultServer() (*ServerConfig, error) {
	return c.GetServer(c.DefaultServer)
}

// ListServers lists all servers
func (c *Config) ListServers() map[string]ServerConfig {
	return c.Servers
}
