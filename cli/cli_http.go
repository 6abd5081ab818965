package cli

import (
	"fmt"
	"io"
	"mortify/models"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// CLIHttp is the CLI for HTTP client mode
type CLIHttp struct {
	rl      *readline.Instance
	running bool
	client  *Client
	config  *Config
	out     io.Writer
}

// NewCLIHttp creates a new HTTP client CLI instance. config may be nil, in
// which case the server commands are unavailable.
func NewCLIHttp(serverURL, token string, config *Config) (*CLIHttp, error) {
	client := NewClient(serverURL, token)

	// Test connectivity
	if _, err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:      rl,
		running: true,
		client:  client,
		config:  config,
		out:     os.Stdout,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(c.out, "\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLIHttp) printWelcome() {
	PrintBanner(c.out, "Mortify - CLI Mode (HTTP Client)")
	fmt.Fprintf(c.out, "\nConnected to: %s\n", c.client.baseURL)
	fmt.Fprintln(c.out, "Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "settings", "show":
		c.showSettings()
	case "routes":
		c.showRoutes()
	case "slug":
		c.handleSlugCommand(args)
	case "color":
		c.handleColorCommand(args)
	case "font":
		c.handleFontCommand(args)
	case "pwa":
		c.handlePWACommand(args)
	case "tabs":
		c.listTabs()
	case "tab":
		c.handleTabCommand(args)
	case "reset":
		c.resetSettings()
	case "export":
		c.handleExportCommand(args)
	case "import":
		c.handleImportCommand(args)
	case "health", "status", "st":
		c.showHealth()
	case "logs":
		c.handleLogsCommand(args)
	case "server":
		c.handleServerCommand(args)
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		fmt.Fprintln(c.out, "\nGoodbye!")
		c.running = false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *CLIHttp) showHelp() {
	fmt.Fprintln(c.out)
	PrintBanner(c.out, "Available Commands")
	fmt.Fprintln(c.out)

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"SETTINGS:", ""},
		{"settings", "Show the current settings"},
		{"slug <slug>", "Change the app slug"},
		{"color <primary|accent> <hex>", "Change a brand color"},
		{"font <family>", "Change the brand font"},
		{"pwa <field> <value>", "Change a manifest field (name, short_name, theme, background, display, start_url)"},
		{"reset", "Restore the default settings"},
		{"export <file>", "Save settings to a YAML file"},
		{"import <file>", "Apply settings from a YAML file"},
		{"", ""},
		{"TABS:", ""},
		{"tabs", "List the configured tabs"},
		{"tab add <label> <icon> <url>", "Append a tab"},
		{"tab remove <n>", "Remove the tab at position n"},
		{"", ""},
		{"ROUTING:", ""},
		{"routes", "Show the installed app routes"},
		{"", ""},
		{"SERVERS:", ""},
		{"server list", "List configured servers"},
		{"server use <name>", "Switch to a configured server"},
		{"server add <name> <url> [token]", "Add a server"},
		{"server remove <name>", "Remove a server"},
		{"", ""},
		{"SYSTEM:", ""},
		{"health", "Show server health"},
		{"logs [clear]", "Show or clear recent error logs"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Fprintf(c.out, "  %-34s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *CLIHttp) showSettings() {
	settings, err := c.client.GetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.printSettings(settings)
}

func (c *CLIHttp) printSettings(s *models.Settings) {
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "App slug:     /%s/\n", s.AppSlug)
	fmt.Fprintf(c.out, "Primary:      %s\n", s.Brand.Primary)
	fmt.Fprintf(c.out, "Accent:       %s\n", s.Brand.Accent)
	fmt.Fprintf(c.out, "Font:         %s\n", s.Brand.Font)
	fmt.Fprintf(c.out, "PWA name:     %s (%s)\n", s.PWA.Name, s.PWA.ShortName)
	fmt.Fprintf(c.out, "Theme:        %s on %s\n", s.PWA.ThemeColor, s.PWA.BackgroundColor)
	fmt.Fprintf(c.out, "Display:      %s\n", s.PWA.Display)
	fmt.Fprintf(c.out, "Start URL:    %s\n", s.PWA.StartURL)
	fmt.Fprintf(c.out, "Tabs:         %d\n", len(s.Tabs))
}

func (c *CLIHttp) showRoutes() {
	routes, err := c.client.GetRoutes()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(routes.Routes) == 0 {
		fmt.Fprintln(c.out, "No routes installed.")
		return
	}

	fmt.Fprintf(c.out, "\nRoutes for /%s/:\n", routes.Slug)
	fmt.Fprintf(c.out, "%-16s %-40s %s\n", "KIND", "PATTERN", "QUERY")
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
	for _, r := range routes.Routes {
		fmt.Fprintf(c.out, "%-16s %-40s %s\n", r.Kind, r.Pattern, r.Query)
	}
}

func (c *CLIHttp) handleSlugCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: slug <slug>")
		return
	}
	slug := args[0]
	c.applyUpdate(models.SettingsInput{AppSlug: &slug})
}

func (c *CLIHttp) handleColorCommand(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: color <primary|accent> <hex>")
		return
	}
	value := args[1]
	switch strings.ToLower(args[0]) {
	case "primary":
		c.applyUpdate(models.SettingsInput{Brand: &models.BrandInput{Primary: &value}})
	case "accent":
		c.applyUpdate(models.SettingsInput{Brand: &models.BrandInput{Accent: &value}})
	default:
		fmt.Fprintf(c.out, "Unknown color: %s\n", args[0])
	}
}

func (c *CLIHttp) handleFontCommand(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: font <family>")
		return
	}
	font := strings.Join(args, " ")
	c.applyUpdate(models.SettingsInput{Brand: &models.BrandInput{Font: &font}})
}

func (c *CLIHttp) handlePWACommand(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: pwa <name|short_name|theme|background|display|start_url> <value>")
		return
	}
	value := strings.Join(args[1:], " ")
	pwa := &models.PWAInput{}
	switch strings.ToLower(args[0]) {
	case "name":
		pwa.Name = &value
	case "short_name", "short":
		pwa.ShortName = &value
	case "theme", "theme_color":
		pwa.ThemeColor = &value
	case "background", "background_color":
		pwa.BackgroundColor = &value
	case "display":
		pwa.Display = &value
	case "start_url", "start":
		pwa.StartURL = &value
	default:
		fmt.Fprintf(c.out, "Unknown pwa field: %s\n", args[0])
		return
	}
	c.applyUpdate(models.SettingsInput{PWA: pwa})
}

func (c *CLIHttp) listTabs() {
	settings, err := c.client.GetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(settings.Tabs) == 0 {
		fmt.Fprintln(c.out, "No tabs configured.")
		return
	}

	fmt.Fprintf(c.out, "\n%-4s %-6s %-20s %s\n", "#", "ICON", "LABEL", "URL")
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
	for i, tab := range settings.Tabs {
		fmt.Fprintf(c.out, "%-4d %-6s %-20s %s\n", i+1, tab.Icon, tab.Label, tab.URL)
	}
}

func (c *CLIHttp) handleTabCommand(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: tab <add|remove> [args]")
		return
	}

	switch args[0] {
	case "add":
		if len(args) != 4 {
			fmt.Fprintln(c.out, "Usage: tab add <label> <icon> <url>")
			return
		}
		c.addTab(models.Tab{Label: args[1], Icon: args[2], URL: args[3]})
	case "remove", "rm", "delete", "del":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: tab remove <n>")
			return
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid tab number: %s\n", args[1])
			return
		}
		c.removeTab(n)
	default:
		fmt.Fprintf(c.out, "Unknown tab command: %s\n", args[0])
	}
}

func (c *CLIHttp) addTab(tab models.Tab) {
	settings, err := c.client.GetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	tabs := append(settings.Tabs, tab)
	c.applyUpdate(models.SettingsInput{Tabs: tabs})
}

func (c *CLIHttp) removeTab(n int) {
	settings, err := c.client.GetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if n < 1 || n > len(settings.Tabs) {
		fmt.Fprintf(c.out, "No tab at position %d\n", n)
		return
	}
	tabs := make([]models.Tab, 0, len(settings.Tabs)-1)
	tabs = append(tabs, settings.Tabs[:n-1]...)
	tabs = append(tabs, settings.Tabs[n:]...)
	c.applyUpdate(models.SettingsInput{Tabs: tabs})
}

// applyUpdate sends a write and reports what the server did with it
func (c *CLIHttp) applyUpdate(input models.SettingsInput) {
	result, err := c.client.UpdateSettings(input)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	if len(result.Rejected) > 0 {
		fmt.Fprintf(c.out, "⚠ Rejected: %s\n", strings.Join(result.Rejected, ", "))
	}
	if result.FlushError != nil {
		fmt.Fprintf(c.out, "⚠ Routes not flushed: %s\n", *result.FlushError)
	}
	if result.SlugChanged {
		fmt.Fprintf(c.out, "✓ App now served at /%s/\n", result.Settings.AppSlug)
	}
	fmt.Fprintln(c.out, "✓ Settings saved")
}

func (c *CLIHttp) resetSettings() {
	confirm := c.readInput("Restore default settings? (yes/no)", "no")
	if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
		fmt.Fprintln(c.out, "Cancelled.")
		return
	}

	settings, err := c.client.ResetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "✓ Settings reset to defaults")
	c.printSettings(settings)
}

func (c *CLIHttp) handleExportCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: export <file>")
		return
	}
	settings, err := c.client.GetSettings()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if err := ExportSettings(args[0], *settings); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ Settings exported to %s\n", args[0])
}

func (c *CLIHttp) handleImportCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: import <file>")
		return
	}
	input, err := ImportSettings(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.applyUpdate(input)
}

func (c *CLIHttp) showHealth() {
	health, err := c.client.HealthCheck()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "Status:       %s\n", health.Status)
	fmt.Fprintf(c.out, "Version:      %s\n", health.Version)
	fmt.Fprintf(c.out, "Database:     %s\n", healthWord(health.DBHealthy))
	fmt.Fprintf(c.out, "App slug:     /%s/\n", health.AppSlug)
	fmt.Fprintf(c.out, "Commerce:     %s\n", health.CommerceMode)
	fmt.Fprintf(c.out, "Upstream:     %s\n", healthWord(health.Upstream))
}

func healthWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "-"
}

func (c *CLIHttp) handleLogsCommand(args []string) {
	if len(args) > 0 && args[0] == "clear" {
		if err := c.client.ClearErrorLogs(); err != nil {
			fmt.Fprintf(c.out, "Error clearing logs: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "✓ Error logs cleared")
		return
	}

	logs, err := c.client.GetErrorLogs()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(logs) == 0 {
		fmt.Fprintln(c.out, "No error logs.")
		return
	}

	for _, entry := range logs {
		fmt.Fprintf(c.out, "[%d] %s %-5s %-10s %s\n",
			entry.ID, entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Level, entry.Source, entry.Message)
	}
}

func (c *CLIHttp) handleServerCommand(args []string) {
	if c.config == nil {
		fmt.Fprintln(c.out, "Server profiles are unavailable (no CLI config loaded)")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(c.out, "Usage: server <list|use|add|remove> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		for name, srv := range c.config.ListServers() {
			marker := " "
			if name == c.config.DefaultServer {
				marker = "*"
			}
			fmt.Fprintf(c.out, "%s %-12s %-32s %s\n", marker, name, srv.URL, srv.Description)
		}
	case "use":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: server use <name>")
			return
		}
		srv, err := c.config.GetServer(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		client := NewClient(srv.URL, srv.Token)
		if _, err := client.HealthCheck(); err != nil {
			fmt.Fprintf(c.out, "Cannot connect to %s: %v\n", srv.URL, err)
			return
		}
		c.client = client
		if err := c.config.SetDefault(args[1]); err != nil {
			fmt.Fprintf(c.out, "⚠ Could not save default server: %v\n", err)
		}
		fmt.Fprintf(c.out, "✓ Connected to %s\n", srv.URL)
	case "add":
		if len(args) < 3 || len(args) > 4 {
			fmt.Fprintln(c.out, "Usage: server add <name> <url> [token]")
			return
		}
		token := ""
		if len(args) == 4 {
			token = args[3]
		}
		if err := c.config.AddServer(args[1], args[2], "", token); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "✓ Server %s added\n", args[1])
	case "remove", "rm", "delete", "del":
		if len(args) != 2 {
			fmt.Fprintln(c.out, "Usage: server remove <name>")
			return
		}
		if err := c.config.RemoveServer(args[1]); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(c.out, "✓ Server %s removed\n", args[1])
	default:
		fmt.Fprintf(c.out, "Unknown server command: %s\n", args[0])
	}
}

// clearScreen clears the console
func (c *CLIHttp) clearScreen() {
	fmt.Fprint(c.out, "\033[H\033[2J")
}

// readInput reads user input with an optional default
func (c *CLIHttp) readInput(prompt, defaultValue string) string {
	if c.rl == nil {
		return defaultValue
	}
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	}

	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ") // Restore default prompt

	if err != nil {
		return defaultValue
	}

	input := strings.TrimSpace(line)
	if input == "" && defaultValue != "" {
		return defaultValue
	}
	return input
}
