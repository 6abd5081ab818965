package config

import (
	"flag"
	"fmt"
	"mortify/version"
	"os"
	"strconv"
	"strings"
)

// Config holds mortify runtime configuration.
type Config struct {
	LogLevel             string
	LogFilePath          string
	LogBackups           int
	Port                 int
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int
	CLIMode              bool
	CLIServer            string // Server URL for CLI mode
	CLIToken             string // Admin password sent as bearer token in CLI mode

	// Site integration
	HomeURL     string // Public base URL of the site, without trailing slash
	UpstreamURL string // Origin that receives every request outside the app routes
	AssetsPath  string // URL prefix the embedded static assets are served from

	// Commerce integration
	CommerceMode         string // none, memory or wcstore
	CommerceURL          string
	CommerceCacheSeconds int
	CommerceTimeoutMS    int
	ShopURL              string
	CartURL              string
	AccountURL           string

	// Admin API
	AdminPasswordHash string
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		LogFilePath:          getEnv("LOG_FILE", "./mortify.log"),
		LogBackups:           getEnvInt("LOG_BACKUPS", 1),
		Port:                 getEnvInt("PORT", 8088),
		DatabaseURL:          getEnv("DATABASE_URL", "mortify.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),
		CLIMode:              getEnvBool("CLI_MODE", false),
		CLIServer:            getEnv("CLI_SERVER", ""),
		CLIToken:             getEnv("CLI_TOKEN", ""),

		HomeURL:     getEnv("HOME_URL", "http://localhost:8088"),
		UpstreamURL: getEnv("UPSTREAM_URL", ""),
		AssetsPath:  getEnv("ASSETS_PATH", "/_mortify/assets/"),

		CommerceMode:         getEnv("COMMERCE_MODE", "none"),
		CommerceURL:          getEnv("COMMERCE_URL", ""),
		CommerceCacheSeconds: getEnvInt("COMMERCE_CACHE_SECONDS", 5),
		CommerceTimeoutMS:    getEnvInt("COMMERCE_TIMEOUT_MS", 3000),
		ShopURL:              getEnv("SHOP_URL", ""),
		CartURL:              getEnv("CART_URL", ""),
		AccountURL:           getEnv("ACCOUNT_URL", ""),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}
	Settings.Normalize()
}

// Normalize trims trailing slashes from base URLs and fills the commerce
// links that were left empty from HomeURL.
func (c *Config) Normalize() {
	c.HomeURL = strings.TrimRight(strings.TrimSpace(c.HomeURL), "/")
	c.UpstreamURL = strings.TrimRight(strings.TrimSpace(c.UpstreamURL), "/")
	c.CommerceURL = strings.TrimRight(strings.TrimSpace(c.CommerceURL), "/")
	c.CommerceMode = strings.ToLower(strings.TrimSpace(c.CommerceMode))

	if c.AssetsPath == "" {
		c.AssetsPath = "/_mortify/assets/"
	}
	if !strings.HasPrefix(c.AssetsPath, "/") {
		c.AssetsPath = "/" + c.AssetsPath
	}
	if !strings.HasSuffix(c.AssetsPath, "/") {
		c.AssetsPath += "/"
	}

	if c.ShopURL == "" {
		c.ShopURL = c.HomeURL + "/shop/"
	}
	if c.CartURL == "" {
		c.CartURL = c.HomeURL + "/cart/"
	}
	if c.AccountURL == "" {
		c.AccountURL = c.HomeURL + "/my-account/"
	}
}

// AssetURL returns the public URL of an embedded asset.
func (c *Config) AssetURL(name string) string {
	return c.HomeURL + c.AssetsPath + strings.TrimLeft(name, "/")
}

// ParseFlags parses command-line flags and applies any overrides to the package-level Settings.
// It handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Mortify - mobile app shell and PWA layer\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./mortify.log)")
		fmt.Fprintln(out, "  LOG_BACKUPS                       Rotated log files kept on start-up (default 1)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 8088)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default mortify.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_IDLE_SECONDS      SQLite ConnMaxIdleTime in seconds (default 300)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_LIFETIME_SECONDS  SQLite ConnMaxLifetime in seconds (default 0)")
		fmt.Fprintln(out, "  HOME_URL                          Public base URL of the site (default http://localhost:8088)")
		fmt.Fprintln(out, "  UPSTREAM_URL                      Origin receiving requests outside the app routes (default none)")
		fmt.Fprintln(out, "  ASSETS_PATH                       URL prefix for embedded assets (default /_mortify/assets/)")
		fmt.Fprintln(out, "  COMMERCE_MODE                     Cart backend: none, memory, wcstore (default none)")
		fmt.Fprintln(out, "  COMMERCE_URL                      Store API origin for wcstore mode")
		fmt.Fprintln(out, "  COMMERCE_CACHE_SECONDS            Seconds a cart count is reused per session (default 5)")
		fmt.Fprintln(out, "  COMMERCE_TIMEOUT_MS               Store API request timeout in ms (default 3000)")
		fmt.Fprintln(out, "  SHOP_URL, CART_URL, ACCOUNT_URL   Commerce tab targets (default HOME_URL/shop/, /cart/, /my-account/)")
		fmt.Fprintln(out, "  CLI_SERVER, CLI_TOKEN             Server URL and admin password for --cli mode")
		fmt.Fprintln(out, "  ADMIN_PASSWORD_HASH               bcrypt hash guarding settings writes (default loopback only)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteBusyTimeoutMS := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	homeURL := flag.String("home-url", Settings.HomeURL, "Public base URL of the site (overrides HOME_URL)")
	upstreamURL := flag.String("upstream", Settings.UpstreamURL, "Origin for requests outside the app routes (overrides UPSTREAM_URL)")
	commerceMode := flag.String("commerce", Settings.CommerceMode, "Cart backend: none, memory, wcstore (overrides COMMERCE_MODE)")
	commerceURL := flag.String("commerce-url", Settings.CommerceURL, "Store API origin (overrides COMMERCE_URL)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", Settings.CLIServer, "Server URL for CLI mode (default: the CLI config's default server)")
	cliToken := flag.String("token", Settings.CLIToken, "Admin password for CLI mode (overrides CLI_TOKEN)")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.DatabaseURL = *db
	Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
	Settings.SQLiteBusyTimeoutMS = *sqliteBusyTimeoutMS
	Settings.SQLiteJournalMode = *sqliteJournalMode
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.HomeURL = *homeURL
	Settings.UpstreamURL = *upstreamURL
	Settings.CommerceMode = *commerceMode
	Settings.CommerceURL = *commerceURL
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
	Settings.CLIToken = *cliToken

	// Derived links depend on HomeURL, so recompute them from scratch when it moved.
	if *homeURL != "" {
		Settings.ShopURL = getEnv("SHOP_URL", "")
		Settings.CartURL = getEnv("CART_URL", "")
		Settings.AccountURL = getEnv("ACCOUNT_URL", "")
	}
	Settings.Normalize()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
