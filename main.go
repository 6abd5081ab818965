package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"mortify/cli"
	"mortify/commerce"
	"mortify/config"
	"mortify/core"
	"mortify/database"
	"mortify/handlers"
	"mortify/metrics"
	"mortify/service"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

//go:embed static templates
var embeddedFiles embed.FS

func main() {
	// Load environment variables and parse CLI flags
	config.ParseFlags()
	cfg := config.Settings

	// Check if CLI mode is requested
	if cfg.CLIMode {
		log.SetFlags(log.Ldate | log.Ltime)
		mainCLI(cfg)
		return
	}

	logFile, err := setupLogging(cfg.LogFilePath, cfg.LogBackups)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()
	go reopenOnHangup(logFile)

	// Configure log format
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("System starting up...")

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	options := database.NewOptionStore(db)
	flusher := database.NewRewriteFlusher(options)
	services := service.NewServices(options, cfg.HomeURL)

	// Activation: install the routes for the stored slug and flush once
	router := core.NewRouter(flusher)
	ctx := context.Background()
	stored := services.Settings.Read(ctx)
	if err := router.Activate(ctx, stored.AppSlug); err != nil {
		core.LogErrorWithDetail("Router", "Failed to flush routes on activation", err.Error())
		log.Printf("Warning: %v", err)
	}

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create static file system: %v", err)
	}
	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		log.Fatalf("Failed to create template file system: %v", err)
	}

	site := core.Site{
		HomeURL:   cfg.HomeURL,
		AssetsURL: cfg.AssetURL(""),
		AjaxPath:  handlers.AjaxPath,
	}
	shell, err := core.NewTemplateRenderer(templatesFS)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	var upstream http.Handler
	if cfg.UpstreamURL != "" {
		proxy, err := handlers.NewUpstreamProxy(cfg.UpstreamURL)
		if err != nil {
			log.Fatalf("Failed to configure upstream: %v", err)
		}
		upstream = proxy
		log.Printf("Forwarding unmatched requests to %s", cfg.UpstreamURL)
	}

	shutdownChan := make(chan struct{}, 1)
	h := handlers.New(handlers.Options{
		Config:   cfg,
		Site:     site,
		Settings: services.Settings,
		Router:   router,
		PWA:      core.NewPWAResponder(site, staticFS),
		Shell:    shell,
		Commerce: newCommerce(cfg),
		Upstream: upstream,
		Metrics:  metrics.New(flusher.Flushes),
		Ping: func(ctx context.Context) bool {
			return database.Ping(ctx, db)
		},
		Assets:   staticFS,
		Shutdown: shutdownChan,
	})

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Direct Gin logs to the configured log file
	gin.DefaultWriter = log.Writer()
	gin.DefaultErrorWriter = log.Writer()

	// Disable Gin color logs to avoid ANSI issues on Windows terminals
	gin.DisableConsoleColor()

	r := gin.Default()
	h.Mount(r)

	// Find an available port
	port := findAvailablePort(cfg.Port)
	if port != cfg.Port {
		log.Printf("Default port %d is busy. Switched to %d", cfg.Port, port)
	}

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://127.0.0.1:%d", port)
		log.Printf("App shell at: %s", site.URL(site.AppPath(router.Slug())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for OS interrupt or API-triggered shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("Received interrupt signal")
	case <-shutdownChan:
		log.Println("Shutdown triggered via API")
	}

	log.Println("System shutting down...")

	// Gracefully shut down HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	deactivate(shutdownCtx, router, db)

	log.Println("Server exited")
}

// reopenOnHangup reopens the log file on SIGHUP so external rotation works.
func reopenOnHangup(l *rotatingLog) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		if err := l.Reopen(); err != nil {
			log.Printf("Warning: %v", err)
			continue
		}
		log.Println("Log file reopened")
	}
}

// deactivate drops the app routes from the rewrite table and closes the database.
func deactivate(ctx context.Context, router *core.Router, db *gorm.DB) {
	if err := router.Deactivate(ctx); err != nil {
		log.Printf("Error removing routes: %v", err)
	}
	if err := database.Close(db); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// newCommerce picks the cart backend for COMMERCE_MODE. It returns nil when
// commerce is disabled, which makes the cart endpoint answer count 0.
func newCommerce(cfg *config.Config) commerce.Commerce {
	links := commerce.Links{Shop: cfg.ShopURL, Cart: cfg.CartURL, Account: cfg.AccountURL}

	switch cfg.CommerceMode {
	case "memory":
		log.Println("Commerce: in-memory carts")
		return commerce.NewMemoryStore(links)
	case "wcstore":
		if cfg.CommerceURL == "" {
			log.Println("Warning: COMMERCE_MODE=wcstore without COMMERCE_URL, cart counts disabled")
			return nil
		}
		log.Printf("Commerce: Store API at %s", cfg.CommerceURL)
		return commerce.NewStoreAPI(cfg.CommerceURL, links,
			time.Duration(cfg.CommerceTimeoutMS)*time.Millisecond,
			time.Duration(cfg.CommerceCacheSeconds)*time.Second)
	case "", "none":
		return nil
	default:
		log.Printf("Warning: unknown COMMERCE_MODE %q, cart counts disabled", cfg.CommerceMode)
		return nil
	}
}

// findAvailablePort searches for an available port
func findAvailablePort(startPort int) int {
	for port := startPort; port < startPort+100; port++ {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port
		}
	}
	log.Fatal("No available ports found")
	return startPort
}

// mainCLI entrypoint for CLI (HTTP client mode)
func mainCLI(cfg *config.Config) {
	// Server profiles are optional; a broken config file only loses the saved token
	profiles, err := cli.LoadConfig()
	if err != nil {
		fmt.Printf("Warning: could not load CLI config: %v\n", err)
		profiles = nil
	}

	serverURL, token := profiles.Resolve(cfg.CLIServer, cfg.CLIToken)
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	fmt.Printf("Mortify CLI - Connecting to %s\n", serverURL)

	cliInstance, err := cli.NewCLIHttp(serverURL, token, profiles)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("\nTips:")
		fmt.Println("  1. Make sure the Mortify server is running:")
		fmt.Println("     ./mortify")
		fmt.Println("  2. Or specify a different server:")
		fmt.Printf("     ./mortify --cli --server http://your-server:8088\n")
		os.Exit(1)
	}

	// Start CLI loop (readline handles Ctrl+C automatically)
	cliInstance.Start()
}
