package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thewhitelisted/optiq/internal/api"
	"github.com/thewhitelisted/optiq/internal/config"
	"github.com/thewhitelisted/optiq/internal/database"
	"github.com/thewhitelisted/optiq/internal/jobs"
	"github.com/thewhitelisted/optiq/internal/marketdata"
	"github.com/thewhitelisted/optiq/internal/optimizer"
	"github.com/thewhitelisted/optiq/internal/repository"
	"github.com/thewhitelisted/optiq/internal/search"
	"github.com/thewhitelisted/optiq/internal/secrets"
	"github.com/thewhitelisted/optiq/internal/service"
	"github.com/thewhitelisted/optiq/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Rebuild the in-memory state from persisted portfolios
	portfolioStore := store.New(portfolioRepo)
	persisted, err := portfolioRepo.LoadPortfolios()
	if err != nil {
		log.Fatalf("Failed to load portfolios: %v", err)
	}
	portfolioStore.Seed(persisted)
	log.Printf("Loaded %d portfolios", len(persisted))

	// Market data collaborator
	var marketClient *marketdata.FinanceClient
	if cfg.MarketData.BaseURL != "" {
		marketClient = marketdata.NewFinanceClientWithBaseURL(cfg.MarketData.BaseURL)
	} else {
		marketClient = marketdata.NewFinanceClient()
	}

	// Ticker search index
	searchEngine, err := search.NewEngine(search.SeedUniverse())
	if err != nil {
		log.Fatalf("Failed to build search index: %v", err)
	}
	defer searchEngine.Close()

	// Optimization collaborator
	optimizerClient := optimizer.NewClient(optimizer.NewMeanVariance(marketClient))

	// Create services
	portfolioService := service.NewPortfolioService(portfolioStore, marketClient, searchEngine)
	optimizationService := service.NewOptimizationService(portfolioStore, optimizerClient)
	stockService := service.NewStockService(marketClient, searchEngine)

	var vault *secrets.Vault
	if cfg.Secrets.FernetKey != "" {
		vault, err = secrets.NewVault(cfg.Secrets.FernetKey)
		if err != nil {
			log.Fatalf("Failed to initialize secrets vault: %v", err)
		}
	}
	systemService := service.NewSystemService(db, settingsRepo, vault, marketClient.SetAPIKey)
	if vault != nil {
		loaded, err := systemService.LoadMarketDataAPIKey()
		if err != nil {
			log.Printf("Failed to load market data API key: %v", err)
		} else if loaded {
			log.Println("Market data API key loaded")
		}
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:       systemService,
		Portfolio:    portfolioService,
		Optimization: optimizationService,
		Stock:        stockService,
	}, cfg)

	// Background price refresh
	scheduler := cron.New()
	if cfg.Jobs.PriceRefreshSpec != "" {
		refresher := jobs.NewPriceRefresher(portfolioStore, marketClient)
		_, err := scheduler.AddFunc(cfg.Jobs.PriceRefreshSpec, func() {
			refresher.Run(context.Background())
		})
		if err != nil {
			log.Fatalf("Invalid price refresh schedule %q: %v", cfg.Jobs.PriceRefreshSpec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// Optimize requests block until the optimizer deadline, so the write
		// timeout must outlast it.
		WriteTimeout: cfg.Optimizer.DefaultDeadline + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
