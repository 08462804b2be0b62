package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thewhitelisted/optiq/internal/api/handlers"
	custommiddleware "github.com/thewhitelisted/optiq/internal/api/middleware"
	"github.com/thewhitelisted/optiq/internal/config"
	"github.com/thewhitelisted/optiq/internal/service"
)

// Services bundles the service layer dependencies of the router.
type Services struct {
	System       *service.SystemService
	Portfolio    *service.PortfolioService
	Optimization *service.OptimizationService
	Stock        *service.StockService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
			r.Get("/settings/market-data-key", systemHandler.MarketDataKeyStatus)
			r.Put("/settings/market-data-key", systemHandler.SetMarketDataKey)
		})

		// Portfolio namespace
		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(
				svc.Portfolio,
				svc.Optimization,
				cfg.Optimizer.DefaultDeadline,
			)
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{portfolioId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidatePortfolioIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Patch("/", portfolioHandler.UpdatePortfolio)
				r.Post("/optimize", portfolioHandler.OptimizePortfolio)

				r.Post("/stock", portfolioHandler.AddStock)
				r.Route("/stock/{ticker}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateTickerMiddleware)
					r.Put("/", portfolioHandler.EditStock)
					r.Delete("/", portfolioHandler.RemoveStock)
				})
			})
		})

		// Stock research namespace
		r.Route("/stock", func(r chi.Router) {
			stockHandler := handlers.NewStockHandler(svc.Stock)
			r.Get("/search", stockHandler.SearchStocks)

			r.Route("/{ticker}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateTickerMiddleware)
				r.Get("/", stockHandler.StockInfo)
				r.Get("/analysis", stockHandler.StockAnalysis)
			})
		})
	})

	return r
}
