package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thewhitelisted/optiq/internal/api/request"
	"github.com/thewhitelisted/optiq/internal/model"
	"github.com/thewhitelisted/optiq/internal/service"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService    *service.PortfolioService
	optimizationService *service.OptimizationService
	defaultDeadline     time.Duration
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, optimizationService *service.OptimizationService, defaultDeadline time.Duration) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:    portfolioService,
		optimizationService: optimizationService,
		defaultDeadline:     defaultDeadline,
	}
}

// Portfolios handles GET requests for all portfolios.
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.portfolioService.ListPortfolios())
}

// GetPortfolio handles GET requests for one portfolio snapshot.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")

	portfolio, err := h.portfolioService.GetPortfolio(id)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve portfolio")
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// CreatePortfolio handles POST requests to create a portfolio.
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(req.Name, req.BookCost, stocksFromPayloads(req.Stocks))
	if err != nil {
		respondServiceError(w, err, "failed to create portfolio")
		return
	}
	respondJSON(w, http.StatusCreated, portfolio)
}

// UpdatePortfolio handles PATCH requests: partial detail updates and optional
// all-or-nothing holding set replacement.
func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")

	var req request.UpdatePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateUpdatePortfolio(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	var stocks *[]model.Stock
	if req.Stocks != nil {
		converted := stocksFromPayloads(*req.Stocks)
		stocks = &converted
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(id, req.Name, req.BookCost, req.CurrentValue, stocks)
	if err != nil {
		respondServiceError(w, err, "failed to update portfolio")
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// AddStock handles POST requests to add a holding.
func (h *PortfolioHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")

	var req request.AddStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateAddStock(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	portfolio, err := h.portfolioService.AddStock(id, model.Stock{
		Ticker:      req.Ticker,
		CompanyName: req.CompanyName,
		Weight:      req.Weight,
	})
	if err != nil {
		respondServiceError(w, err, "failed to add stock")
		return
	}
	respondJSON(w, http.StatusCreated, portfolio)
}

// EditStock handles PUT requests to reweight a holding.
func (h *PortfolioHandler) EditStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")
	ticker := chi.URLParam(r, "ticker")

	var req request.EditStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateEditStock(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	portfolio, err := h.portfolioService.EditStockWeight(id, ticker, *req.Weight)
	if err != nil {
		respondServiceError(w, err, "failed to edit stock")
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// RemoveStock handles DELETE requests to remove a holding.
func (h *PortfolioHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")
	ticker := chi.URLParam(r, "ticker")

	portfolio, err := h.portfolioService.RemoveStock(id, ticker)
	if err != nil {
		respondServiceError(w, err, "failed to remove stock")
		return
	}
	respondJSON(w, http.StatusOK, portfolio)
}

// OptimizePortfolio handles POST requests to run one optimize cycle. The
// request's risk tolerance and weight bounds are validated before any
// collaborator call; a second request while one is in flight gets 409.
func (h *PortfolioHandler) OptimizePortfolio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "portfolioId")

	var req request.OptimizePortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateOptimizeRequest(req); err != nil {
		respondServiceError(w, err, "validation failed")
		return
	}

	constraints := model.Constraints{MinWeight: 0, MaxWeight: 1}
	if req.Constraints.MinWeight != nil {
		constraints.MinWeight = *req.Constraints.MinWeight
	}
	if req.Constraints.MaxWeight != nil {
		constraints.MaxWeight = *req.Constraints.MaxWeight
	}

	deadline := h.defaultDeadline
	if req.TimeoutSeconds != nil {
		deadline = time.Duration(*req.TimeoutSeconds) * time.Second
	}

	outcome, err := h.optimizationService.Optimize(r.Context(), id, *req.RiskTolerance, constraints, deadline)
	if err != nil {
		respondServiceError(w, err, "optimization failed")
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

func stocksFromPayloads(payloads []request.StockPayload) []model.Stock {
	stocks := make([]model.Stock, len(payloads))
	for i, p := range payloads {
		stocks[i] = model.Stock{
			Ticker:      p.Ticker,
			CompanyName: p.CompanyName,
			Weight:      p.Weight,
		}
	}
	return stocks
}
