package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thewhitelisted/optiq/internal/service"
)

const defaultSearchLimit = 10

// StockHandler handles stock research HTTP requests
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// StockInfo handles GET requests for a single quote.
func (h *StockHandler) StockInfo(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	quote, err := h.stockService.GetStockInfo(r.Context(), ticker)
	if err != nil {
		respondServiceError(w, err, "failed to retrieve stock info")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// StockAnalysis handles GET requests for price history and risk metrics.
func (h *StockHandler) StockAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	analysis, err := h.stockService.GetStockAnalysis(r.Context(), ticker)
	if err != nil {
		respondServiceError(w, err, "failed to analyze stock")
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// SearchStocks handles GET requests against the listing index. The query
// comes from the "q" parameter, an optional "limit" caps the result count.
func (h *StockHandler) SearchStocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "missing query parameter q",
		})
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	listings, err := h.stockService.SearchStocks(query, limit)
	if err != nil {
		respondServiceError(w, err, "search failed")
		return
	}
	respondJSON(w, http.StatusOK, listings)
}
