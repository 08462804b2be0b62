package handlers

import (
	"net/http"
	"strings"

	"github.com/thewhitelisted/optiq/internal/api/request"
	"github.com/thewhitelisted/optiq/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// Health handles GET requests for service health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"detail": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Version handles GET requests for the build version
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": h.systemService.CheckVersion(),
	})
}

// MarketDataKeyStatus handles GET requests for whether a market data API key
// is configured. The key itself is never returned.
func (h *SystemHandler) MarketDataKeyStatus(w http.ResponseWriter, r *http.Request) {
	configured, err := h.systemService.MarketDataKeyConfigured()
	if err != nil {
		respondServiceError(w, err, "failed to read key status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"configured": configured})
}

// SetMarketDataKey handles PUT requests to store the market data API key.
func (h *SystemHandler) SetMarketDataKey(w http.ResponseWriter, r *http.Request) {
	var req request.SetMarketDataKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "apiKey must not be empty",
		})
		return
	}

	if err := h.systemService.SetMarketDataAPIKey(req.APIKey); err != nil {
		respondServiceError(w, err, "failed to store key")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}
