// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/thewhitelisted/optiq/internal/api/response"
	"github.com/thewhitelisted/optiq/internal/validation"
)

// ValidatePortfolioIDMiddleware validates that the portfolioId URL parameter
// is present and a valid UUID. Returns 400 Bad Request otherwise. Applied to
// every route with a portfolio ID in the path.
//
// Example usage in router:
//
//	r.Route("/{portfolioId}", func(r chi.Router) {
//	    r.Use(middleware.ValidatePortfolioIDMiddleware)
//	    r.Get("/", handler.GetPortfolio)
//	})
func ValidatePortfolioIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "portfolioId")

		if id == "" {
			response.RespondError(w, http.StatusBadRequest, "valid portfolio ID is required", "")
			return
		}

		if err := validation.ValidateUUID(id); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// tickerPattern matches plausible ticker symbols: letters, digits, dots and
// hyphens (e.g. BRK.B), up to 12 characters, case-insensitive.
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,12}$`)

// ValidateTickerMiddleware validates that the ticker URL parameter looks like
// a ticker symbol. Returns 400 Bad Request otherwise.
func ValidateTickerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := chi.URLParam(r, "ticker")

		if ticker == "" || !tickerPattern.MatchString(ticker) {
			response.RespondError(w, http.StatusBadRequest, "valid ticker symbol is required", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}
