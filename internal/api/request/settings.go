package request

// SetMarketDataKeyRequest represents the request body for storing the market
// data API key.
type SetMarketDataKeyRequest struct {
	APIKey string `json:"apiKey"`
}
