package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fernet/fernet-go"

	"github.com/thewhitelisted/optiq/internal/api/handlers"
	"github.com/thewhitelisted/optiq/internal/api/request"
	"github.com/thewhitelisted/optiq/internal/repository"
	"github.com/thewhitelisted/optiq/internal/secrets"
	"github.com/thewhitelisted/optiq/internal/service"
	"github.com/thewhitelisted/optiq/internal/testutil"
)

func newSystemHandler(t *testing.T, applied *string) *handlers.SystemHandler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("failed to generate fernet key: %v", err)
	}
	vault, err := secrets.NewVault(key.Encode())
	if err != nil {
		t.Fatalf("NewVault() returned unexpected error: %v", err)
	}

	apply := func(k string) {
		if applied != nil {
			*applied = k
		}
	}
	svc := service.NewSystemService(db, repository.NewSettingsRepository(db), vault, apply)
	return handlers.NewSystemHandler(svc)
}

// TestSystemHandler_Health tests the health endpoint.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database returns 200", func(t *testing.T) {
		handler := newSystemHandler(t, nil)

		rec := httptest.NewRecorder()
		handler.Health(rec, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

// TestSystemHandler_Version tests the version endpoint.
func TestSystemHandler_Version(t *testing.T) {
	handler := newSystemHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.Version(rec, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	testutil.DecodeJSONResponse(t, rec, &body)
	if body["version"] == "" {
		t.Error("version is empty")
	}
}

// TestSystemHandler_MarketDataKey tests the key management endpoints.
//
// WHY: The key is stored encrypted and pushed to the live client; the status
// endpoint must report presence without ever returning the key itself.
func TestSystemHandler_MarketDataKey(t *testing.T) {
	t.Run("status is unconfigured before a key is set", func(t *testing.T) {
		handler := newSystemHandler(t, nil)

		rec := httptest.NewRecorder()
		handler.MarketDataKeyStatus(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		var body map[string]bool
		testutil.DecodeJSONResponse(t, rec, &body)
		if body["configured"] {
			t.Error("configured = true before any key was stored")
		}
	})

	t.Run("set stores, applies, and flips the status", func(t *testing.T) {
		var applied string
		handler := newSystemHandler(t, &applied)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/x",
			request.SetMarketDataKeyRequest{APIKey: "sekrit"}, nil)
		rec := httptest.NewRecorder()
		handler.SetMarketDataKey(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
		}
		if applied != "sekrit" {
			t.Errorf("applied key = %q, want pushed to the live client", applied)
		}

		rec = httptest.NewRecorder()
		handler.MarketDataKeyStatus(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		var body map[string]bool
		testutil.DecodeJSONResponse(t, rec, &body)
		if !body["configured"] {
			t.Error("configured = false after storing a key")
		}
	})

	t.Run("blank key returns 400", func(t *testing.T) {
		handler := newSystemHandler(t, nil)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/x",
			request.SetMarketDataKeyRequest{APIKey: "  "}, nil)
		rec := httptest.NewRecorder()
		handler.SetMarketDataKey(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
