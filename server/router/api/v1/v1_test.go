package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
	"github.com/mugiwara-labs/receiptsense/store"
	storetest "github.com/mugiwara-labs/receiptsense/store/test"
)

func newTestService(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()
	ts := storetest.NewTestingStore(context.Background(), t)
	svc := NewAPIV1Service(&profile.Profile{Mode: "dev", Driver: "sqlite"}, ts, nil, nil, nil)
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, e
}

func TestPing(t *testing.T) {
	_, e := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backend is alive!")
}

func TestSaveAndFetchPreferences(t *testing.T) {
	_, e := newTestService(t)

	payload := `{
		"user_id": "user-1",
		"user_name": "Nami",
		"user_email": "nami@example.com",
		"preferences": {
			"savings_pot": {"enabled": true, "value": "250"},
			"detect_similar_purchases": true
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user-preferences", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved struct {
		Success       bool   `json:"success"`
		PreferencesID string `json:"preferences_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.True(t, saved.Success)
	assert.NotEmpty(t, saved.PreferencesID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/user-preferences-list?user_id=user-1", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fetched struct {
		Data struct {
			PreferenceID string                            `json:"preference_id"`
			Preferences  map[string]*store.PreferenceEntry `json:"preferences"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, saved.PreferencesID, fetched.Data.PreferenceID)
	require.Contains(t, fetched.Data.Preferences, "savings_pot")
	assert.Equal(t, 250.0, fetched.Data.Preferences["savings_pot"].Value)
	assert.Equal(t, "USD", fetched.Data.Preferences["savings_pot"].Currency)
}

func TestSavePreferencesRejectsInvalidEntry(t *testing.T) {
	_, e := newTestService(t)

	payload := `{
		"user_id": "user-1",
		"preferences": {
			"savings_pot": {"enabled": true, "value": "-5"}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user-preferences", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "savings_pot")

	// Nothing was persisted.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/user-preferences-list?user_id=user-1", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSmartActionsWithFallback(t *testing.T) {
	svc, e := newTestService(t)
	ctx := context.Background()

	receipt, err := svc.Store.CreateReceipt(ctx, &store.Receipt{UserID: "user-1"})
	require.NoError(t, err)
	structured := `{"shop_name": "ACME", "total_amount": "93"}`
	completed := store.ReceiptStatusCompleted
	require.NoError(t, svc.Store.UpdateReceipt(ctx, &store.UpdateReceipt{
		ID:               receipt.ID,
		StructuredOutput: &structured,
		Status:           &completed,
	}))

	_, err = svc.Store.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID: "user-1",
		Preferences: map[string]*store.PreferenceEntry{
			"savings_pot": {Enabled: true, Value: 250.0, Currency: "USD"},
			"export_format": {Enabled: false},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/smart-actions?receipt_id="+receipt.ID+"&user_id=user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response struct {
		Success      bool                       `json:"success"`
		SmartActions map[string]json.RawMessage `json:"smartactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)
	require.Contains(t, response.SmartActions, "savings_pot")
	assert.NotContains(t, response.SmartActions, "export_format", "disabled preferences get no suggestion")
	assert.Contains(t, string(response.SmartActions["savings_pot"]), "Add ₹250.0 from this receipt to your savings pot?")
}

func TestGetReceiptNotFound(t *testing.T) {
	_, e := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipt/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRequiresObjectStorage(t *testing.T) {
	_, e := newTestService(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
