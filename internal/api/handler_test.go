package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeovault/m/domain"
	"homeovault/m/internal/api"
	"homeovault/m/internal/database"
	"homeovault/m/internal/inventory"
	"homeovault/m/internal/migrations"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := database.Connect(":memory:")
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return api.New(inventory.New(db), t.TempDir()).Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func arnicaPayload() map[string]any {
	return map[string]any{
		"medicine_name":  "Arnica",
		"potency":        "30C",
		"form":           "Dilution",
		"bottle_size":    "30ml",
		"manufacturer":   "SBL",
		"batch_number":   "B123",
		"expiry_date":    "2030-01-01",
		"mrp":            100,
		"purchase_price": 50,
		"quantity":       10,
	}
}

func createMedicine(t *testing.T, router http.Handler, payload map[string]any) domain.MedicineBatch {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/medicines", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m domain.MedicineBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCreateMedicine_ThenDuplicate(t *testing.T) {
	router := newTestRouter(t)

	m := createMedicine(t, router, arnicaPayload())
	assert.NotZero(t, m.ID)
	assert.Equal(t, "Arnica", m.MedicineName)

	rec := doJSON(t, router, http.MethodPost, "/api/medicines", arnicaPayload())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCreateMedicine_BadInput(t *testing.T) {
	router := newTestRouter(t)

	bad := arnicaPayload()
	bad["mrp"] = 0
	rec := doJSON(t, router, http.MethodPost, "/api/medicines", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MRP")

	bad = arnicaPayload()
	bad["expiry_date"] = "soon"
	rec = doJSON(t, router, http.MethodPost, "/api/medicines", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expiry")
}

func TestTransaction_InsufficientStock(t *testing.T) {
	router := newTestRouter(t)

	payload := arnicaPayload()
	payload["quantity"] = 5
	m := createMedicine(t, router, payload)

	rec := doJSON(t, router, http.MethodPost, "/api/transaction", map[string]any{
		"medicine_id":   m.ID,
		"change_amount": -6,
		"action_type":   "SELL",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")

	// Quantity is unchanged.
	rec = doJSON(t, router, http.MethodGet, "/api/medicines", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var medicines []domain.MedicineBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &medicines))
	require.Len(t, medicines, 1)
	assert.EqualValues(t, 5, medicines[0].Quantity)
}

func TestTransaction_UnknownMedicine(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/transaction", map[string]any{
		"medicine_id":   4242,
		"change_amount": -1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransaction_ExpiredOverride(t *testing.T) {
	router := newTestRouter(t)

	payload := arnicaPayload()
	payload["expiry_date"] = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	m := createMedicine(t, router, payload)

	rec := doJSON(t, router, http.MethodPost, "/api/transaction", map[string]any{
		"medicine_id":   m.ID,
		"change_amount": -1,
		"action_type":   "SELL",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	rec = doJSON(t, router, http.MethodPost, "/api/transaction", map[string]any{
		"medicine_id":   m.ID,
		"change_amount": -1,
		"action_type":   "SELL",
		"note":          "OVERRIDE",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Status      string `json:"status"`
		NewQuantity int64  `json:"new_quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.EqualValues(t, 9, body.NewQuantity)
}

func TestDeleteMedicine(t *testing.T) {
	router := newTestRouter(t)

	m := createMedicine(t, router, arnicaPayload())

	rec := doJSON(t, router, http.MethodDelete, "/api/medicines/4242", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/medicines/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/medicines/"+strconv.FormatInt(m.ID, 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/medicines", nil)
	var medicines []domain.MedicineBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &medicines))
	assert.Empty(t, medicines)
}

func TestHistory(t *testing.T) {
	router := newTestRouter(t)

	m := createMedicine(t, router, arnicaPayload())
	rec := doJSON(t, router, http.MethodPost, "/api/transaction", map[string]any{
		"medicine_id":   m.ID,
		"change_amount": -1,
		"action_type":   "SELL",
		"note":          "Test Note",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []domain.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Arnica", entries[0].MedicineName)
	assert.Equal(t, "B123", entries[0].BatchNumber)
	assert.EqualValues(t, -1, entries[0].Change)
	require.NotNil(t, entries[0].Note)
	assert.Equal(t, "Test Note", *entries[0].Note)
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t)

	createMedicine(t, router, arnicaPayload())

	rec := doJSON(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "ID,Name,Potency"), rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Arnica")
}
