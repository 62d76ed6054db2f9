package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutmateStudio/Anonimiser/internal/anonymize"
	"github.com/AutmateStudio/Anonimiser/internal/audit"
	"github.com/AutmateStudio/Anonimiser/internal/detect"
)

const (
	testAPIKey     = "test-api-key"
	testSigningKey = "test-signing-key-1234567890123456"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	engine := detect.NewEngine(detect.MustNewRegexDetector())
	anonymizer := anonymize.New(engine)
	return NewServer(anonymizer, map[string]string{testAPIKey: "crm"}, opts...)
}

func doJSON(t *testing.T, handler http.Handler, method, path, key string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Anonimiser-Key", key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotContains(t, resp, "components")
}

func TestHealthDetail(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodGet, "/v1/health?detail=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Components["regex_detector"])
	assert.Equal(t, "disabled", resp.Components["ner_detector"])
	assert.Equal(t, "disabled", resp.Components["audit_store"])
}

func TestRedactRequiresAuth(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodPost, "/v1/redact", "", map[string]string{"text": "привет"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/redact", "wrong-key", map[string]string{"text": "привет"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRedactBearerAuth(t *testing.T) {
	h := newTestServer(t).Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader(`{"text":"привет"}`))
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedactAndRestore(t *testing.T) {
	h := newTestServer(t).Routes()

	input := "Мой телефон +7 900 123-45-67, жду звонка"
	rec := doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": input})
	require.Equal(t, http.StatusOK, rec.Code)

	var redacted struct {
		RedactedText   string            `json:"redacted_text"`
		Mapping        map[string]string `json:"mapping"`
		ProcessingTime float64           `json:"processing_time"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &redacted))
	assert.Contains(t, redacted.RedactedText, "{ТЕЛЕФОН_1}")
	assert.NotContains(t, redacted.RedactedText, "123-45-67")
	assert.Equal(t, "+7 900 123-45-67", redacted.Mapping["{ТЕЛЕФОН_1}"])

	rec = doJSON(t, h, http.MethodPost, "/v1/restore", testAPIKey, map[string]interface{}{
		"text":    redacted.RedactedText,
		"mapping": redacted.Mapping,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var restored struct {
		RestoredText string `json:"restored_text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restored))
	assert.Equal(t, input, restored.RestoredText)
}

func TestRedactEmptyText(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedactInvalidJSON(t *testing.T) {
	h := newTestServer(t).Routes()

	req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader("{not json"))
	req.Header.Set("X-Anonimiser-Key", testAPIKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedactTextTooLarge(t *testing.T) {
	h := newTestServer(t, WithMaxTextKB(1)).Routes()

	big := strings.Repeat("а", 2048)
	rec := doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRestoreUnknownPlaceholderKeptLiteral(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodPost, "/v1/restore", testAPIKey, map[string]interface{}{
		"text":    "звонил {ИМЯ_1}",
		"mapping": map[string]string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "{ИМЯ_1}")
}

func TestAuditTrail(t *testing.T) {
	store, err := audit.NewStore(filepath.Join(t.TempDir(), "audit.db"), testSigningKey)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := newTestServer(t, WithAuditStore(store)).Routes()

	rec := doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": "телефон +79001234567"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/audit?caller=crm", testAPIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Records []audit.Record `json:"records"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "crm", list.Records[0].Caller)
	assert.Equal(t, "redact", list.Records[0].Operation)
	assert.NotEmpty(t, list.Records[0].InputHash)

	id := list.Records[0].ID
	rec = doJSON(t, h, http.MethodGet, "/v1/audit/"+id, testAPIKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/audit/"+id+"/verify", testAPIKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var verify struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verify))
	assert.True(t, verify.Valid)
}

func TestAuditDisabled(t *testing.T) {
	h := newTestServer(t).Routes()

	rec := doJSON(t, h, http.MethodGet, "/v1/audit", testAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, WithRateLimiter(NewRateLimiter(1000, 1))).Routes()

	rec := doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": "привет"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/redact", testAPIKey, map[string]string{"text": "привет"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t).Routes()

	req := httptest.NewRequest(http.MethodOptions, "/v1/redact", nil)
	req.Header.Set("Origin", "https://crm.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
