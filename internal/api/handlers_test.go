package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/ContentPlannerMCP/internal/services"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(credential string, upstreamURL string) *gin.Engine {
	metrics := utils.NewAPIMetrics()
	opts := []services.GenerationOption{
		services.WithCredentialSource(func() string { return credential }),
		services.WithLogger(utils.NewNopLogger()),
		services.WithMetrics(metrics),
	}
	if upstreamURL != "" {
		opts = append(opts, services.WithBaseURL(upstreamURL))
	}
	handler := NewHandler(services.NewGenerationService(opts...), metrics)
	return NewRouter(handler, utils.NewNopLogger())
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate_FallbackHashtags(t *testing.T) {
	r := newTestRouter("", "")

	w := perform(r, http.MethodPost, "/api/generate",
		`{"brand":{"name":"Acme","tone":"","audience":"","keywords":[]},"kind":"hashtags","context":{"title":"Flu","copy":"","platforms":["instagram"]}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hashtags":["#BharatLifeCare","#Healthcare","#Wellness","#Diagnostics","#PatientCare"]}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGenerate_FallbackPost(t *testing.T) {
	r := newTestRouter("", "")

	w := perform(r, http.MethodPost, "/api/generate",
		`{"brand":{"name":"Acme"},"kind":"post","context":{"title":"Flu Season"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Flu Season","copy":"`+services.FallbackPostCopy+`"}`, w.Body.String())
}

func TestGenerate_MalformedBody(t *testing.T) {
	r := newTestRouter("", "")

	w := perform(r, http.MethodPost, "/api/generate", `not json`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "generation_failed", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestGenerate_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer upstream.Close()

	r := newTestRouter("sk-bad", upstream.URL)
	w := perform(r, http.MethodPost, "/api/generate", `{"kind":"post","brand":{},"context":{}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t,
		`{"error":"upstream_error","detail":"{\"error\":{\"message\":\"Incorrect API key provided\"}}"}`,
		w.Body.String())
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		upstream   string
	}{
		{name: "no credential", credential: "", upstream: "fallback"},
		{name: "credential", credential: "sk-test", upstream: "configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.credential, "")
			w := perform(r, http.MethodGet, "/api/health", "")

			require.Equal(t, http.StatusOK, w.Code)
			var resp struct {
				Success bool         `json:"success"`
				Data    HealthStatus `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, "ok", resp.Data.Status)
			assert.Equal(t, tt.upstream, resp.Data.Upstream)
			assert.Equal(t, "openai", resp.Data.Provider)
			assert.Equal(t, "gpt-4o-mini", resp.Data.Model)
		})
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter("", "")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter("", "")

	perform(r, http.MethodPost, "/api/generate", `{"kind":"hashtags"}`)
	w := perform(r, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `content_planner_generations_total{kind="hashtags",outcome="fallback"} 1`)
	assert.Contains(t, w.Body.String(), `content_planner_http_requests_total{endpoint="/api/generate",method="POST",status="200"} 1`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter("", "")

	w := perform(r, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)

	w = perform(r, http.MethodGet, "/api/generate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter("", "")

	w := perform(r, http.MethodOptions, "/api/generate", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSanitizeErrorMessage(t *testing.T) {
	assert.Equal(t, "An internal error occurred", sanitizeErrorMessage("invalid api_key sk-123"))
	assert.Equal(t, "接口不存在", sanitizeErrorMessage("接口不存在"))
}
