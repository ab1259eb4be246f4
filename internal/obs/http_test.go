package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContextMiddleware_GeneratesRequestID(t *testing.T) {
	var got Correlation
	handler := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CorrelationFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, strings.HasPrefix(got.RequestID, "req-"))
	assert.Equal(t, got.RequestID, rec.Header().Get("X-Request-Id"))
}

func TestRequestContextMiddleware_PropagatesIncomingHeaders(t *testing.T) {
	var got Correlation
	handler := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CorrelationFromContext(r.Context())
	}))

	traceparent := "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("X-Request-Id", "req-incoming")
	req.Header.Set("traceparent", traceparent)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-incoming", got.RequestID)
	assert.Equal(t, traceparent, got.Traceparent)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", got.TraceID)
}

func TestAccessLogMiddleware_LogsStatusAndSizes(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	handler := AccessLogMiddleware("http", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/notes?q=x", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/notes", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, float64(len("short and stout")), entry["resp_bytes"])
}
