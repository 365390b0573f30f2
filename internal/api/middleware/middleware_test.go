package middleware

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/storelens/internal/api"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "req-1", seen)
}

func TestRequestID_RejectsUnsafeIncomingID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	for _, bad := range []string{"a\"}\nfake", strings.Repeat("x", maxRequestIDLength+1), "id with spaces"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", bad)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, bad, seen)
		assert.True(t, validRequestID(seen), "generated id %q", seen)
	}
}

func TestRouteName(t *testing.T) {
	r := chi.NewRouter()
	var name string
	r.Get("/snapshots/{id}", func(w http.ResponseWriter, req *http.Request) {
		name = routeName(req)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/snapshots/snap-42", nil))
	assert.Equal(t, "GET /snapshots/{id}", name)

	plain := httptest.NewRequest(http.MethodPost, "/search", nil)
	assert.Equal(t, "POST /search", routeName(plain))
}

func TestBodyLimit_RejectsDeclaredLength(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"records":[]}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds 8 bytes")
}

func TestBodyLimit_ChunkedBodyFailsOnDecode(t *testing.T) {
	var decoded bool
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		decoded = api.DecodeJSON(w, r, &body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"records":[]}`))
	req.ContentLength = -1
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.False(t, decoded)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), api.CodePayloadTooLarge)
}

func TestBodyLimit_DisabledPassesThrough(t *testing.T) {
	called := false
	handler := BodyLimit(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.True(t, called)
}

func TestAccessLog_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	handler := RequestID(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setRequestWorkspace(r.Context(), "ws-1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/snapshots", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	req.Header.Set("X-Request-ID", "req-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry accessLogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, http.MethodPost, entry.Method)
	assert.Equal(t, "/snapshots", entry.Path)
	assert.Equal(t, http.StatusCreated, entry.Status)
	assert.Equal(t, 2, entry.Bytes)
	assert.Equal(t, "ws-1", entry.WorkspaceID)
	assert.Equal(t, "req-7", entry.RequestID)
	assert.Equal(t, "POST /snapshots", entry.Route)
	assert.Equal(t, "10.0.0.1", entry.RemoteAddr)
}

func TestSpanStatus(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusOK, "ok"},
		{http.StatusNoContent, "ok"},
		{http.StatusNotFound, "not_found"},
		{http.StatusRequestEntityTooLarge, "out_of_range"},
		{http.StatusUnprocessableEntity, "invalid_argument"},
		{http.StatusServiceUnavailable, "unavailable"},
		{http.StatusBadGateway, "internal_error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, spanStatus(tt.code).String(), "code %d", tt.code)
	}
}

func TestTracing_PassesThroughWithoutClient(t *testing.T) {
	handler := RequestID(Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/exports", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestTracing_RepanicsForRecoverer(t *testing.T) {
	handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	assert.PanicsWithValue(t, "boom", func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestStatusWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := wrapWriter(rec)

	assert.Equal(t, http.StatusOK, sw.Status())
	assert.Same(t, sw, wrapWriter(sw))

	sw.WriteHeader(http.StatusNotFound)
	_, _ = sw.Write([]byte("missing"))

	assert.Equal(t, http.StatusNotFound, sw.Status())
	assert.Equal(t, 7, sw.bytes)
	assert.Equal(t, rec, sw.Unwrap())
}
