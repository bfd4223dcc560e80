package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoutePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/admin/requests/507f1f77bcf86cd799439011", "/api/v1/admin/requests/{id}"},
		{"/api/v1/admin/shows/507f1f77bcf86cd799439011/image", "/api/v1/admin/shows/{id}/image"},
		{"/api/v1/things/123e4567-e89b-12d3-a456-426614174000", "/api/v1/things/{id}"},
		{"/api/v1/things/12345678", "/api/v1/things/{id}"},
		{"/api/v1/chat/messages", "/api/v1/chat/messages"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeRoutePath(tt.path))
	}
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/v1/admin/requests/{request_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("PATCH")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {})

	for _, id := range []string{"507f1f77bcf86cd799439011", "507f1f77bcf86cd799439012"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("PATCH", "/api/v1/admin/requests/"+id, nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	expected := `
		# HELP radio_http_requests_total Total HTTP requests
		# TYPE radio_http_requests_total counter
		radio_http_requests_total{method="PATCH",path="/api/v1/admin/requests/{request_id}",status="404"} 2
	`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "radio_http_requests_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
}

func TestTimeoutMiddleware(t *testing.T) {
	fast := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Station", "santana")
		WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	}))
	rr := httptest.NewRecorder()
	fast.ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "santana", rr.Header().Get("X-Station"))
	assert.JSONEq(t, `{"ok": true}`, rr.Body.String())

	release := make(chan struct{})
	defer close(release)
	slow := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte("late"))
	}))
	rr = httptest.NewRecorder()
	slow.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.NotContains(t, rr.Body.String(), "late")
}
