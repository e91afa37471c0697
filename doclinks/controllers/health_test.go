package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ext := &fakeExtractor{}
	hc := NewHealthController(NewDocumentsController(ext, nil, "", ""))

	for _, active := range []bool{false, true} {
		ext.active = active
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()

		hc.HealthCheck(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		want := "idle"
		if active {
			want = "active"
		}
		assert.Equal(t, want, body["browser_session"])
	}
}
