package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerReportsUnreadyThenReady(t *testing.T) {
	s := NewStatus()
	h := s.Handler()

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before ready, got %d", rec.Code)
	}

	s.SetReady(true)
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after ready, got %d", rec.Code)
	}
}
