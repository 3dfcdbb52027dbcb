package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oncopacket/oncopacket/internal/domain/phenopacket"
	"github.com/oncopacket/oncopacket/internal/domain/terminology"
	"github.com/oncopacket/oncopacket/internal/platform/middleware"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	norm, err := terminology.NewNormalizer(context.Background(), terminology.NewEmbeddedSource())
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return New(Options{
		Logger:       zerolog.Nop(),
		Normalizer:   norm,
		Phenopackets: phenopacket.NewService(norm, nil, nil, zerolog.Nop()),
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != Version {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestHealthDB_Disabled(t *testing.T) {
	rec := get(t, newTestServer(t), "/health/db")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 without a database, got %d", rec.Code)
	}
}

func TestDurationRoute(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/api/v1/duration?days=15987")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["days"] != "15987" || body["iso8601duration"] != "P43Y9M1W2D" {
		t.Errorf("unexpected body %v", body)
	}

	if rec := get(t, h, "/api/v1/duration?days=x"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid days, got %d", rec.Code)
	}
}

func TestTerminologyRoute(t *testing.T) {
	h := newTestServer(t)
	if rec := get(t, h, "/api/v1/terminology/stage?value=Stage%20IV"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := get(t, h, "/api/v1/terminology/colour?value=red"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown domain, got %d", rec.Code)
	}
}

func TestPhenopacketList_NoDatabase(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v1/phenopackets")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 without a repository, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	if rec := get(t, newTestServer(t), "/api/v1/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
