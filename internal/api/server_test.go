package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Franca20/telegram-motorista-bot/internal/audit"
	"github.com/Franca20/telegram-motorista-bot/internal/driver"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/logging"
)

type stubAudit struct {
	result *audit.ListResult
	filter audit.Filter
}

func (s *stubAudit) Create(context.Context, *audit.Entry) error { return nil }

func (s *stubAudit) List(_ context.Context, filter audit.Filter) (*audit.ListResult, error) {
	s.filter = filter
	return s.result, nil
}

func newTestServer(t *testing.T, auditRepo audit.Repository) *Server {
	t.Helper()

	registry := driver.NewRegistry()
	if _, err := registry.Add("LH1234567890123 Joao Silva ABC1234"); err != nil {
		t.Fatalf("seeding registry: %v", err)
	}

	server, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:   logging.Default(),
		Registry: registry,
		Audit:    auditRepo,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return server
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{Registry: driver.NewRegistry()}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Fatal("expected error without registry")
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Fatalf("body = %+v", resp)
	}
}

func TestHandleStatus(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.ActiveDrivers != 1 || resp.ClosedDrivers != 0 {
		t.Fatalf("driver counts = %d/%d, want 1/0", resp.ActiveDrivers, resp.ClosedDrivers)
	}
}

func TestHandleAudit(t *testing.T) {
	stub := &stubAudit{result: &audit.ListResult{
		Entries: []audit.Entry{{ID: "aud-12345678", Action: "add", Outcome: audit.OutcomeOK}},
		Total:   1,
	}}
	server := newTestServer(t, stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/audit?action=add&limit=10&offset=5", nil)
	server.buildRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.filter.Action != "add" || stub.filter.Limit != 10 || stub.filter.Offset != 5 {
		t.Fatalf("filter = %+v", stub.filter)
	}

	var resp audit.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Total != 1 || len(resp.Entries) != 1 {
		t.Fatalf("result = %+v", resp)
	}
}

func TestHandleAuditValidation(t *testing.T) {
	server := newTestServer(t, &stubAudit{result: &audit.ListResult{}})

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	unconfigured := newTestServer(t, nil)
	rec = httptest.NewRecorder()
	unconfigured.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
