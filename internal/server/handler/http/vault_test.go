package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/middleware"
	"github.com/passkeep/passkeep/internal/models"
	"github.com/passkeep/passkeep/internal/repository"
	"github.com/passkeep/passkeep/internal/service"
	"github.com/passkeep/passkeep/internal/session"
)

// fakeVaultService implements VaultService for testing.
type fakeVaultService struct {
	createID  string
	createErr error
	items     []models.VaultRecord
	listErr   error
	updateErr error
	deleteErr error

	gotOwner string
	gotID    string
}

func (f *fakeVaultService) Create(_ context.Context, owner string, _ service.RecordInput) (string, error) {
	f.gotOwner = owner
	return f.createID, f.createErr
}
func (f *fakeVaultService) List(_ context.Context, owner string) ([]models.VaultRecord, error) {
	f.gotOwner = owner
	return f.items, f.listErr
}
func (f *fakeVaultService) Update(_ context.Context, owner, id string, _ service.RecordInput) error {
	f.gotOwner, f.gotID = owner, id
	return f.updateErr
}
func (f *fakeVaultService) Delete(_ context.Context, owner, id string) error {
	f.gotOwner, f.gotID = owner, id
	return f.deleteErr
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	ctx := middleware.WithIdentity(req.Context(), session.Identity{UserID: "u1", Email: "a@x.com"})
	return req.WithContext(ctx)
}

const validRecordBody = `{"title":"Bank","username":"a","secret":{"nonce_b64":"bm9uY2U=","ciphertext_b64":"Y2lwaGVy"}}`

func TestVaultHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeVaultService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeVaultService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "validation failure",
			body:           `{"title":""}`,
			service:        &fakeVaultService{createErr: service.ErrValidation},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid input",
		},
		{
			name:           "storage failure",
			body:           validRecordBody,
			service:        &fakeVaultService{createErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "success",
			body:           validRecordBody,
			service:        &fakeVaultService{createID: "r1"},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"id":"r1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := &VaultHandler{VaultService: tt.service, Logger: zap.NewNop()}
			h.Create(rec, authedRequest("POST", "/api/vault", tt.body))

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestVaultHandler_CreateUnauthenticated(t *testing.T) {
	svc := &fakeVaultService{}
	h := &VaultHandler{VaultService: svc, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/vault", bytes.NewBufferString(validRecordBody)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if svc.gotOwner != "" {
		t.Errorf("service must not be reached without identity")
	}
}

func TestVaultHandler_List(t *testing.T) {
	svc := &fakeVaultService{items: []models.VaultRecord{{ID: "r1", OwnerEmail: "a@x.com", Title: "Bank"}}}
	h := &VaultHandler{VaultService: svc, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/vault", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotOwner != "a@x.com" {
		t.Errorf("list not scoped to session owner: %q", svc.gotOwner)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"items"`)) {
		t.Errorf("expected items in body, got %q", rec.Body.String())
	}
}

func TestVaultHandler_ListEmpty(t *testing.T) {
	h := &VaultHandler{VaultService: &fakeVaultService{}, Logger: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/vault", ""))

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"items":[]`)) {
		t.Errorf("expected empty items array, got %q", rec.Body.String())
	}
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestVaultHandler_Update(t *testing.T) {
	tests := []struct {
		name         string
		service      *fakeVaultService
		expectedCode int
	}{
		{"success", &fakeVaultService{}, http.StatusOK},
		{"not found or not owned", &fakeVaultService{updateErr: repository.ErrNotFound}, http.StatusNotFound},
		{"storage failure", &fakeVaultService{updateErr: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := &VaultHandler{VaultService: tt.service, Logger: zap.NewNop()}
			req := withURLParam(authedRequest("PUT", "/api/vault/r1", validRecordBody), "id", "r1")
			h.Update(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if tt.service.gotID != "r1" || tt.service.gotOwner != "a@x.com" {
				t.Errorf("update not scoped to (id, owner): %q %q", tt.service.gotID, tt.service.gotOwner)
			}
		})
	}
}

func TestVaultHandler_Delete(t *testing.T) {
	tests := []struct {
		name         string
		service      *fakeVaultService
		expectedCode int
	}{
		{"success", &fakeVaultService{}, http.StatusOK},
		{"not found or not owned", &fakeVaultService{deleteErr: repository.ErrNotFound}, http.StatusNotFound},
		{"storage failure", &fakeVaultService{deleteErr: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := &VaultHandler{VaultService: tt.service, Logger: zap.NewNop()}
			req := withURLParam(authedRequest("DELETE", "/api/vault/r1", ""), "id", "r1")
			h.Delete(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
		})
	}
}
