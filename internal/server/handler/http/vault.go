package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/passkeep/passkeep/internal/middleware"
	"github.com/passkeep/passkeep/internal/models"
	"github.com/passkeep/passkeep/internal/repository"
	"github.com/passkeep/passkeep/internal/service"
)

// VaultService defines the vault operations required by the VaultHandler.
// Every operation is scoped to the owner resolved from the session; record
// ids alone never authorize anything.
type VaultService interface {
	Create(ctx context.Context, owner string, in service.RecordInput) (string, error)
	List(ctx context.Context, owner string) ([]models.VaultRecord, error)
	Update(ctx context.Context, owner, id string, in service.RecordInput) error
	Delete(ctx context.Context, owner, id string) error
}

// VaultHandler handles vault record CRUD requests.
type VaultHandler struct {
	VaultService VaultService
	Logger       *zap.Logger
}

func (h *VaultHandler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return id.Email, true
}

// Create handles POST /api/vault.
// The body carries metadata and the sealed secret blob; the server never
// sees the plaintext secret or the key it was sealed under.
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in service.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	id, err := h.VaultService.Create(r.Context(), owner, in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("create record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// List handles GET /api/vault, most recently created records first.
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	records, err := h.VaultService.List(r.Context(), owner)
	if err != nil {
		h.Logger.Error("list records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []models.VaultRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": records})
}

// Update handles PUT /api/vault/{id}.
// A record owned by someone else answers exactly like a nonexistent one.
func (h *VaultHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var in service.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.VaultService.Update(r.Context(), owner, chi.URLParam(r, "id"), in)
	switch {
	case err == nil:
		writeOK(w)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.Logger.Error("update record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Delete handles DELETE /api/vault/{id}.
func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	err := h.VaultService.Delete(r.Context(), owner, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeOK(w)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.Logger.Error("delete record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
