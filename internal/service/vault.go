package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/passkeep/passkeep/internal/models"
)

// VaultRepository defines the persistence operations required by
// VaultService. Every operation beyond create takes the owner alongside the
// record id; the repository applies both as one conjunctive filter.
type VaultRepository interface {
	CreateRecord(ctx context.Context, rec models.VaultRecord) error
	ListByOwner(ctx context.Context, ownerEmail string) ([]models.VaultRecord, error)
	UpdateRecord(ctx context.Context, ownerEmail, id string, rec models.VaultRecord) error
	DeleteRecord(ctx context.Context, ownerEmail, id string) error
}

// RecordInput carries the writable fields of a vault record. The owner is
// never part of the input: it always comes from the resolved session.
type RecordInput struct {
	Title    string              `json:"title"`
	Username string              `json:"username"`
	URL      string              `json:"url"`
	Secret   models.SealedSecret `json:"secret"`
	Notes    string              `json:"notes"`
}

func (in RecordInput) validate() error {
	if in.Title == "" {
		return validationError("title is required")
	}
	if in.Username == "" {
		return validationError("username is required")
	}
	if in.Secret.Empty() {
		return validationError("secret is required")
	}
	if in.Secret.NonceB64 == "" || in.Secret.CiphertextB64 == "" {
		return validationError("secret blob is incomplete")
	}
	return nil
}

// VaultService implements vault record management scoped to one owner.
type VaultService struct {
	repo VaultRepository
}

// NewVaultService constructs a VaultService with the provided repository.
func NewVaultService(repo VaultRepository) *VaultService {
	return &VaultService{repo: repo}
}

// Create stores a new sealed record for owner and returns its id.
// Validation happens before any storage work.
func (s *VaultService) Create(ctx context.Context, owner string, in RecordInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	rec := models.VaultRecord{
		ID:         uuid.NewString(),
		OwnerEmail: owner,
		Title:      in.Title,
		Username:   in.Username,
		URL:        in.URL,
		Secret:     in.Secret,
		Notes:      in.Notes,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	return rec.ID, nil
}

// List returns all of owner's records, most recently created first.
func (s *VaultService) List(ctx context.Context, owner string) ([]models.VaultRecord, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Update rewrites the mutable fields of (owner, id). The owner of a record
// can never be changed by an update.
func (s *VaultService) Update(ctx context.Context, owner, id string, in RecordInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.repo.UpdateRecord(ctx, owner, id, models.VaultRecord{
		Title:    in.Title,
		Username: in.Username,
		URL:      in.URL,
		Secret:   in.Secret,
		Notes:    in.Notes,
	})
}

// Delete removes (owner, id).
func (s *VaultService) Delete(ctx context.Context, owner, id string) error {
	return s.repo.DeleteRecord(ctx, owner, id)
}
