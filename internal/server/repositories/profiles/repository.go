// Package profiles implements the durable profile store: a key-value entity
// store keyed by (identity, document-kind) with conditional insert, point
// lookup, scan-by-email, and partial update.
package profiles

import (
	"context"

	"github.com/avicente/cardholder/internal/server/models"
)

// Updatable attribute names accepted by UpdateFields.
const (
	FieldDirection   = "direction"
	FieldPhoneNumber = "phoneNumber"
	FieldAvatarURL   = "avatarUrl"
)

// Repository is the profile store contract.
//
// CreateIfAbsent is an atomic conditional insert: a second insert for the
// same identity fails with common.ErrorAlreadyExists and never overwrites.
// FindByEmail is a linear scan filtered on normalized email and kind and
// consults the first match only; email uniqueness is not enforced by the
// store. UpdateFields merges the given attributes and fails with
// common.ErrorNotFound when the identity does not exist; it never upserts.
type Repository interface {
	CreateIfAbsent(ctx context.Context, profile *models.Profile) error
	GetByIdentity(ctx context.Context, identity string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateFields(ctx context.Context, identity string, fields map[string]any) (*models.Profile, error)
}
