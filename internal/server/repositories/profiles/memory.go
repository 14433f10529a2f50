package profiles

import (
	"context"
	"sync"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/server/models"
)

// MemoryRepository is an in-process profile store for tests and local runs.
// Scans walk records in insertion order, mirroring the first-match semantics
// of the durable stores.
type MemoryRepository struct {
	mu    sync.Mutex
	order []string
	items map[string]*models.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*models.Profile)}
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[profile.Identity]; ok {
		return common.ErrorAlreadyExists
	}
	stored := *profile
	r.items[profile.Identity] = &stored
	r.order = append(r.order, profile.Identity)
	return nil
}

func (r *MemoryRepository) GetByIdentity(ctx context.Context, identity string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[identity]
	if !ok {
		return nil, common.ErrorNotFound
	}
	profile := *stored
	return &profile, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, identity := range r.order {
		stored := r.items[identity]
		if stored.Email == email && stored.Kind == models.ProfileKind {
			profile := *stored
			return &profile, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) UpdateFields(ctx context.Context, identity string, fields map[string]any) (*models.Profile, error) {
	if len(fields) == 0 {
		return nil, common.ErrorValidation
	}

	// Resolve the whole map before touching the record, so a bad entry never
	// leaves a partial mutation behind.
	resolved := make(map[string]*string, len(fields))
	for name, value := range fields {
		switch name {
		case FieldDirection, FieldPhoneNumber, FieldAvatarURL:
		default:
			return nil, common.ErrorValidation
		}
		ptr, err := asStringPtr(value)
		if err != nil {
			return nil, err
		}
		resolved[name] = ptr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[identity]
	if !ok {
		return nil, common.ErrorNotFound
	}

	for name, ptr := range resolved {
		switch name {
		case FieldDirection:
			stored.Direction = ptr
		case FieldPhoneNumber:
			stored.PhoneNumber = ptr
		case FieldAvatarURL:
			stored.AvatarURL = ptr
		}
	}

	profile := *stored
	return &profile, nil
}

func asStringPtr(value any) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		return v, nil
	default:
		return nil, common.ErrorValidation
	}
}
