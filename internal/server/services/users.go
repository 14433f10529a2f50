package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/logging"
	"github.com/avicente/cardholder/internal/server/auth"
	"github.com/avicente/cardholder/internal/server/blob"
	"github.com/avicente/cardholder/internal/server/config"
	"github.com/avicente/cardholder/internal/server/models"
	"github.com/avicente/cardholder/internal/server/publish"
	"github.com/avicente/cardholder/internal/server/repositories/profiles"
	"github.com/avicente/cardholder/internal/server/secrets"
	"github.com/google/uuid"
)

// UserService drives each operation as an ordered sequence of stages,
// short-circuiting on the first fatal failure. Side-effect stages after the
// durable write never fail the operation: card-request failures become
// warnings on the response, notification failures are logged only.
type UserService struct {
	store     profiles.Repository
	blobs     blob.Store
	publisher publish.Publisher
	secrets   secrets.Provider
	logger    logging.Logger
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewUserService(store profiles.Repository, blobs blob.Store, publisher publish.Publisher, sp secrets.Provider, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		store:     store,
		blobs:     blobs,
		publisher: publisher,
		secrets:   sp,
		logger:    logger,
		tokenTTL:  cfg.TokenTTL,
		now:       time.Now,
	}
}

type RegisterRequest struct {
	Name        string  `json:"name"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Document    string  `json:"document"`
	Direction   *string `json:"direction"`
	PhoneNumber *string `json:"phoneNumber"`
}

type RegisterResult struct {
	User     *models.Profile
	Warnings []models.Warning
}

func (r *RegisterRequest) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"password", r.Password},
		{"document", r.Document},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: missing %s", common.ErrorValidation, f.name)
		}
	}
	return nil
}

// Register provisions a new account. Stages: validate, getSecrets, hash,
// storePut (fatal, attributed), then the two card requests and the
// ACCOUNT_CREATED notification (best-effort).
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	if err := req.validate(); err != nil {
		return nil, failed(StageValidate, err)
	}

	bundle, err := s.secrets.Fetch(ctx)
	if err != nil {
		return nil, failed(StageGetSecrets, err)
	}

	hash, err := auth.HashPassword(req.Password, bundle.HashCost)
	if err != nil {
		return nil, failed(StageHash, fmt.Errorf("%w: hashing password: %v", common.ErrorInternal, err))
	}

	profile := &models.Profile{
		Identity:     uuid.New().String(),
		Kind:         models.ProfileKind,
		Name:         req.Name,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Direction:    req.Direction,
		PhoneNumber:  req.PhoneNumber,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	if err := s.store.CreateIfAbsent(ctx, profile); err != nil {
		return nil, failed(StageStorePut, err)
	}

	// Card requests are issued one after another; a failure of the first does
	// not skip the second, and each failure is its own warning.
	var warnings []models.Warning
	for _, kind := range []string{publish.CardKindDebit, publish.CardKindCredit} {
		if err := s.publisher.PublishCardRequest(ctx, profile.Identity, kind); err != nil {
			s.logger.Error(ctx, "card request publish failed", "identity", profile.Identity, "kind", kind, "error", err)
			warnings = append(warnings, models.Warning{
				Where:  StageCardRequest,
				Hint:   "registration not blocked",
				Detail: fmt.Sprintf("%s: %v", kind, err),
			})
		}
	}

	s.notify(ctx, &models.NotificationEvent{
		Identity: profile.Identity,
		Type:     models.NotificationAccountCreated,
		Message:  fmt.Sprintf("User %s created", profile.Email),
	})

	return &RegisterResult{User: profile.Public(), Warnings: warnings}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string
	User  *models.Profile
}

// Login authenticates by email and password and mints a session token.
// Unknown email and wrong password fail identically, so the error shape
// carries no account-enumeration signal.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, failed(StageValidate, fmt.Errorf("%w: missing email or password", common.ErrorValidation))
	}

	profile, err := s.store.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, failed(StageFindByEmail, common.ErrorUnauthorized)
		}
		return nil, failed(StageFindByEmail, err)
	}

	if !auth.CheckPassword(req.Password, profile.PasswordHash) {
		return nil, failed(StageVerifyPassword, common.ErrorUnauthorized)
	}

	bundle, err := s.secrets.Fetch(ctx)
	if err != nil {
		return nil, failed(StageGetSecrets, err)
	}

	token, err := auth.GenerateToken(profile.Identity, profile.Email, []byte(bundle.SigningKey), s.tokenTTL)
	if err != nil {
		return nil, failed(StageIssueToken, fmt.Errorf("%w: signing token: %v", common.ErrorInternal, err))
	}

	return &LoginResult{Token: token, User: profile.Public()}, nil
}

// GetProfile is a plain point lookup; no side effects.
func (s *UserService) GetProfile(ctx context.Context, identity string) (*models.Profile, error) {
	if identity == "" {
		return nil, failed(StageValidate, fmt.Errorf("%w: missing user id", common.ErrorValidation))
	}

	profile, err := s.store.GetByIdentity(ctx, identity)
	if err != nil {
		return nil, failed(StageStoreGet, err)
	}
	return profile.Public(), nil
}

// UpdateProfileRequest distinguishes an absent field from an explicit JSON
// null: absent leaves the stored value alone, null clears it. The Set flags
// record presence; decoding fills them.
type UpdateProfileRequest struct {
	Direction      *string
	PhoneNumber    *string
	DirectionSet   bool
	PhoneNumberSet bool
}

func (r *UpdateProfileRequest) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["direction"]; ok {
		r.DirectionSet = true
		if err := json.Unmarshal(v, &r.Direction); err != nil {
			return err
		}
	}
	if v, ok := raw["phoneNumber"]; ok {
		r.PhoneNumberSet = true
		if err := json.Unmarshal(v, &r.PhoneNumber); err != nil {
			return err
		}
	}
	return nil
}

// UpdateProfile merges the recognized fields into the stored record. With no
// recognized field present the operation fails before touching storage.
func (s *UserService) UpdateProfile(ctx context.Context, identity string, req *UpdateProfileRequest) (*models.Profile, error) {
	if identity == "" {
		return nil, failed(StageValidate, fmt.Errorf("%w: missing user id", common.ErrorValidation))
	}

	fields := map[string]any{}
	if req.DirectionSet || req.Direction != nil {
		fields[profiles.FieldDirection] = req.Direction
	}
	if req.PhoneNumberSet || req.PhoneNumber != nil {
		fields[profiles.FieldPhoneNumber] = req.PhoneNumber
	}
	if len(fields) == 0 {
		return nil, failed(StageValidate, fmt.Errorf("%w: nothing to update", common.ErrorValidation))
	}

	updated, err := s.store.UpdateFields(ctx, identity, fields)
	if err != nil {
		return nil, failed(StageStoreUpdate, err)
	}

	s.notify(ctx, &models.NotificationEvent{
		Identity: identity,
		Type:     models.NotificationProfileUpdated,
		Message:  "Profile updated",
	})

	return updated.Public(), nil
}

type AvatarRequest struct {
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
	Name        string `json:"name"`
}

type AvatarResult struct {
	User      *models.Profile
	AvatarKey string
}

// UploadAvatar writes the decoded image to blob storage first and only then
// points the profile at it, so a failed blob write leaves the stored
// avatarUrl unchanged.
func (s *UserService) UploadAvatar(ctx context.Context, identity string, req *AvatarRequest) (*AvatarResult, error) {
	if identity == "" {
		return nil, failed(StageValidate, fmt.Errorf("%w: missing user id", common.ErrorValidation))
	}
	if req.Data == "" || req.ContentType == "" || req.Name == "" {
		return nil, failed(StageValidate, fmt.Errorf("%w: missing image data, contentType or name", common.ErrorValidation))
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, failed(StageValidate, fmt.Errorf("%w: image data is not valid base64", common.ErrorValidation))
	}

	key := fmt.Sprintf("%s/%d-%s", identity, s.now().UnixMilli(), req.Name)

	locator, err := s.blobs.Put(ctx, key, decoded, req.ContentType)
	if err != nil {
		return nil, failed(StageBlobPut, err)
	}

	updated, err := s.store.UpdateFields(ctx, identity, map[string]any{profiles.FieldAvatarURL: locator})
	if err != nil {
		return nil, failed(StageStoreUpdate, err)
	}

	s.notify(ctx, &models.NotificationEvent{
		Identity: identity,
		Type:     models.NotificationAvatarUploaded,
		Message:  "Avatar uploaded",
		Extra:    map[string]string{"avatarKey": key},
	})

	return &AvatarResult{User: updated.Public(), AvatarKey: key}, nil
}

// notify publishes a lifecycle event. Failures are logged and swallowed:
// notifications are observability, not part of the operation's outcome.
func (s *UserService) notify(ctx context.Context, event *models.NotificationEvent) {
	if err := s.publisher.PublishNotification(ctx, event); err != nil {
		s.logger.Error(ctx, "notification publish failed", "stage", StageNotify, "identity", event.Identity, "type", event.Type, "error", err)
	}
}
