package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/server/migrations"
	"github.com/avicente/cardholder/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// fieldColumns maps updatable attribute names to their columns. UpdateFields
// rejects anything outside this set.
var fieldColumns = map[string]string{
	FieldDirection:   "direction",
	FieldPhoneNumber: "phone_number",
	FieldAvatarURL:   "avatar_url",
}

const profileColumns = "uuid, document, name, last_name, email, password, direction, phone_number, avatar_url, created_at"

// PostgresRepository is the relational profile store, used where DynamoDB is
// not available (local runs, CI).
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	err := row.Scan(&profile.Identity, &profile.Kind, &profile.Name, &profile.LastName,
		&profile.Email, &profile.PasswordHash, &profile.Direction, &profile.PhoneNumber,
		&profile.AvatarURL, &profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: db error: %v", common.ErrorDependency, err)
	}
	return profile, nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, profile *models.Profile) error {

	query :=
		`INSERT INTO profiles (uuid, document, name, last_name, email, password, direction, phone_number, avatar_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (uuid, document) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query,
		profile.Identity, profile.Kind, profile.Name, profile.LastName, profile.Email,
		profile.PasswordHash, profile.Direction, profile.PhoneNumber, profile.AvatarURL, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: db error: %v", common.ErrorDependency, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: db error: %v", common.ErrorDependency, err)
	}
	if rows == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) GetByIdentity(ctx context.Context, identity string) (*models.Profile, error) {
	query :=
		`SELECT ` + profileColumns + ` FROM profiles
		 WHERE uuid = $1 AND document = $2
		 `

	return scanProfile(r.db.QueryRowContext(ctx, query, identity, models.ProfileKind))
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	// First match in insertion order; duplicates may exist and are not an error.
	query :=
		`SELECT ` + profileColumns + ` FROM profiles
		 WHERE email = $1 AND document = $2
		 ORDER BY created_at
		 LIMIT 1
		 `

	return scanProfile(r.db.QueryRowContext(ctx, query, email, models.ProfileKind))
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, identity string, fields map[string]any) (*models.Profile, error) {
	if len(fields) == 0 {
		return nil, common.ErrorValidation
	}

	assignments := make([]string, 0, len(fields))
	args := []any{identity, models.ProfileKind}
	for _, name := range []string{FieldDirection, FieldPhoneNumber, FieldAvatarURL} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", fieldColumns[name], len(args)))
	}
	if len(assignments) != len(fields) {
		return nil, fmt.Errorf("%w: unknown update field", common.ErrorValidation)
	}

	query :=
		`UPDATE profiles SET ` + strings.Join(assignments, ", ") + `
		 WHERE uuid = $1 AND document = $2
		 RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRowContext(ctx, query, args...))
}
