package profiles

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func profileRows(p *models.Profile) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uuid", "document", "name", "last_name", "email",
		"password", "direction", "phone_number", "avatar_url", "created_at"}).
		AddRow(p.Identity, p.Kind, p.Name, p.LastName, p.Email,
			p.PasswordHash, p.Direction, p.PhoneNumber, p.AvatarURL, p.CreatedAt)
}

func sampleProfile() *models.Profile {
	return &models.Profile{
		Identity:     "u-1",
		Kind:         models.ProfileKind,
		Name:         "Ana",
		LastName:     "Lee",
		Email:        "a@x.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    "2026-01-02T03:04:05Z",
	}
}

func TestCreateIfAbsent_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+profiles\s*\(.+\)\s*VALUES\s*\(.+\)\s*ON\s+CONFLICT\s*\(uuid,\s*document\)\s*DO\s+NOTHING\s*$`

	p := sampleProfile()
	mock.ExpectExec(q).
		WithArgs(p.Identity, p.Kind, p.Name, p.LastName, p.Email, p.PasswordHash,
			p.Direction, p.PhoneNumber, p.AvatarURL, p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.CreateIfAbsent(context.Background(), p); err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}
}

func TestCreateIfAbsent_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := sampleProfile()
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+profiles`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateIfAbsent(context.Background(), p)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestCreateIfAbsent_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+profiles`).
		WillReturnError(errors.New("db down"))

	err := repo.CreateIfAbsent(context.Background(), sampleProfile())
	if !errors.Is(err, common.ErrorDependency) {
		t.Fatalf("expected ErrorDependency, got %v", err)
	}
	if !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByIdentity_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.+\s+FROM\s+profiles\s+WHERE\s+uuid\s*=\s*\$1\s+AND\s+document\s*=\s*\$2\s*$`

	p := sampleProfile()
	mock.ExpectQuery(q).
		WithArgs("u-1", models.ProfileKind).
		WillReturnRows(profileRows(p))

	got, err := repo.GetByIdentity(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetByIdentity error: %v", err)
	}
	if got.Identity != "u-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestGetByIdentity_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+profiles\s+WHERE\s+uuid`).
		WithArgs("missing", models.ProfileKind).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByIdentity(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindByEmail_FirstMatchOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.+\s+FROM\s+profiles\s+WHERE\s+email\s*=\s*\$1\s+AND\s+document\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s+LIMIT\s+1\s*$`

	p := sampleProfile()
	mock.ExpectQuery(q).
		WithArgs("a@x.com", models.ProfileKind).
		WillReturnRows(profileRows(p))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.Identity != "u-1" {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestUpdateFields_ReturnsNewRecord(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+profiles\s+SET\s+direction\s*=\s*\$3,\s*phone_number\s*=\s*\$4\s+WHERE\s+uuid\s*=\s*\$1\s+AND\s+document\s*=\s*\$2\s+RETURNING\s+`

	p := sampleProfile()
	direction := "Main St 1"
	phone := "+34600000000"
	p.Direction = &direction
	p.PhoneNumber = &phone

	mock.ExpectQuery(q).
		WithArgs("u-1", models.ProfileKind, direction, phone).
		WillReturnRows(profileRows(p))

	got, err := repo.UpdateFields(context.Background(), "u-1", map[string]any{
		FieldDirection:   direction,
		FieldPhoneNumber: phone,
	})
	if err != nil {
		t.Fatalf("UpdateFields error: %v", err)
	}
	if got.Direction == nil || *got.Direction != direction {
		t.Fatalf("unexpected direction: %+v", got.Direction)
	}
}

func TestUpdateFields_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+profiles\s+SET`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateFields(context.Background(), "missing", map[string]any{FieldDirection: "x"})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateFields_InputErrors(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.UpdateFields(context.Background(), "u-1", map[string]any{})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation for empty fields, got %v", err)
	}

	_, err = repo.UpdateFields(context.Background(), "u-1", map[string]any{"email": "b@x.com"})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected ErrorValidation for unknown field, got %v", err)
	}
}
