package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

func newTestRepository(mock pgxmock.PgxPoolIface) *ProfileRepository {
	return &ProfileRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func profileRowColumns() []string {
	return []string{
		"id", "email", "first_name", "last_name", "display_name", "photo_url",
		"created_at", "last_login_at", "last_updated_at", "is_email_verified",
	}
}

func TestProfileRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	createdAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	lastLoginAt := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(profileRowColumns()).AddRow(
		"uid-1", "jane@example.com", "Jane", "Doe", "Jane Doe", nil,
		createdAt, lastLoginAt, nil, true,
	)

	mock.ExpectQuery(`SELECT id, email, .+ FROM profiles WHERE id = \$1`).
		WithArgs("uid-1").
		WillReturnRows(rows)

	profile, err := repo.Get(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if profile.ID != "uid-1" || profile.Email != "jane@example.com" || profile.DisplayName != "Jane Doe" {
		t.Fatalf("profile = %+v", profile)
	}
	if profile.PhotoURL != "" {
		t.Fatalf("PhotoURL = %q, want empty for NULL column", profile.PhotoURL)
	}
	if profile.LastUpdatedAt != nil {
		t.Fatalf("LastUpdatedAt = %v, want nil", profile.LastUpdatedAt)
	}
	if !profile.CreatedAt.Equal(createdAt) || !profile.LastLoginAt.Equal(lastLoginAt) {
		t.Fatalf("timestamps = %v / %v", profile.CreatedAt, profile.LastLoginAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	mock.ExpectQuery(`SELECT id, email, .+ FROM profiles WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(profileRowColumns()))

	_, err = repo.Get(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProfileRepository_FindByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	createdAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(profileRowColumns()).AddRow(
		"uid-1", "jane@example.com", "Jane", "Doe", "Jane Doe", "https://cdn.example.com/a.png",
		createdAt, createdAt, nil, false,
	)

	mock.ExpectQuery(`SELECT id, email, .+ FROM profiles WHERE email = \$1 LIMIT 1`).
		WithArgs("jane@example.com").
		WillReturnRows(rows)

	profile, err := repo.FindByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if profile.PhotoURL != "https://cdn.example.com/a.png" {
		t.Fatalf("PhotoURL = %q", profile.PhotoURL)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	createdAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	profile := domain.UserProfile{
		ID:          "uid-1",
		Email:       "jane@example.com",
		FirstName:   "Jane",
		LastName:    "Doe",
		DisplayName: "Jane Doe",
		CreatedAt:   createdAt,
		LastLoginAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO profiles .+ ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs(
			profile.ID,
			profile.Email,
			profile.FirstName,
			profile.LastName,
			profile.DisplayName,
			nil,
			profile.CreatedAt,
			profile.LastLoginAt,
			profile.LastUpdatedAt,
			profile.IsEmailVerified,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Put(context.Background(), profile); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_Patch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	firstName := "Jo"
	displayName := "Jo Doe"
	updatedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE profiles SET first_name = \$1, display_name = \$2, last_updated_at = \$3 WHERE id = \$4`).
		WithArgs(firstName, displayName, updatedAt, "uid-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Patch(context.Background(), "uid-1", domain.ProfilePatch{
		FirstName:     &firstName,
		DisplayName:   &displayName,
		LastUpdatedAt: &updatedAt,
	})
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProfileRepository_PatchMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	email := "new@example.com"
	mock.ExpectExec(`UPDATE profiles SET email = \$1 WHERE id = \$2`).
		WithArgs(email, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Patch(context.Background(), "ghost", domain.ProfilePatch{Email: &email})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProfileRepository_PatchEmptyIsNoOp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	if err := repo.Patch(context.Background(), "uid-1", domain.ProfilePatch{}); err != nil {
		t.Fatalf("empty patch returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}

func TestProfileRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := newTestRepository(mock)

	mock.ExpectExec(`DELETE FROM profiles WHERE id = \$1`).
		WithArgs("uid-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "uid-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
