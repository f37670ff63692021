package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NazwanSM/nusavarta-auth/internal/core/domain"
	"github.com/NazwanSM/nusavarta-auth/internal/core/port"
	"github.com/NazwanSM/nusavarta-auth/internal/repository"
)

const profileColumns = "id, email, first_name, last_name, display_name, photo_url, created_at, last_login_at, last_updated_at, is_email_verified"

// ProfileRepository implements port.ProfileRepository using PostgreSQL. It
// backs self-hosted deployments where the profile documents do not live in
// Firestore.
type ProfileRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *ProfileRepository) WithTx(tx pgx.Tx) *ProfileRepository {
	if tx == nil {
		return r
	}
	return &ProfileRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.UserProfile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns).
		From("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	return r.scanProfile(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns).
		From("profiles").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile by email sql: %w", err)
	}

	return r.scanProfile(r.exec.QueryRow(ctx, stmt, args...))
}

func (r *ProfileRepository) scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var (
		profile       domain.UserProfile
		photoURL      sql.NullString
		lastUpdatedAt *time.Time
	)

	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FirstName,
		&profile.LastName,
		&profile.DisplayName,
		&photoURL,
		&profile.CreatedAt,
		&profile.LastLoginAt,
		&lastUpdatedAt,
		&profile.IsEmailVerified,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if photoURL.Valid {
		profile.PhotoURL = photoURL.String
	}
	profile.LastUpdatedAt = lastUpdatedAt

	return &profile, nil
}

// Put inserts or fully replaces a profile row.
func (r *ProfileRepository) Put(ctx context.Context, profile domain.UserProfile) error {
	var photoValue any
	if profile.PhotoURL != "" {
		photoValue = profile.PhotoURL
	}

	stmt, args, err := r.builder.Insert("profiles").
		Columns(
			"id",
			"email",
			"first_name",
			"last_name",
			"display_name",
			"photo_url",
			"created_at",
			"last_login_at",
			"last_updated_at",
			"is_email_verified",
		).
		Values(
			profile.ID,
			profile.Email,
			profile.FirstName,
			profile.LastName,
			profile.DisplayName,
			photoValue,
			profile.CreatedAt,
			profile.LastLoginAt,
			profile.LastUpdatedAt,
			profile.IsEmailVerified,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			display_name = EXCLUDED.display_name,
			photo_url = EXCLUDED.photo_url,
			created_at = EXCLUDED.created_at,
			last_login_at = EXCLUDED.last_login_at,
			last_updated_at = EXCLUDED.last_updated_at,
			is_email_verified = EXCLUDED.is_email_verified`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

// Patch applies only the fields present on the patch. An empty patch is a
// no-op rather than an error.
func (r *ProfileRepository) Patch(ctx context.Context, id string, patch domain.ProfilePatch) error {
	if patch.IsZero() {
		return nil
	}

	query := r.builder.Update("profiles")
	if patch.FirstName != nil {
		query = query.Set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		query = query.Set("last_name", *patch.LastName)
	}
	if patch.DisplayName != nil {
		query = query.Set("display_name", *patch.DisplayName)
	}
	if patch.PhotoURL != nil {
		query = query.Set("photo_url", *patch.PhotoURL)
	}
	if patch.Email != nil {
		query = query.Set("email", *patch.Email)
	}
	if patch.LastLoginAt != nil {
		query = query.Set("last_login_at", *patch.LastLoginAt)
	}
	if patch.LastUpdatedAt != nil {
		query = query.Set("last_updated_at", *patch.LastUpdatedAt)
	}

	stmt, args, err := query.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update profile sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete profile sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	return nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
