package pg

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

const accountColumns = `id, email, name, password_hash, password_set, email_verified_at,
	avatar_url, avatar_upload, last_login_at, created_at, updated_at`

type accountRepo struct{ s *Store }

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var a repository.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.PasswordSet, &a.EmailVerifiedAt,
		&a.AvatarURL, &a.AvatarUpload, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	row := r.s.q(ctx).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapErr("get account by id", err)
	}
	return a, nil
}

func (r *accountRepo) Lock(ctx context.Context, id string) error {
	var got string
	err := r.s.q(ctx).QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&got)
	if err != nil {
		return mapErr("lock account", err)
	}
	return nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	row := r.s.q(ctx).QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email))
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapErr("get account by email", err)
	}
	return a, nil
}

func (r *accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	const query = `
		INSERT INTO accounts (id, email, name, password_hash, password_set, email_verified_at, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	row := r.s.q(ctx).QueryRow(ctx, query,
		uuid.NewString(),
		strings.ToLower(strings.TrimSpace(in.Email)),
		in.Name,
		in.PasswordHash,
		in.PasswordSet,
		in.EmailVerifiedAt,
		in.AvatarURL,
	)
	a, err := scanAccount(row)
	if err != nil {
		return nil, mapErr("create account", err)
	}
	return a, nil
}

func (r *accountRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.s.q(ctx).Exec(ctx, query, args...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepo) UpdateAvatar(ctx context.Context, id string, url *string) error {
	return r.exec(ctx, "update avatar",
		`UPDATE accounts SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (r *accountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "update last login",
		`UPDATE accounts SET last_login_at = $2, updated_at = now() WHERE id = $1`, id, at.UTC())
}

func (r *accountRepo) SetPassword(ctx context.Context, id, hash string, usable bool) error {
	return r.exec(ctx, "set password",
		`UPDATE accounts SET password_hash = $2, password_set = $3, updated_at = now() WHERE id = $1`,
		id, hash, usable)
}

func (r *accountRepo) AssignRole(ctx context.Context, id, role string) error {
	_, err := r.s.q(ctx).Exec(ctx,
		`INSERT INTO account_roles (account_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, role)
	if err != nil {
		return mapErr("assign role", err)
	}
	return nil
}

func (r *accountRepo) Roles(ctx context.Context, id string) ([]string, error) {
	rows, err := r.s.q(ctx).Query(ctx,
		`SELECT role FROM account_roles WHERE account_id = $1 ORDER BY role`, id)
	if err != nil {
		return nil, mapErr("list roles", err)
	}
	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr("scan roles", err)
	}
	return roles, nil
}
