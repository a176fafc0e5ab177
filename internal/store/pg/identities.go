package pg

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

const identityColumns = `id, account_id, provider, subject_id, access_token, refresh_token,
	avatar_url, last_used_at, created_at`

type identityRepo struct{ s *Store }

func scanIdentity(row pgx.Row) (*repository.LinkedIdentity, error) {
	var li repository.LinkedIdentity
	err := row.Scan(
		&li.ID, &li.AccountID, &li.Provider, &li.SubjectID, &li.AccessToken, &li.RefreshToken,
		&li.AvatarURL, &li.LastUsedAt, &li.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func (r *identityRepo) GetByProvider(ctx context.Context, provider, subjectID string) (*repository.LinkedIdentity, error) {
	row := r.s.q(ctx).QueryRow(ctx,
		`SELECT `+identityColumns+` FROM linked_identities WHERE provider = $1 AND subject_id = $2`,
		provider, subjectID)
	li, err := scanIdentity(row)
	if err != nil {
		return nil, mapErr("get identity by provider", err)
	}
	return li, nil
}

func (r *identityRepo) ListByAccount(ctx context.Context, accountID string) ([]repository.LinkedIdentity, error) {
	rows, err := r.s.q(ctx).Query(ctx,
		`SELECT `+identityColumns+` FROM linked_identities WHERE account_id = $1 ORDER BY created_at, provider`,
		accountID)
	if err != nil {
		return nil, mapErr("list identities", err)
	}
	defer rows.Close()

	var out []repository.LinkedIdentity
	for rows.Next() {
		li, err := scanIdentity(rows)
		if err != nil {
			return nil, mapErr("scan identity", err)
		}
		out = append(out, *li)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list identities", err)
	}
	return out, nil
}

func (r *identityRepo) Create(ctx context.Context, in repository.CreateIdentityInput) (*repository.LinkedIdentity, error) {
	const query = `
		INSERT INTO linked_identities (id, account_id, provider, subject_id, access_token, refresh_token, avatar_url, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + identityColumns

	row := r.s.q(ctx).QueryRow(ctx, query,
		uuid.NewString(), in.AccountID, in.Provider, in.SubjectID,
		in.AccessToken, in.RefreshToken, in.AvatarURL, in.LastUsedAt.UTC(),
	)
	li, err := scanIdentity(row)
	if err != nil {
		return nil, mapErr("create identity", err)
	}
	return li, nil
}

func (r *identityRepo) Touch(ctx context.Context, id string, in repository.TouchIdentityInput) (*repository.LinkedIdentity, error) {
	const query = `
		UPDATE linked_identities
		SET access_token = $2, refresh_token = $3, avatar_url = $4, last_used_at = $5
		WHERE id = $1
		RETURNING ` + identityColumns

	row := r.s.q(ctx).QueryRow(ctx, query, id, in.AccessToken, in.RefreshToken, in.AvatarURL, in.LastUsedAt.UTC())
	li, err := scanIdentity(row)
	if err != nil {
		return nil, mapErr("touch identity", err)
	}
	return li, nil
}

func (r *identityRepo) Delete(ctx context.Context, accountID, provider string) (int64, error) {
	tag, err := r.s.q(ctx).Exec(ctx,
		`DELETE FROM linked_identities WHERE account_id = $1 AND provider = $2`, accountID, provider)
	if err != nil {
		return 0, mapErr("delete identity", err)
	}
	return tag.RowsAffected(), nil
}
