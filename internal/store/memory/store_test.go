package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

func TestAccounts_EmailIsUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "Ana@Example.com", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", a.Email)

	_, err = s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "ANA@example.COM"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.Accounts().GetByEmail(ctx, "ana@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.Accounts().GetByEmail(ctx, "nobody@example.com")
	assert.True(t, repository.IsNotFound(err))
}

func TestIdentities_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "a@x.com"})
	b, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "b@x.com"})

	_, err := s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: a.ID, Provider: "github", SubjectID: "1"})
	require.NoError(t, err)

	// mismo (provider, subject) en otra cuenta
	_, err = s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: b.ID, Provider: "github", SubjectID: "1"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	// segunda identidad del mismo provider en la misma cuenta
	_, err = s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: a.ID, Provider: "github", SubjectID: "2"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: a.ID, Provider: "google", SubjectID: "1"})
	assert.NoError(t, err)
}

func TestIdentities_DeleteFreesSubject(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "a@x.com"})
	_, err := s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: a.ID, Provider: "github", SubjectID: "1"})
	require.NoError(t, err)

	n, err := s.Identities().Delete(ctx, a.ID, "github")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = s.Identities().GetByProvider(ctx, "github", "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err = s.Identities().Delete(ctx, a.ID, "github")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context) error {
		a, err := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "tx@x.com"})
		require.NoError(t, err)
		require.NoError(t, s.Accounts().AssignRole(ctx, a.ID, "member"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetByEmail(ctx, "tx@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInTx_NestedReusesTransaction(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.InTx(ctx, func(ctx context.Context) error {
		return s.InTx(ctx, func(ctx context.Context) error {
			_, err := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "n@x.com"})
			return err
		})
	})
	require.NoError(t, err)
	_, err = s.Accounts().GetByEmail(ctx, "n@x.com")
	assert.NoError(t, err)
}

func TestTouchAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return clock }

	a, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "a@x.com"})
	li, err := s.Identities().Create(ctx, repository.CreateIdentityInput{AccountID: a.ID, Provider: "google", SubjectID: "g"})
	require.NoError(t, err)

	avatar := "https://img/new.png"
	later := clock.Add(time.Hour)
	got, err := s.Identities().Touch(ctx, li.ID, repository.TouchIdentityInput{AccessToken: "tok2", AvatarURL: &avatar, LastUsedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "tok2", got.AccessToken)
	assert.Equal(t, later, got.LastUsedAt)

	list, err := s.Identities().ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, &avatar, list[0].AvatarURL)
}

func TestAssignRole_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "a@x.com"})
	require.NoError(t, s.Accounts().AssignRole(ctx, a.ID, "member"))
	require.NoError(t, s.Accounts().AssignRole(ctx, a.ID, "member"))
	roles, err := s.Accounts().Roles(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, roles)
}
