//go:build integration

package pg

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

var testStore *Store

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("idlink_test"),
		postgres.WithUsername("idlink"),
		postgres.WithPassword("idlink"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() { _ = container.Terminate(ctx) }()

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
			return 1
		}
		mig, err := NewMigrator(dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migrator: %v\n", err)
			return 1
		}
		if err := mig.Up(); err != nil {
			fmt.Fprintf(os.Stderr, "migrate up: %v\n", err)
			return 1
		}
		_ = mig.Close()

		testStore, err = Connect(ctx, Config{DSN: dsn})
		if err != nil {
			fmt.Fprintf(os.Stderr, "connect: %v\n", err)
			return 1
		}
		defer testStore.Close()
		return m.Run()
	}()
	os.Exit(code)
}

func TestIntegration_EmailUniqueIndexIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	_, err := testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "Case@Example.com"})
	require.NoError(t, err)

	_, err = testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "case@example.COM"})
	assert.True(t, repository.IsConflict(err), "got %v", err)

	got, err := testStore.Accounts().GetByEmail(ctx, "CASE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "case@example.com", got.Email)
}

func TestIntegration_ConcurrentLinkHasSingleWinner(t *testing.T) {
	ctx := context.Background()
	a, err := testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "race@example.com"})
	require.NoError(t, err)
	b, err := testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "race2@example.com"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, acc := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, acc string) {
			defer wg.Done()
			errs[i] = testStore.InTx(ctx, func(ctx context.Context) error {
				_, err := testStore.Identities().Create(ctx, repository.CreateIdentityInput{
					AccountID: acc, Provider: "github", SubjectID: "race-1", LastUsedAt: time.Now(),
				})
				return err
			})
		}(i, acc)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err != nil {
			require.True(t, repository.IsConflict(err), "unexpected error: %v", err)
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts)
}

func TestIntegration_TxRollbackLeavesNoAccount(t *testing.T) {
	ctx := context.Background()
	err := testStore.InTx(ctx, func(ctx context.Context) error {
		acc, err := testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "ghost@example.com"})
		if err != nil {
			return err
		}
		if err := testStore.Accounts().AssignRole(ctx, acc.ID, "member"); err != nil {
			return err
		}
		return repository.ErrConflict
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	_, err = testStore.Accounts().GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIntegration_IdentityLifecycle(t *testing.T) {
	ctx := context.Background()
	acc, err := testStore.Accounts().Create(ctx, repository.CreateAccountInput{Email: "life@example.com"})
	require.NoError(t, err)

	li, err := testStore.Identities().Create(ctx, repository.CreateIdentityInput{
		AccountID: acc.ID, Provider: "google", SubjectID: "g-1", AccessToken: "t1", LastUsedAt: time.Now(),
	})
	require.NoError(t, err)

	avatar := "https://g/a.png"
	touched, err := testStore.Identities().Touch(ctx, li.ID, repository.TouchIdentityInput{
		AccessToken: "t2", AvatarURL: &avatar, LastUsedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "t2", touched.AccessToken)
	assert.Equal(t, avatar, *touched.AvatarURL)

	n, err := testStore.Identities().Delete(ctx, acc.ID, "google")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := testStore.Identities().ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
