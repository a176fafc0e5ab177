package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/security/password"
	"github.com/dropDatabas3/idlink/internal/store/memory"
)

var cheapParams = password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

// tickingClock avanza un segundo por llamada para que last-used sea estrictamente creciente.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *tickingClock {
	return &tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestResolver(store repository.Store, clock *tickingClock) *Resolver {
	return NewResolver(ResolverDeps{
		Store:          store,
		OnCreate:       DefaultRoleHook("member"),
		MaxRetries:     3,
		Backoff:        time.Millisecond,
		PasswordParams: cheapParams,
		Now:            clock.Now,
	})
}

func newMemStore(clock *tickingClock) *memory.Store {
	s := memory.New()
	s.Now = clock.Now
	return s
}

func strPtr(s string) *string { return &s }

func assertion(subject, email, name, avatar string) ProviderAssertion {
	a := ProviderAssertion{SubjectID: subject, Email: email, DisplayName: name, AccessToken: "tok-" + subject}
	if avatar != "" {
		a.AvatarURL = strPtr(avatar)
	}
	return a
}

func countIdentities(t *testing.T, s repository.Store, accountID string) int {
	t.Helper()
	ids, err := s.Identities().ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	return len(ids)
}

// usablePassword simula que el titular eligió una password.
func usablePassword(t *testing.T, s repository.Store, accountID string) {
	t.Helper()
	hash, err := password.Hash(cheapParams, "chosen-by-user-1")
	require.NoError(t, err)
	require.NoError(t, s.Accounts().SetPassword(context.Background(), accountID, hash, true))
}
