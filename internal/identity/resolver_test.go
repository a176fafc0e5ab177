package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/security/password"
)

func TestResolve_NewUserProvisioning(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)

	res, err := r.Resolve(ctx, "github", ProviderAssertion{
		SubjectID:   "999",
		Email:       "new@x.com",
		DisplayName: "New Person",
		AvatarURL:   strPtr("https://p.example/a.png"),
		AccessToken: "gho_1",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProvisioned, res.Outcome)

	acc := res.Account
	assert.Equal(t, "new@x.com", acc.Email)
	assert.Equal(t, "New Person", acc.Name)
	require.NotNil(t, acc.AvatarURL)
	assert.Equal(t, "https://p.example/a.png", *acc.AvatarURL)
	assert.NotNil(t, acc.EmailVerifiedAt)

	ids, err := s.Identities().ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "github", ids[0].Provider)
	assert.Equal(t, "999", ids[0].SubjectID)

	roles, err := s.Accounts().Roles(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, roles)
}

// La cuenta social recibe un hash aleatorio que nadie conoce: existe
// PasswordHash pero no es un método de login usable.
func TestResolve_ProvisionedPasswordIsNotUsable(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	res, err := newTestResolver(s, clock).Resolve(ctx, "github", assertion("1", "p@x.com", "P", ""))
	require.NoError(t, err)

	acc := res.Account
	require.NotNil(t, acc.PasswordHash)
	assert.True(t, len(*acc.PasswordHash) > 0)
	assert.False(t, acc.PasswordSet)
	assert.False(t, acc.HasUsablePassword())
	assert.False(t, password.Verify("", *acc.PasswordHash))
}

func TestResolve_NameFallsBackToNickname(t *testing.T) {
	clock := newClock()
	s := newMemStore(clock)
	a := assertion("1", "n@x.com", "", "")
	a.Nickname = "octocat"
	res, err := newTestResolver(s, clock).Resolve(context.Background(), "github", a)
	require.NoError(t, err)
	assert.Equal(t, "octocat", res.Account.Name)
}

func TestResolve_RepeatLoginIsIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)
	a := assertion("42", "same@x.com", "Same", "https://gh/1.png")

	first, err := r.Resolve(ctx, "github", a)
	require.NoError(t, err)

	a.AccessToken = "rotated"
	second, err := r.Resolve(ctx, "github", a)
	require.NoError(t, err)

	assert.Equal(t, OutcomeReturning, second.Outcome)
	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, first.Identity.ID, second.Identity.ID)
	assert.Equal(t, 1, countIdentities(t, s, first.Account.ID))
	assert.Equal(t, "rotated", second.Identity.AccessToken)
	assert.True(t, second.Identity.LastUsedAt.After(first.Identity.LastUsedAt))

	roles, _ := s.Accounts().Roles(ctx, first.Account.ID)
	assert.Len(t, roles, 1, "default role is assigned once")
}

func TestResolve_ReturningUpdatesAvatarAndKeepsRefreshToken(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)

	a := assertion("42", "r@x.com", "R", "https://gh/old.png")
	a.RefreshToken = strPtr("refresh-1")
	_, err := r.Resolve(ctx, "google", a)
	require.NoError(t, err)

	a.AvatarURL = strPtr("https://gh/new.png")
	a.RefreshToken = nil
	res, err := r.Resolve(ctx, "google", a)
	require.NoError(t, err)

	assert.Equal(t, "https://gh/new.png", *res.Account.AvatarURL)
	require.NotNil(t, res.Identity.RefreshToken)
	assert.Equal(t, "refresh-1", *res.Identity.RefreshToken)
}

func TestResolve_LinksExistingAccountByEmail(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	existing, err := s.Accounts().Create(ctx, repository.CreateAccountInput{Email: "Existing@X.com", Name: "Original Name"})
	require.NoError(t, err)

	res, err := newTestResolver(s, clock).Resolve(ctx, "google",
		assertion("g-7", "existing@x.com", "Provider Name", "https://g/a.png"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLinked, res.Outcome)
	assert.Equal(t, existing.ID, res.Account.ID)
	assert.Equal(t, "Original Name", res.Account.Name, "linking never overwrites the name")
	assert.Equal(t, "https://g/a.png", *res.Account.AvatarURL)
	assert.Equal(t, 1, countIdentities(t, s, existing.ID))

	roles, _ := s.Accounts().Roles(ctx, existing.ID)
	assert.Empty(t, roles, "creation hook only runs for new accounts")
}

func TestResolve_UniquenessAcrossProviders(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)

	a, err := r.Resolve(ctx, "github", assertion("1", "u@x.com", "U", ""))
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "google", assertion("1", "u@x.com", "U", ""))
	require.NoError(t, err)

	assert.Equal(t, a.Account.ID, b.Account.ID, "same email, one account")
	assert.Equal(t, 2, countIdentities(t, s, a.Account.ID))
}

func TestResolve_SecondSubjectSameProviderIsRejected(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)

	first, err := r.Resolve(ctx, "github", assertion("A", "dup@x.com", "Dup", ""))
	require.NoError(t, err)
	retries := testutil.ToFloat64(metrics.ResolutionConflictRetries)

	_, err = r.Resolve(ctx, "github", assertion("B", "dup@x.com", "Dup", ""))
	require.ErrorIs(t, err, ErrProviderAlreadyLinked)
	assert.NotErrorIs(t, err, ErrTransient)
	var pal *ProviderAlreadyLinkedError
	require.ErrorAs(t, err, &pal)
	assert.Equal(t, "github", pal.Provider)

	assert.Equal(t, retries, testutil.ToFloat64(metrics.ResolutionConflictRetries), "no retries for a permanent conflict")
	assert.Equal(t, 1, countIdentities(t, s, first.Account.ID))
	_, err = s.Identities().GetByProvider(ctx, "github", "B")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResolve_RejectsMalformedAssertion(t *testing.T) {
	clock := newClock()
	r := newTestResolver(newMemStore(clock), clock)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "github", ProviderAssertion{Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrInvalidAssertion)
	_, err = r.Resolve(ctx, "github", ProviderAssertion{SubjectID: "1"})
	assert.ErrorIs(t, err, ErrInvalidAssertion)
	_, err = r.Resolve(ctx, " ", assertion("1", "a@x.com", "", ""))
	assert.ErrorIs(t, err, ErrInvalidAssertion)
}

func TestResolve_ConcurrentSameIdentity(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	s := newMemStore(clock)
	r := newTestResolver(s, clock)

	var wg sync.WaitGroup
	results := make([]*Resolution, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.Resolve(ctx, "github", assertion("race", "race@x.com", "Race", ""))
			if assert.NoError(t, err) {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	provisioned := 0
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, results[0].Account.ID, res.Account.ID)
		if res.Outcome == OutcomeProvisioned {
			provisioned++
		}
	}
	assert.Equal(t, 1, provisioned)
	assert.Equal(t, 1, countIdentities(t, s, results[0].Account.ID))
}

// staleStore simula una lectura previa al commit de un request concurrente:
// las primeras N búsquedas reportan "no existe" aunque el dato ya esté.
type staleStore struct {
	repository.Store
	mu         sync.Mutex
	staleReads int
}

func (s *staleStore) stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleReads > 0 {
		s.staleReads--
		return true
	}
	return false
}

func (s *staleStore) Identities() repository.IdentityRepository {
	return staleIdentities{IdentityRepository: s.Store.Identities(), s: s}
}

func (s *staleStore) Accounts() repository.AccountRepository {
	return staleAccounts{AccountRepository: s.Store.Accounts(), s: s}
}

type staleIdentities struct {
	repository.IdentityRepository
	s *staleStore
}

func (r staleIdentities) GetByProvider(ctx context.Context, provider, subject string) (*repository.LinkedIdentity, error) {
	if r.s.stale() {
		return nil, repository.ErrNotFound
	}
	return r.IdentityRepository.GetByProvider(ctx, provider, subject)
}

type staleAccounts struct {
	repository.AccountRepository
	s *staleStore
}

func (r staleAccounts) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	if r.s.stale() {
		return nil, repository.ErrNotFound
	}
	return r.AccountRepository.GetByEmail(ctx, email)
}

func TestResolve_RetriesFromStepOneOnConflict(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	mem := newMemStore(clock)

	// otro request ya vinculó la identidad
	winner, err := newTestResolver(mem, clock).Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	require.NoError(t, err)

	// este request no lo vio en los pasos 1 y 3: intenta crear cuenta, choca con el email
	s := &staleStore{Store: mem, staleReads: 2}
	before := testutil.ToFloat64(metrics.ResolutionConflictRetries)

	res, err := newTestResolver(s, clock).Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	require.NoError(t, err, "conflict must not surface to the caller")

	assert.Equal(t, OutcomeReturning, res.Outcome)
	assert.Equal(t, winner.Account.ID, res.Account.ID)
	assert.Equal(t, 1, countIdentities(t, mem, winner.Account.ID))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ResolutionConflictRetries))

	roles, _ := mem.Accounts().Roles(ctx, winner.Account.ID)
	assert.Len(t, roles, 1, "rolled-back attempt left no side effects")
}

func TestResolve_ConflictOnLinkRetries(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	mem := newMemStore(clock)
	winner, err := newTestResolver(mem, clock).Resolve(ctx, "gitlab", assertion("x", "l@x.com", "L", ""))
	require.NoError(t, err)

	// solo el paso 1 es stale: encuentra la cuenta por email y choca al vincular
	s := &staleStore{Store: mem, staleReads: 1}
	res, err := newTestResolver(s, clock).Resolve(ctx, "gitlab", assertion("x", "l@x.com", "L", ""))
	require.NoError(t, err)
	assert.Equal(t, winner.Identity.ID, res.Identity.ID)
}

func TestResolve_RetriesExhausted(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	mem := newMemStore(clock)
	_, err := newTestResolver(mem, clock).Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	require.NoError(t, err)

	s := &staleStore{Store: mem, staleReads: 1000}
	_, err = newTestResolver(s, clock).Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	assert.ErrorIs(t, err, ErrTransient)
	assert.False(t, repository.IsConflict(err), "raw conflict is not exposed")
}

func TestResolve_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	mem := newMemStore(clock)
	_, err := newTestResolver(mem, clock).Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	require.NoError(t, err)

	r := NewResolver(ResolverDeps{
		Store:          &staleStore{Store: mem, staleReads: 1000},
		MaxRetries:     0,
		PasswordParams: cheapParams,
		Now:            clock.Now,
	})
	before := testutil.ToFloat64(metrics.ResolutionConflictRetries)
	_, err = r.Resolve(ctx, "github", assertion("7", "race@x.com", "Race", ""))
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ResolutionConflictRetries), "one conflicting attempt, no retry")
}
