// Package memory implementa repository.Store en memoria.
//
// Sirve para despliegues de un solo proceso y para tests: aplica las mismas
// reglas de unicidad que el esquema Postgres y las transacciones se serializan
// con rollback por snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
)

type txKey struct{}

// Store es un repository.Store en memoria.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state

	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

type state struct {
	accounts   map[string]repository.Account
	byEmail    map[string]string
	identities map[string]repository.LinkedIdentity
	bySubject  map[string]string
	roles      map[string]map[string]struct{}
}

func newState() state {
	return state{
		accounts:   map[string]repository.Account{},
		byEmail:    map[string]string{},
		identities: map[string]repository.LinkedIdentity{},
		bySubject:  map[string]string{},
		roles:      map[string]map[string]struct{}{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.byEmail {
		c.byEmail[k] = v
	}
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.bySubject {
		c.bySubject[k] = v
	}
	for k, set := range s.roles {
		cp := make(map[string]struct{}, len(set))
		for r := range set {
			cp[r] = struct{}{}
		}
		c.roles[k] = cp
	}
	return c
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState(), Now: time.Now}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Accounts() repository.AccountRepository   { return accountRepo{s} }
func (s *Store) Identities() repository.IdentityRepository { return identityRepo{s} }

func (s *Store) Ping(context.Context) error { return nil }

// InTx serializa transacciones; si fn falla se restaura el snapshot previo.
// Llamadas anidadas reutilizan la transacción en curso.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// write toma el lock de escritura. Fuera de una transacción además toma txMu,
// así un rollback por snapshot nunca pisa escrituras ajenas.
func (s *Store) write(ctx context.Context, fn func(d *state) error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func subjectKey(provider, subject string) string {
	return provider + "\x00" + subject
}

func normEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// ─── accounts ───

type accountRepo struct{ s *Store }

func (r accountRepo) GetByID(_ context.Context, id string) (*repository.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.data.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

// Lock es no-op: InTx ya serializa las transacciones.
func (r accountRepo) Lock(_ context.Context, id string) error {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.data.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r accountRepo) GetByEmail(_ context.Context, email string) (*repository.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.data.byEmail[normEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := r.s.data.accounts[id]
	return &a, nil
}

func (r accountRepo) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	email := normEmail(in.Email)
	now := r.s.now()

	var a repository.Account
	err := r.s.write(ctx, func(d *state) error {
		if _, dup := d.byEmail[email]; dup {
			return repository.ErrConflict
		}
		a = repository.Account{
			ID:              uuid.NewString(),
			Email:           email,
			Name:            in.Name,
			PasswordHash:    in.PasswordHash,
			PasswordSet:     in.PasswordSet,
			EmailVerifiedAt: in.EmailVerifiedAt,
			AvatarURL:       in.AvatarURL,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		d.accounts[a.ID] = a
		d.byEmail[email] = a.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r accountRepo) update(ctx context.Context, id string, fn func(a *repository.Account)) error {
	now := r.s.now()
	return r.s.write(ctx, func(d *state) error {
		a, ok := d.accounts[id]
		if !ok {
			return repository.ErrNotFound
		}
		fn(&a)
		a.UpdatedAt = now
		d.accounts[id] = a
		return nil
	})
}

func (r accountRepo) UpdateAvatar(ctx context.Context, id string, url *string) error {
	return r.update(ctx, id, func(a *repository.Account) { a.AvatarURL = url })
}

func (r accountRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(a *repository.Account) {
		t := at.UTC()
		a.LastLoginAt = &t
	})
}

func (r accountRepo) SetPassword(ctx context.Context, id, hash string, usable bool) error {
	return r.update(ctx, id, func(a *repository.Account) {
		h := hash
		a.PasswordHash = &h
		a.PasswordSet = usable
	})
}

// SetAvatarUpload registra un asset subido. No forma parte del contrato de
// repositorio (lo maneja el módulo de media); se expone para tests y seeds.
func (s *Store) SetAvatarUpload(id string, url *string) error {
	return accountRepo{s}.update(context.Background(), id, func(a *repository.Account) { a.AvatarUpload = url })
}

func (r accountRepo) AssignRole(ctx context.Context, id, role string) error {
	return r.s.write(ctx, func(d *state) error {
		if _, ok := d.accounts[id]; !ok {
			return repository.ErrNotFound
		}
		set := d.roles[id]
		if set == nil {
			set = map[string]struct{}{}
			d.roles[id] = set
		}
		set[role] = struct{}{}
		return nil
	})
}

func (r accountRepo) Roles(_ context.Context, id string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]string, 0, len(r.s.data.roles[id]))
	for role := range r.s.data.roles[id] {
		out = append(out, role)
	}
	return out, nil
}

// ─── identities ───

type identityRepo struct{ s *Store }

func (r identityRepo) GetByProvider(_ context.Context, provider, subjectID string) (*repository.LinkedIdentity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.data.bySubject[subjectKey(provider, subjectID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	li := r.s.data.identities[id]
	return &li, nil
}

func (r identityRepo) ListByAccount(_ context.Context, accountID string) ([]repository.LinkedIdentity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []repository.LinkedIdentity
	for _, li := range r.s.data.identities {
		if li.AccountID == accountID {
			out = append(out, li)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r identityRepo) Create(ctx context.Context, in repository.CreateIdentityInput) (*repository.LinkedIdentity, error) {
	now := r.s.now()
	var li repository.LinkedIdentity
	err := r.s.write(ctx, func(d *state) error {
		if _, ok := d.accounts[in.AccountID]; !ok {
			return repository.ErrNotFound
		}
		key := subjectKey(in.Provider, in.SubjectID)
		if _, dup := d.bySubject[key]; dup {
			return repository.ErrConflict
		}
		for _, other := range d.identities {
			if other.AccountID == in.AccountID && other.Provider == in.Provider {
				return repository.ErrConflict
			}
		}
		li = repository.LinkedIdentity{
			ID:           uuid.NewString(),
			AccountID:    in.AccountID,
			Provider:     in.Provider,
			SubjectID:    in.SubjectID,
			AccessToken:  in.AccessToken,
			RefreshToken: in.RefreshToken,
			AvatarURL:    in.AvatarURL,
			LastUsedAt:   in.LastUsedAt.UTC(),
			CreatedAt:    now,
		}
		d.identities[li.ID] = li
		d.bySubject[key] = li.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func (r identityRepo) Touch(ctx context.Context, id string, in repository.TouchIdentityInput) (*repository.LinkedIdentity, error) {
	var li repository.LinkedIdentity
	err := r.s.write(ctx, func(d *state) error {
		cur, ok := d.identities[id]
		if !ok {
			return repository.ErrNotFound
		}
		cur.AccessToken = in.AccessToken
		cur.RefreshToken = in.RefreshToken
		cur.AvatarURL = in.AvatarURL
		cur.LastUsedAt = in.LastUsedAt.UTC()
		d.identities[id] = cur
		li = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &li, nil
}

func (r identityRepo) Delete(ctx context.Context, accountID, provider string) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(d *state) error {
		for id, li := range d.identities {
			if li.AccountID == accountID && li.Provider == provider {
				delete(d.identities, id)
				delete(d.bySubject, subjectKey(li.Provider, li.SubjectID))
				n++
			}
		}
		return nil
	})
	return n, err
}

func sortByCreation(ids []repository.LinkedIdentity) {
	sort.SliceStable(ids, func(i, j int) bool {
		if ids[i].CreatedAt.Equal(ids[j].CreatedAt) {
			return ids[i].Provider < ids[j].Provider
		}
		return ids[i].CreatedAt.Before(ids[j].CreatedAt)
	})
}
