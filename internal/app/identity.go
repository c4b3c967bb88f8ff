package app

import (
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// IdentityRegistry holds registered pseudonyms. Names are unique for as long
// as they are held; with a zero ttl they are held for the process lifetime.
type IdentityRegistry struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	ttl   time.Duration
	now   func() time.Time
}

func NewIdentityRegistry(ttl time.Duration) *IdentityRegistry {
	return &IdentityRegistry{
		users: make(map[string]*domain.User),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (r *IdentityRegistry) expired(u *domain.User, now time.Time) bool {
	return r.ttl > 0 && now.Sub(u.RegisteredAt) >= r.ttl
}

// Register inserts name. It fails with domain.ErrUsernameEmpty or
// domain.ErrUsernameTaken and has no other effect.
func (r *IdentityRegistry) Register(name string) (*domain.User, error) {
	if err := domain.ValidateUsername(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if u, ok := r.users[name]; ok && !r.expired(u, now) {
		return nil, domain.ErrUsernameTaken
	}
	u, err := domain.NewUser(name)
	if err != nil {
		return nil, err
	}
	u.RegisteredAt = now
	r.users[name] = u
	log.Info().Str("module", "app.identity").Str("username", name).Int("registered", len(r.users)).Msg("registered")
	return u, nil
}

// Lookup returns the registered user for name.
func (r *IdentityRegistry) Lookup(name string) (*domain.User, bool) {
	if name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[name]
	if !ok || r.expired(u, r.now()) {
		return nil, false
	}
	return u, true
}

func (r *IdentityRegistry) Exists(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

func (r *IdentityRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Sweep drops expired pseudonyms and returns how many were removed.
func (r *IdentityRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for name, u := range r.users {
		if r.expired(u, now) {
			delete(r.users, name)
			n++
		}
	}
	if n > 0 {
		log.Info().Str("module", "app.identity").Int("expired", n).Int("registered", len(r.users)).Msg("swept pseudonyms")
	}
	return n
}
