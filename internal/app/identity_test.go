package app

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestIdentityRegistry_Register_Same_Name_Twice(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(0)

	// When "bob" registers twice
	_, first := reg.Register("bob")
	_, second := reg.Register("bob")

	// Then only the first call succeeds
	req.NoError(first)
	req.ErrorIs(second, domain.ErrUsernameTaken)
	req.Equal(1, reg.Len())
	req.True(reg.Exists("bob"))
}

func TestIdentityRegistry_Register_Empty_Name(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(0)

	_, err := reg.Register("")

	req.ErrorIs(err, domain.ErrUsernameEmpty)
	req.Zero(reg.Len())
	req.False(reg.Exists(""))
}

func TestIdentityRegistry_Register_Long_Name(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(0)
	name := strings.Repeat("x", 200)

	_, err := reg.Register(name)

	req.NoError(err)
	req.True(reg.Exists(name))
}

func TestIdentityRegistry_Exists_Unknown_Name(t *testing.T) {
	reg := NewIdentityRegistry(0)
	require.False(t, reg.Exists("ghost"))
}

func TestIdentityRegistry_Concurrent_Register_Admits_One(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(0)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.Register("carol"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	req.Equal(1, ok)
	req.Equal(1, reg.Len())
}

func TestIdentityRegistry_TTL_Expires_Names(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	_, err := reg.Register("dave")
	req.NoError(err)
	req.True(reg.Exists("dave"))

	// When the ttl elapses
	now = now.Add(time.Minute)

	// Then the name is free again
	req.False(reg.Exists("dave"))
	req.Equal(1, reg.Sweep())
	req.Zero(reg.Len())
	_, err = reg.Register("dave")
	req.NoError(err)
}

func TestIdentityRegistry_Sweep_Without_TTL_Keeps_Everything(t *testing.T) {
	req := require.New(t)
	reg := NewIdentityRegistry(0)
	_, _ = reg.Register("erin")

	req.Zero(reg.Sweep())
	req.Equal(1, reg.Len())
}
