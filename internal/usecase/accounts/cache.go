package accounts

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/simaogato/bankflow/internal/domain"
	"github.com/simaogato/bankflow/internal/usecase/reconciler"
)

// Cache holds the in-memory account set shared between the request builder
// (read-only, for populating choices) and the reconciler patch path. Only
// Replace and ApplyPatch write to it; Replace carries authoritative data
// from the Authority and supersedes any speculative patch.
type Cache struct {
	log zerolog.Logger

	mu       sync.RWMutex
	accounts []*domain.Account
}

// NewCache creates an empty account cache
func NewCache(log zerolog.Logger) *Cache {
	return &Cache{
		log: log.With().Str("component", "account_cache").Logger(),
	}
}

// Replace swaps in a freshly listed account set
func (c *Cache) Replace(accounts []*domain.Account) {
	copied := make([]*domain.Account, len(accounts))
	for i, acc := range accounts {
		a := *acc
		copied[i] = &a
	}

	c.mu.Lock()
	c.accounts = copied
	c.mu.Unlock()

	c.log.Debug().Int("count", len(copied)).Msg("Account cache replaced")
}

// List returns a copy of the cached account set
func (c *Cache) List() []*domain.Account {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]*domain.Account, len(c.accounts))
	for i, acc := range c.accounts {
		a := *acc
		copied[i] = &a
	}
	return copied
}

// ApplyPatch layers a speculative balance adjustment over the cached set.
// Called only after a confirmed successful execute.
func (c *Cache) ApplyPatch(patch reconciler.Patch) {
	c.mu.Lock()
	c.accounts = reconciler.Apply(c.accounts, patch)
	c.mu.Unlock()

	c.log.Debug().
		Str("from", patch.FromAccountID).
		Str("to", patch.ToAccountID).
		Str("amount", patch.Amount.String()).
		Msg("Optimistic balance patch applied")
}
