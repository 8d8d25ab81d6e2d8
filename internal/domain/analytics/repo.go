package analytics

import "context"

// CounterRepository stores Counters by scope. A scope is either GlobalScope
// or the id of the user who created the claims.
type CounterRepository interface {
	// Get returns the counters for scope; a missing scope reads as zero.
	Get(ctx context.Context, scope string) (*Counters, error)
	Save(ctx context.Context, scope string, c *Counters) error
	Delete(ctx context.Context, scope string) error
	// UserScopes lists the user scopes that have stored counters.
	UserScopes(ctx context.Context) ([]string, error)
}

const GlobalScope = ""
