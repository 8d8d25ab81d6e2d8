package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/healthchain/portal/internal/platform/kv"
)

const (
	globalKey  = "analytics:global"
	userPrefix = "analytics:user:"
)

type counterRepoKV struct {
	store kv.Store
}

func NewCounterRepoKV(store kv.Store) CounterRepository {
	return &counterRepoKV{store: store}
}

func scopeKey(scope string) string {
	if scope == GlobalScope {
		return globalKey
	}
	return userPrefix + scope
}

func (r *counterRepoKV) Get(ctx context.Context, scope string) (*Counters, error) {
	c := newCounters()
	err := r.store.Get(ctx, scopeKey(scope), c)
	if errors.Is(err, kv.ErrNotFound) {
		return newCounters(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get counters: %w", err)
	}
	return c, nil
}

func (r *counterRepoKV) Save(ctx context.Context, scope string, c *Counters) error {
	if err := r.store.Set(ctx, scopeKey(scope), c); err != nil {
		return fmt.Errorf("save counters: %w", err)
	}
	return nil
}

func (r *counterRepoKV) Delete(ctx context.Context, scope string) error {
	if err := r.store.Delete(ctx, scopeKey(scope)); err != nil {
		return fmt.Errorf("delete counters: %w", err)
	}
	return nil
}

func (r *counterRepoKV) UserScopes(ctx context.Context) ([]string, error) {
	entries, err := r.store.ScanPrefix(ctx, userPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan counters: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimPrefix(e.Key, userPrefix))
	}
	return out, nil
}
