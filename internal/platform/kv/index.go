package kv

import "context"

// Index is an append-only list of record ids kept under a single key, e.g.
// "claims:user:<userId>". Appends are atomic per backend, so concurrent
// writers never lose each other's entries.
type Index struct {
	store Store
}

func NewIndex(store Store) *Index {
	return &Index{store: store}
}

// Append adds id to the index at key. It is at-least-once: a retried append
// may store the id twice, which List hides.
func (x *Index) Append(ctx context.Context, key, id string) error {
	return x.store.AppendList(ctx, key, id)
}

// List returns the ids under key in insertion order with duplicates removed.
func (x *Index) List(ctx context.Context, key string) ([]string, error) {
	ids, err := x.store.ReadList(ctx, key)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
