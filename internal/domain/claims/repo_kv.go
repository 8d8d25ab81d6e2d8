package claims

import (
	"context"
	"fmt"
	"strconv"

	"github.com/healthchain/portal/internal/platform/kv"
)

const (
	claimPrefix = "claim:"
	// scanPrefix matches claim records only.
	scanPrefix = claimPrefix + "CLM-"
)

type claimRepoKV struct {
	store kv.Store
	index *kv.Index
}

func NewClaimRepoKV(store kv.Store) ClaimRepository {
	return &claimRepoKV{store: store, index: kv.NewIndex(store)}
}

func claimKey(id string) string     { return claimPrefix + id }
func userIndexKey(id string) string { return kv.Key("claims", "user", id) }

func (r *claimRepoKV) NextSequence(ctx context.Context, year int) (int64, error) {
	n, err := r.store.Incr(ctx, kv.Key("seq", "claim", strconv.Itoa(year)))
	if err != nil {
		return 0, fmt.Errorf("allocate claim id: %w", err)
	}
	return n, nil
}

func (r *claimRepoKV) Save(ctx context.Context, c *Claim) error {
	if err := r.store.Set(ctx, claimKey(c.ID), c); err != nil {
		return fmt.Errorf("save claim: %w", err)
	}
	return nil
}

func (r *claimRepoKV) Get(ctx context.Context, id string) (*Claim, error) {
	var c Claim
	if err := r.store.Get(ctx, claimKey(id), &c); err != nil {
		return nil, fmt.Errorf("get claim %s: %w", id, err)
	}
	return &c, nil
}

func (r *claimRepoKV) List(ctx context.Context) ([]*Claim, error) {
	entries, err := r.store.ScanPrefix(ctx, scanPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan claims: %w", err)
	}
	out, err := kv.Decode[*Claim](entries)
	if err != nil {
		return nil, fmt.Errorf("scan claims: %w", err)
	}
	return out, nil
}

func (r *claimRepoKV) AddToUser(ctx context.Context, userID, claimID string) error {
	if err := r.index.Append(ctx, userIndexKey(userID), claimID); err != nil {
		return fmt.Errorf("index claim: %w", err)
	}
	return nil
}

func (r *claimRepoKV) UserClaimIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.index.List(ctx, userIndexKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read claim index: %w", err)
	}
	return ids, nil
}
