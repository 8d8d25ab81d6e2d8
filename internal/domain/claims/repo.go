package claims

import "context"

// ClaimRepository persists claims and the per-user claim index. Get of a
// missing claim returns an error wrapping kv.ErrNotFound.
type ClaimRepository interface {
	// NextSequence returns the next claim number for year, starting at 1.
	NextSequence(ctx context.Context, year int) (int64, error)
	Save(ctx context.Context, c *Claim) error
	Get(ctx context.Context, id string) (*Claim, error)
	// List returns every claim ordered by id.
	List(ctx context.Context) ([]*Claim, error)

	AddToUser(ctx context.Context, userID, claimID string) error
	// UserClaimIDs returns the ids of the claims userID created, oldest first.
	UserClaimIDs(ctx context.Context, userID string) ([]string, error)
}
