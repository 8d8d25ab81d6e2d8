package alerts

import "context"

// AlertRepository persists alerts and the per-user alert inboxes. Get of a
// missing alert returns an error wrapping kv.ErrNotFound.
type AlertRepository interface {
	Save(ctx context.Context, a *Alert) error
	Get(ctx context.Context, id string) (*Alert, error)
	// All returns every stored alert.
	All(ctx context.Context) ([]*Alert, error)

	AddToInbox(ctx context.Context, userID, alertID string) error
	// Inbox returns the alert ids delivered to userID, oldest first.
	Inbox(ctx context.Context, userID string) ([]string, error)
}
