package alerts

import (
	"context"
	"fmt"

	"github.com/healthchain/portal/internal/platform/kv"
)

const alertPrefix = "alert:"

type alertRepoKV struct {
	store kv.Store
	index *kv.Index
}

func NewAlertRepoKV(store kv.Store) AlertRepository {
	return &alertRepoKV{store: store, index: kv.NewIndex(store)}
}

func alertKey(id string) string     { return alertPrefix + id }
func inboxKey(userID string) string { return kv.Key("alerts", "user", userID) }

func (r *alertRepoKV) Save(ctx context.Context, a *Alert) error {
	if err := r.store.Set(ctx, alertKey(a.ID), a); err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (r *alertRepoKV) Get(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	if err := r.store.Get(ctx, alertKey(id), &a); err != nil {
		return nil, fmt.Errorf("get alert %s: %w", id, err)
	}
	return &a, nil
}

func (r *alertRepoKV) All(ctx context.Context) ([]*Alert, error) {
	entries, err := r.store.ScanPrefix(ctx, alertPrefix)
	if err != nil {
		return nil, fmt.Errorf("scan alerts: %w", err)
	}
	out, err := kv.Decode[*Alert](entries)
	if err != nil {
		return nil, fmt.Errorf("scan alerts: %w", err)
	}
	return out, nil
}

func (r *alertRepoKV) AddToInbox(ctx context.Context, userID, alertID string) error {
	if err := r.index.Append(ctx, inboxKey(userID), alertID); err != nil {
		return fmt.Errorf("index alert: %w", err)
	}
	return nil
}

func (r *alertRepoKV) Inbox(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.index.List(ctx, inboxKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read alert index: %w", err)
	}
	return ids, nil
}
