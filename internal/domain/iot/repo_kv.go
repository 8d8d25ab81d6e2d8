package iot

import (
	"context"
	"fmt"

	"github.com/healthchain/portal/internal/platform/kv"
)

type telemetryRepoKV struct {
	store kv.Store
}

func NewTelemetryRepoKV(store kv.Store) TelemetryRepository {
	return &telemetryRepoKV{store: store}
}

func queueKey(facilityID string) string  { return kv.Key("iot", "queue", facilityID) }
func deviceKey(facilityID string) string { return kv.Key("iot", "devices", facilityID) }

func (r *telemetryRepoKV) GetQueue(ctx context.Context, facilityID string) (*QueueReading, error) {
	var q QueueReading
	if err := r.store.Get(ctx, queueKey(facilityID), &q); err != nil {
		return nil, fmt.Errorf("get queue: %w", err)
	}
	return &q, nil
}

func (r *telemetryRepoKV) CreateQueue(ctx context.Context, q *QueueReading) (bool, error) {
	ok, err := r.store.SetNX(ctx, queueKey(q.FacilityID), q)
	if err != nil {
		return false, fmt.Errorf("create queue: %w", err)
	}
	return ok, nil
}

func (r *telemetryRepoKV) SaveQueue(ctx context.Context, q *QueueReading) error {
	if err := r.store.Set(ctx, queueKey(q.FacilityID), q); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}

func (r *telemetryRepoKV) GetDevices(ctx context.Context, facilityID string) ([]Device, error) {
	var devices []Device
	if err := r.store.Get(ctx, deviceKey(facilityID), &devices); err != nil {
		return nil, fmt.Errorf("get devices: %w", err)
	}
	return devices, nil
}

func (r *telemetryRepoKV) CreateDevices(ctx context.Context, facilityID string, devices []Device) (bool, error) {
	ok, err := r.store.SetNX(ctx, deviceKey(facilityID), devices)
	if err != nil {
		return false, fmt.Errorf("create devices: %w", err)
	}
	return ok, nil
}
