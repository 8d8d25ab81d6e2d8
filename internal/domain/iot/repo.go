package iot

import "context"

// TelemetryRepository stores the latest snapshot per facility. Reads of a
// missing snapshot return an error wrapping kv.ErrNotFound.
type TelemetryRepository interface {
	GetQueue(ctx context.Context, facilityID string) (*QueueReading, error)
	// CreateQueue stores q only if the facility has no queue snapshot yet.
	CreateQueue(ctx context.Context, q *QueueReading) (bool, error)
	SaveQueue(ctx context.Context, q *QueueReading) error

	GetDevices(ctx context.Context, facilityID string) ([]Device, error)
	// CreateDevices stores devices only if the facility has none yet.
	CreateDevices(ctx context.Context, facilityID string, devices []Device) (bool, error)
}
