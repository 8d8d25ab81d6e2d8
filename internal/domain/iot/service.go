package iot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/kv"
)

type Service struct {
	repo TelemetryRepository
	now  func() time.Time
}

func NewService(repo TelemetryRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// GetQueue returns the facility's queue snapshot, generating one on first
// access. Concurrent first reads agree on a single stored snapshot.
func (s *Service) GetQueue(ctx context.Context, facilityID string) (*QueueReading, error) {
	facilityID = strings.TrimSpace(facilityID)
	if facilityID == "" {
		return nil, apperr.Validation("facilityId is required")
	}
	q, err := s.repo.GetQueue(ctx, facilityID)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to fetch queue data")
	}

	fresh := newQueueReading(facilityID, s.now().UTC())
	created, err := s.repo.CreateQueue(ctx, fresh)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch queue data")
	}
	if created {
		return fresh, nil
	}
	q, err = s.repo.GetQueue(ctx, facilityID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch queue data")
	}
	return q, nil
}

// GetDevices returns the facility's device snapshot, generating one on first
// access.
func (s *Service) GetDevices(ctx context.Context, facilityID string) ([]Device, error) {
	facilityID = strings.TrimSpace(facilityID)
	if facilityID == "" {
		return nil, apperr.Validation("facilityId is required")
	}
	devices, err := s.repo.GetDevices(ctx, facilityID)
	if err == nil {
		return devices, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to fetch devices")
	}

	fresh := newDeviceCatalog()
	created, err := s.repo.CreateDevices(ctx, facilityID, fresh)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch devices")
	}
	if created {
		return fresh, nil
	}
	devices, err = s.repo.GetDevices(ctx, facilityID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch devices")
	}
	return devices, nil
}

// UpdateQueue sets one queue length. A facility without a snapshot starts
// from an empty one.
func (s *Service) UpdateQueue(ctx context.Context, facilityID, queueType string, count int) (*QueueReading, error) {
	facilityID = strings.TrimSpace(facilityID)
	queueType = strings.TrimSpace(queueType)
	if facilityID == "" || queueType == "" {
		return nil, apperr.Validation("facilityId and queueType are required")
	}

	q, err := s.repo.GetQueue(ctx, facilityID)
	if errors.Is(err, kv.ErrNotFound) {
		q = &QueueReading{FacilityID: facilityID}
	} else if err != nil {
		return nil, apperr.Internal(err, "failed to update queue")
	}
	if q.Queues == nil {
		q.Queues = make(map[string]int)
	}
	q.Queues[queueType] = count
	q.LastUpdate = s.now().UTC()

	if err := s.repo.SaveQueue(ctx, q); err != nil {
		return nil, apperr.Internal(err, "failed to update queue")
	}
	return q, nil
}
