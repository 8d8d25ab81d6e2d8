package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/internal/platform/kv"
	"github.com/healthchain/portal/internal/platform/metrics"
)

type Service struct {
	repo    AlertRepository
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates the alerting service. m may be nil.
func NewService(repo AlertRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m, now: time.Now}
}

func newAlertID(now time.Time) string {
	return fmt.Sprintf("ALERT-%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create stores an alert and delivers it to each recipient's inbox.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Alert, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, apperr.Validation("message is required")
	}
	severity := strings.ToLower(strings.TrimSpace(in.Severity))
	if severity == "" {
		severity = SeverityMedium
	}
	if !validSeverity(severity) {
		return nil, apperr.Validation("severity must be one of low, medium, high")
	}
	alertType := strings.TrimSpace(in.Type)
	if alertType == "" {
		alertType = TypeSystem
	}

	now := s.now().UTC()
	a := &Alert{
		ID:         newAlertID(now),
		Type:       alertType,
		Severity:   severity,
		Message:    msg,
		ClaimID:    strings.TrimSpace(in.ClaimID),
		FacilityID: strings.TrimSpace(in.FacilityID),
		Timestamp:  now,
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperr.Internal(err, "failed to create alert")
	}

	seen := make(map[string]bool, len(in.Recipients))
	for _, r := range in.Recipients {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		if err := s.repo.AddToInbox(ctx, r, a.ID); err != nil {
			return nil, apperr.Internal(err, "failed to deliver alert")
		}
	}

	s.metrics.AlertCreated(a.Type, a.Severity)
	return a, nil
}

// List returns the alerts visible to p, newest first. Administrators see
// every alert; other users see their inbox.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]*Alert, error) {
	var (
		out []*Alert
		err error
	)
	if p.IsAdmin() {
		out, err = s.repo.All(ctx)
	} else {
		out, err = s.inbox(ctx, p.UserID)
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch alerts")
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *Service) inbox(ctx context.Context, userID string) ([]*Alert, error) {
	ids, err := s.repo.Inbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*Alert, 0, len(ids))
	for _, id := range ids {
		a, err := s.repo.Get(ctx, id)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MarkRead flags an alert as read. Non-administrators may only mark alerts
// delivered to them.
func (s *Service) MarkRead(ctx context.Context, p auth.Principal, id string) (*Alert, error) {
	a, err := s.repo.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.NotFound("alert not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load alert")
	}

	if !p.IsAdmin() {
		ids, err := s.repo.Inbox(ctx, p.UserID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load alert")
		}
		if !contains(ids, id) {
			return nil, apperr.Forbidden("unauthorized access")
		}
	}

	if a.Read {
		return a, nil
	}
	a.Read = true
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperr.Internal(err, "failed to update alert")
	}
	return a, nil
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
