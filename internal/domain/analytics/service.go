package analytics

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/healthchain/portal/internal/domain/identity"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
)

// ClaimSource lists every stored claim for a rebuild.
type ClaimSource interface {
	ClaimFacts(ctx context.Context) ([]ClaimFacts, error)
}

// CardLookup finds a beneficiary's participant card; it returns nil when the
// user has none.
type CardLookup interface {
	Card(ctx context.Context, userID string) (*identity.ParticipantCard, error)
}

type Service struct {
	repo  CounterRepository
	cards CardLookup
	queue func() int

	// mu serializes read-modify-write updates of the stored counters.
	mu sync.Mutex

	// source and stale let a dashboard read rebuild counters that a failed
	// update left behind the stored claims.
	source ClaimSource
	stale  atomic.Bool
}

func NewService(repo CounterRepository, cards CardLookup) *Service {
	return &Service{
		repo:  repo,
		cards: cards,
		queue: func() int { return 50 + rand.IntN(150) },
	}
}

// UseSource sets the claim listing used to repair counters after a failed
// update.
func (s *Service) UseSource(src ClaimSource) {
	s.source = src
}

// Stale reports whether a counter update failed since the last rebuild.
func (s *Service) Stale() bool {
	return s.stale.Load()
}

// RecordCreated counts a new claim globally and for its creator.
func (s *Service) RecordCreated(ctx context.Context, f ClaimFacts) error {
	return s.update(ctx, f.CreatedBy, func(c *Counters) { c.add(f) })
}

// RecordStatusChange moves a claim between status buckets.
func (s *Service) RecordStatusChange(ctx context.Context, createdBy, from, to string) error {
	if from == to {
		return nil
	}
	return s.update(ctx, createdBy, func(c *Counters) { c.move(from, to) })
}

func (s *Service) update(ctx context.Context, userID string, apply func(*Counters)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes := []string{GlobalScope}
	if userID != "" {
		scopes = append(scopes, userID)
	}
	for _, scope := range scopes {
		c, err := s.repo.Get(ctx, scope)
		if err != nil {
			s.stale.Store(true)
			return err
		}
		apply(c)
		if err := s.repo.Save(ctx, scope, c); err != nil {
			s.stale.Store(true)
			return err
		}
	}
	return nil
}

// repair rebuilds the counters when an earlier update failed.
func (s *Service) repair(ctx context.Context) error {
	if s.source == nil || !s.stale.Load() {
		return nil
	}
	_, err := s.Rebuild(ctx, s.source)
	return err
}

// Rebuild recomputes every counter from the stored claims and returns the
// number of claims counted.
func (s *Service) Rebuild(ctx context.Context, src ClaimSource) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.rebuild(ctx, src)
	if err != nil {
		s.stale.Store(true)
		return 0, err
	}
	s.stale.Store(false)
	return n, nil
}

func (s *Service) rebuild(ctx context.Context, src ClaimSource) (int, error) {
	claims, err := src.ClaimFacts(ctx)
	if err != nil {
		return 0, err
	}

	global := newCounters()
	perUser := make(map[string]*Counters)
	for _, f := range claims {
		global.add(f)
		if f.CreatedBy == "" {
			continue
		}
		c, ok := perUser[f.CreatedBy]
		if !ok {
			c = newCounters()
			perUser[f.CreatedBy] = c
		}
		c.add(f)
	}

	existing, err := s.repo.UserScopes(ctx)
	if err != nil {
		return 0, err
	}
	for _, scope := range existing {
		if _, ok := perUser[scope]; ok {
			continue
		}
		if err := s.repo.Delete(ctx, scope); err != nil {
			return 0, err
		}
	}
	for scope, c := range perUser {
		if err := s.repo.Save(ctx, scope, c); err != nil {
			return 0, err
		}
	}
	if err := s.repo.Save(ctx, GlobalScope, global); err != nil {
		return 0, err
	}
	return len(claims), nil
}

// DashboardSummary returns the dashboard for role as seen by p.
func (s *Service) DashboardSummary(ctx context.Context, p auth.Principal, role string) (interface{}, error) {
	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, apperr.Validation("unknown dashboard role %q", role)
	}
	if err := s.repair(ctx); err != nil {
		return nil, apperr.Internal(err, "failed to rebuild analytics")
	}

	switch r {
	case auth.RoleAdmin:
		if !p.IsAdmin() {
			return nil, apperr.Forbidden("unauthorized: admin access required")
		}
		c, err := s.counters(ctx, GlobalScope)
		if err != nil {
			return nil, err
		}
		return adminSummary(c), nil

	case auth.RoleFacility:
		c, err := s.counters(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		return &FacilitySummary{
			TotalClaims:    c.TotalClaims,
			ApprovedClaims: c.ByStatus[StatusApproved],
			AvgAIScore:     average(c.AIScoreSum, c.TotalClaims),
			CurrentQueue:   s.queue(),
		}, nil

	default:
		c, err := s.counters(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		summary := &BeneficiarySummary{
			TotalClaims:    c.TotalClaims,
			ApprovedClaims: c.ByStatus[StatusApproved],
		}
		if s.cards != nil {
			card, err := s.cards.Card(ctx, p.UserID)
			if err != nil {
				return nil, err
			}
			summary.ParticipantCard = card
		}
		return summary, nil
	}
}

func (s *Service) counters(ctx context.Context, scope string) (*Counters, error) {
	c, err := s.repo.Get(ctx, scope)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch analytics")
	}
	return c, nil
}

func adminSummary(c *Counters) *AdminSummary {
	approved := c.ByStatus[StatusApproved]
	var rate float64
	if c.TotalClaims > 0 {
		rate = decimal.NewFromInt(int64(approved) * 100).
			Div(decimal.NewFromInt(int64(c.TotalClaims))).
			Round(1).
			InexactFloat64()
	}
	return &AdminSummary{
		TotalClaims:         c.TotalClaims,
		ApprovedClaims:      approved,
		PendingClaims:       c.ByStatus[StatusProcessing],
		PendingReviewClaims: c.ByStatus[StatusPendingReview],
		RejectedClaims:      c.ByStatus[StatusRejected],
		FraudDetected:       c.FraudDetected,
		TotalAmount:         c.TotalAmount.InexactFloat64(),
		AvgProcessingTime:   avgProcessingDays,
		ApprovalRate:        rate,
	}
}

func average(sum int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).Round(1).InexactFloat64()
}
