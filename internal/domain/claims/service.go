package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthchain/portal/internal/domain/alerts"
	"github.com/healthchain/portal/internal/domain/analytics"
	"github.com/healthchain/portal/internal/domain/scoring"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/internal/platform/kv"
	"github.com/healthchain/portal/internal/platform/metrics"
	"github.com/healthchain/portal/pkg/pagination"
)

// AlertRaiser creates alerts.
type AlertRaiser interface {
	Create(ctx context.Context, in alerts.CreateInput) (*alerts.Alert, error)
}

// StatsRecorder keeps the dashboard counters in step with claim writes.
type StatsRecorder interface {
	RecordCreated(ctx context.Context, f analytics.ClaimFacts) error
	RecordStatusChange(ctx context.Context, createdBy, from, to string) error
}

type Service struct {
	repo     ClaimRepository
	strategy scoring.Strategy
	alerts   AlertRaiser
	stats    StatsRecorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time

	// locks serializes status changes of one claim within this process.
	locks *claimLocks
}

// NewService wires the claims service. stats and m may be nil.
func NewService(repo ClaimRepository, strategy scoring.Strategy, alerter AlertRaiser, stats StatsRecorder, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		strategy: strategy,
		alerts:   alerter,
		stats:    stats,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		locks:    newClaimLocks(),
	}
}

func facts(c *Claim) analytics.ClaimFacts {
	return analytics.ClaimFacts{
		ID:             c.ID,
		CreatedBy:      c.CreatedBy,
		Status:         c.Status,
		Amount:         c.Amount,
		AIScore:        c.AIScore,
		FraudRiskScore: c.FraudRiskScore,
	}
}

// Create scores and stores a new claim submitted by creatorID. A high fraud
// risk raises an alert; failing to raise it does not fail the claim.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (*Claim, error) {
	in.PatientName = strings.TrimSpace(in.PatientName)
	in.Service = strings.TrimSpace(in.Service)
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	in.Amount = strings.TrimSpace(in.Amount)
	if in.PatientName == "" || in.Service == "" || in.Diagnosis == "" || in.Amount == "" {
		return nil, apperr.Validation("missing required fields: patientName, service, diagnosis, amount")
	}

	now := s.now().UTC()
	seq, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, apperr.Internal(err, "failed to create claim")
	}
	id := ClaimID(now.Year(), seq)

	score, err := s.strategy.ScoreClaim(ctx, scoring.Subject{
		ClaimID:   id,
		Service:   in.Service,
		Diagnosis: in.Diagnosis,
		Amount:    in.Amount,
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to score claim")
	}

	facilityID := strings.TrimSpace(in.FacilityID)
	if facilityID == "" {
		facilityID = creatorID
	}
	docs := in.Documents
	if docs == nil {
		docs = []Document{}
	}

	c := &Claim{
		ID:             id,
		PatientName:    in.PatientName,
		Service:        in.Service,
		Diagnosis:      in.Diagnosis,
		Amount:         in.Amount,
		FacilityID:     facilityID,
		Status:         StatusForScore(score.AIScore),
		AIScore:        score.AIScore,
		FraudRiskScore: score.FraudRiskScore,
		Documents:      docs,
		CreatedAt:      now,
		UpdatedAt:      now,
		CreatedBy:      creatorID,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, apperr.Internal(err, "failed to create claim")
	}
	if err := s.repo.AddToUser(ctx, creatorID, c.ID); err != nil {
		return nil, apperr.Internal(err, "failed to create claim")
	}

	if s.stats != nil {
		if err := s.stats.RecordCreated(ctx, facts(c)); err != nil {
			s.logger.Warn().Err(err).Str("claim_id", c.ID).Msg("analytics update failed")
		}
	}
	s.metrics.ClaimCreated(c.Status)

	if c.FraudRiskScore >= scoring.HighFraudRisk {
		s.raiseFraudAlert(ctx, c)
	}
	return c, nil
}

func (s *Service) raiseFraudAlert(ctx context.Context, c *Claim) {
	_, err := s.alerts.Create(ctx, alerts.CreateInput{
		Type:       alerts.TypeFraud,
		Severity:   alerts.SeverityHigh,
		Message:    fmt.Sprintf("High fraud risk detected: %s - Risk Score: %d", c.ID, c.FraudRiskScore),
		ClaimID:    c.ID,
		FacilityID: c.FacilityID,
		Recipients: []string{c.CreatedBy, c.FacilityID},
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("claim_id", c.ID).
			Int("fraud_risk_score", c.FraudRiskScore).
			Msg("failed to raise fraud alert")
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Claim, error) {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, apperr.NotFound("claim not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch claim")
	}
	return c, nil
}

// Subject exposes a claim to the scoring engine.
func (s *Service) Subject(ctx context.Context, claimID string) (scoring.Subject, error) {
	c, err := s.Get(ctx, claimID)
	if err != nil {
		return scoring.Subject{}, err
	}
	return scoring.Subject{
		ClaimID:   c.ID,
		Service:   c.Service,
		Diagnosis: c.Diagnosis,
		Amount:    c.Amount,
	}, nil
}

// ListForUser returns the claims targetUserID created. Only that user and
// administrators may list them.
func (s *Service) ListForUser(ctx context.Context, p auth.Principal, targetUserID string) ([]*Claim, error) {
	if p.UserID != targetUserID && !p.IsAdmin() {
		return nil, apperr.Forbidden("unauthorized access")
	}
	ids, err := s.repo.UserClaimIDs(ctx, targetUserID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to fetch claims")
	}
	out := make([]*Claim, 0, len(ids))
	for _, id := range ids {
		c, err := s.repo.Get(ctx, id)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal(err, "failed to fetch claims")
		}
		out = append(out, c)
	}
	return out, nil
}

// ListAll returns one page of every claim, ordered by id, and the total
// number of claims. Administrators only.
func (s *Service) ListAll(ctx context.Context, p auth.Principal, page pagination.Params) ([]*Claim, int, error) {
	if !p.IsAdmin() {
		return nil, 0, apperr.Forbidden("unauthorized: admin access required")
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, apperr.Internal(err, "failed to fetch claims")
	}
	return pagination.Page(all, page), len(all), nil
}

// UpdateStatus moves a claim to status and replaces its notes. Concurrent
// updates of one claim run one at a time, so the loser sees the winner's
// status and is checked against it.
func (s *Service) UpdateStatus(ctx context.Context, id, status, notes string) (*Claim, error) {
	status = strings.TrimSpace(status)
	if !KnownStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if !CanTransition(from, status) {
		return nil, apperr.Validation("cannot change status from %s to %s", from, status)
	}

	c.Status = status
	c.Notes = notes
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, apperr.Internal(err, "failed to update claim")
	}

	if s.stats != nil {
		if err := s.stats.RecordStatusChange(ctx, c.CreatedBy, from, status); err != nil {
			s.logger.Warn().Err(err).Str("claim_id", c.ID).Msg("analytics update failed")
		}
	}
	s.metrics.ClaimTransition(from, status)
	return c, nil
}

// ClaimFacts lists every claim for an analytics rebuild.
func (s *Service) ClaimFacts(ctx context.Context) ([]analytics.ClaimFacts, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ClaimFacts, 0, len(all))
	for _, c := range all {
		out = append(out, facts(c))
	}
	return out, nil
}

// Import stores claims with preset ids, such as demo data, and indexes them
// under their creators. Existing claims with the same ids are replaced.
func (s *Service) Import(ctx context.Context, claims []*Claim) error {
	for _, c := range claims {
		if c.Documents == nil {
			c.Documents = []Document{}
		}
		if err := s.repo.Save(ctx, c); err != nil {
			return err
		}
		if c.CreatedBy == "" {
			continue
		}
		if err := s.repo.AddToUser(ctx, c.CreatedBy, c.ID); err != nil {
			return err
		}
	}
	return nil
}
