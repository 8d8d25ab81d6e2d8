package scoring

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Strategy produces document, claim and fraud scores. Implementations must be
// safe for concurrent use.
type Strategy interface {
	ScoreDocument(ctx context.Context, doc DocumentMeta) (*DocumentValidation, error)
	ScoreClaim(ctx context.Context, subject Subject) (ClaimScore, error)
	AnalyzeFraud(ctx context.Context, subject Subject) (*FraudAnalysis, error)
}

// Document check pass thresholds: a check passes when a uniform draw exceeds
// its threshold.
const (
	icdCodeThreshold         = 0.10
	clinicalSummaryThreshold = 0.15
	signatureThreshold       = 0.05
	dateThreshold            = 0.20
)

// DefaultMinScore is the lowest validation and AI score RandomStrategy draws.
const DefaultMinScore = 70

// RandomStrategy draws scores uniformly. It stands in for a real model.
type RandomStrategy struct {
	mu       sync.Mutex
	rng      *rand.Rand
	minScore int
	now      func() time.Time
}

// NewRandomStrategy returns a strategy drawing validation and AI scores from
// [minScore, 99]. A zero seed seeds from the clock.
func NewRandomStrategy(seed int64, minScore int) *RandomStrategy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if minScore < 0 || minScore > 99 {
		minScore = DefaultMinScore
	}
	return &RandomStrategy{
		rng:      rand.New(rand.NewSource(seed)),
		minScore: minScore,
		now:      time.Now,
	}
}

func (s *RandomStrategy) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *RandomStrategy) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *RandomStrategy) score() int {
	return s.minScore + s.intn(100-s.minScore)
}

func (s *RandomStrategy) ScoreDocument(ctx context.Context, doc DocumentMeta) (*DocumentValidation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	score := s.score()
	return &DocumentValidation{
		DocumentMeta:    doc,
		ValidationScore: score,
		Status:          DocumentStatus(score),
		Checks: DocumentChecks{
			ICDCode:         s.float() > icdCodeThreshold,
			ClinicalSummary: s.float() > clinicalSummaryThreshold,
			Signature:       s.float() > signatureThreshold,
			Date:            s.float() > dateThreshold,
		},
		ExtractedData: sampleExtraction(now),
		Timestamp:     now,
	}, nil
}

func (s *RandomStrategy) ScoreClaim(ctx context.Context, _ Subject) (ClaimScore, error) {
	if err := ctx.Err(); err != nil {
		return ClaimScore{}, err
	}
	return ClaimScore{AIScore: s.score(), FraudRiskScore: s.intn(100)}, nil
}

func (s *RandomStrategy) AnalyzeFraud(ctx context.Context, subject Subject) (*FraudAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewFraudAnalysis(subject.ClaimID, s.intn(100), s.now()), nil
}

// StaticStrategy returns fixed scores.
type StaticStrategy struct {
	ValidationScore int
	AIScore         int
	FraudRiskScore  int
	FraudScore      int
}

// DefaultStaticStrategy scores claims into "processing" with low fraud risk.
func DefaultStaticStrategy() *StaticStrategy {
	return &StaticStrategy{ValidationScore: 90, AIScore: 80, FraudRiskScore: 10, FraudScore: 10}
}

func (s *StaticStrategy) ScoreDocument(_ context.Context, doc DocumentMeta) (*DocumentValidation, error) {
	now := time.Now()
	return &DocumentValidation{
		DocumentMeta:    doc,
		ValidationScore: s.ValidationScore,
		Status:          DocumentStatus(s.ValidationScore),
		Checks:          DocumentChecks{ICDCode: true, ClinicalSummary: true, Signature: true, Date: true},
		ExtractedData:   sampleExtraction(now),
		Timestamp:       now,
	}, nil
}

func (s *StaticStrategy) ScoreClaim(context.Context, Subject) (ClaimScore, error) {
	return ClaimScore{AIScore: s.AIScore, FraudRiskScore: s.FraudRiskScore}, nil
}

func (s *StaticStrategy) AnalyzeFraud(_ context.Context, subject Subject) (*FraudAnalysis, error) {
	return NewFraudAnalysis(subject.ClaimID, s.FraudScore, time.Now()), nil
}
