package scoring

import (
	"context"
	"strings"
	"time"

	"github.com/healthchain/portal/internal/platform/apperr"
)

// SubjectLookup resolves a claim id to the fields a strategy scores.
type SubjectLookup interface {
	Subject(ctx context.Context, claimID string) (Subject, error)
}

type Service struct {
	strategy Strategy
	claims   SubjectLookup
	delay    time.Duration
}

// NewService wires a strategy to claim lookups. delay simulates document
// processing time and is cut short when the request is cancelled.
func NewService(strategy Strategy, claims SubjectLookup, delay time.Duration) *Service {
	return &Service{strategy: strategy, claims: claims, delay: delay}
}

func (s *Service) ValidateDocument(ctx context.Context, doc DocumentMeta) (*DocumentValidation, error) {
	doc.FileName = strings.TrimSpace(doc.FileName)
	doc.FileType = strings.TrimSpace(doc.FileType)
	if doc.FileName == "" {
		return nil, apperr.Validation("fileName is required")
	}
	if doc.FileType == "" {
		return nil, apperr.Validation("fileType is required")
	}
	if doc.FileSize <= 0 {
		return nil, apperr.Validation("fileSize must be positive")
	}

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	v, err := s.strategy.ScoreDocument(ctx, doc)
	if err != nil {
		return nil, apperr.Internal(err, "document validation failed")
	}
	return v, nil
}

func (s *Service) DetectFraud(ctx context.Context, claimID string) (*FraudAnalysis, error) {
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return nil, apperr.Validation("claimId is required")
	}
	subject, err := s.claims.Subject(ctx, claimID)
	if err != nil {
		return nil, err
	}
	analysis, err := s.strategy.AnalyzeFraud(ctx, subject)
	if err != nil {
		return nil, apperr.Internal(err, "fraud detection failed")
	}
	return analysis, nil
}
