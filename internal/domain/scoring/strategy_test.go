package scoring

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRandomStrategy_ScoreRanges(t *testing.T) {
	for _, minScore := range []int{0, 40, 70, 99} {
		s := NewRandomStrategy(42, minScore)
		for i := 0; i < 500; i++ {
			cs, err := s.ScoreClaim(context.Background(), Subject{})
			if err != nil {
				t.Fatalf("ScoreClaim: %v", err)
			}
			if cs.AIScore < minScore || cs.AIScore > 99 {
				t.Fatalf("min %d: aiScore %d out of range", minScore, cs.AIScore)
			}
			if cs.FraudRiskScore < 0 || cs.FraudRiskScore > 99 {
				t.Fatalf("fraudRiskScore %d out of range", cs.FraudRiskScore)
			}
		}
	}
}

func TestRandomStrategy_InvalidMinScoreFallsBack(t *testing.T) {
	s := NewRandomStrategy(1, 150)
	if s.minScore != DefaultMinScore {
		t.Errorf("expected fallback to %d, got %d", DefaultMinScore, s.minScore)
	}
}

func TestRandomStrategy_SeedIsDeterministic(t *testing.T) {
	a := NewRandomStrategy(7, 70)
	b := NewRandomStrategy(7, 70)
	for i := 0; i < 20; i++ {
		sa, _ := a.ScoreClaim(context.Background(), Subject{})
		sb, _ := b.ScoreClaim(context.Background(), Subject{})
		if sa != sb {
			t.Fatalf("draw %d differs: %+v vs %+v", i, sa, sb)
		}
	}
}

func TestRandomStrategy_LowFloorReachesNeedsReview(t *testing.T) {
	s := NewRandomStrategy(3, 0)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v, err := s.ScoreDocument(context.Background(), DocumentMeta{FileName: "a.pdf", FileType: "application/pdf", FileSize: 1})
		if err != nil {
			t.Fatalf("ScoreDocument: %v", err)
		}
		if v.Status != DocumentStatus(v.ValidationScore) {
			t.Fatalf("status %q does not match score %d", v.Status, v.ValidationScore)
		}
		seen[v.Status] = true
	}
	for _, st := range []string{DocumentExcellent, DocumentGood, DocumentNeedsReview} {
		if !seen[st] {
			t.Errorf("status %q never produced", st)
		}
	}
}

func TestRandomStrategy_ConcurrentUse(t *testing.T) {
	s := NewRandomStrategy(0, 70)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.ScoreClaim(context.Background(), Subject{})
				s.AnalyzeFraud(context.Background(), Subject{ClaimID: "CLM-1"})
			}
		}()
	}
	wg.Wait()
}

func TestRandomStrategy_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRandomStrategy(1, 70).ScoreClaim(ctx, Subject{}); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestDocumentStatus(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, DocumentExcellent},
		{85, DocumentExcellent},
		{84, DocumentGood},
		{70, DocumentGood},
		{69, DocumentNeedsReview},
		{0, DocumentNeedsReview},
	}
	for _, tt := range tests {
		if got := DocumentStatus(tt.score); got != tt.want {
			t.Errorf("DocumentStatus(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestNewFraudAnalysis(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		score          int
		level          string
		factors        int
		recommendation string
	}{
		{95, RiskHigh, 2, "Immediate investigation required"},
		{81, RiskHigh, 2, "Immediate investigation required"},
		{80, RiskHigh, 1, "Immediate investigation required"},
		{61, RiskMedium, 1, "Manual review recommended"},
		{60, RiskMedium, 0, "Manual review recommended"},
		{10, RiskLow, 0, "Low risk - proceed normally"},
	}
	for _, tt := range tests {
		fa := NewFraudAnalysis("CLM-2026-0001", tt.score, now)
		if fa.RiskLevel != tt.level {
			t.Errorf("score %d: level %q, want %q", tt.score, fa.RiskLevel, tt.level)
		}
		if len(fa.RiskFactors) != tt.factors {
			t.Errorf("score %d: %d factors, want %d", tt.score, len(fa.RiskFactors), tt.factors)
		}
		if fa.Recommendation != tt.recommendation {
			t.Errorf("score %d: recommendation %q", tt.score, fa.Recommendation)
		}
		if fa.ClaimID != "CLM-2026-0001" || !fa.Timestamp.Equal(now) {
			t.Errorf("score %d: unexpected identity fields %+v", tt.score, fa)
		}
	}
}

func TestStaticStrategy(t *testing.T) {
	s := &StaticStrategy{ValidationScore: 60, AIScore: 95, FraudRiskScore: 85, FraudScore: 85}

	cs, _ := s.ScoreClaim(context.Background(), Subject{})
	if cs.AIScore != 95 || cs.FraudRiskScore != 85 {
		t.Errorf("unexpected claim score %+v", cs)
	}
	v, _ := s.ScoreDocument(context.Background(), DocumentMeta{FileName: "x.pdf"})
	if v.Status != DocumentNeedsReview || v.FileName != "x.pdf" {
		t.Errorf("unexpected validation %+v", v)
	}
	fa, _ := s.AnalyzeFraud(context.Background(), Subject{ClaimID: "CLM-1"})
	if fa.RiskLevel != RiskHigh {
		t.Errorf("expected high risk, got %s", fa.RiskLevel)
	}
}
