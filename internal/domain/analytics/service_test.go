package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/healthchain/portal/internal/domain/identity"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
	"github.com/healthchain/portal/internal/platform/kv"
)

type fakeClaims []ClaimFacts

func (f fakeClaims) ClaimFacts(context.Context) ([]ClaimFacts, error) { return f, nil }

type fakeCards map[string]*identity.ParticipantCard

func (f fakeCards) Card(_ context.Context, userID string) (*identity.ParticipantCard, error) {
	return f[userID], nil
}

var (
	admin       = auth.Principal{UserID: "admin-1", Roles: []string{"admin"}}
	facility    = auth.Principal{UserID: "faskes-1", Roles: []string{"facility"}}
	beneficiary = auth.Principal{UserID: "peserta-1", Roles: []string{"beneficiary"}}
)

var demoClaims = fakeClaims{
	{ID: "CLM-2024-1523", CreatedBy: "faskes-1", Status: StatusApproved, Amount: "Rp 4.500.000", AIScore: 98, FraudRiskScore: 15},
	{ID: "CLM-2024-1524", CreatedBy: "faskes-1", Status: StatusProcessing, Amount: "Rp 850.000", AIScore: 95, FraudRiskScore: 22},
	{ID: "CLM-2024-1525", CreatedBy: "faskes-2", Status: StatusPendingReview, Amount: "Rp 2.300.000", AIScore: 72, FraudRiskScore: 88},
	{ID: "CLM-2024-1526", CreatedBy: "peserta-1", Status: StatusRejected, Amount: "n/a", AIScore: 60, FraudRiskScore: 10},
}

func newTestService() (*Service, CounterRepository) {
	repo := NewCounterRepoKV(kv.NewMemoryStore())
	svc := NewService(repo, fakeCards{"peserta-1": {UserID: "peserta-1", CardNumber: "0001234567890"}})
	svc.queue = func() int { return 120 }
	return svc, repo
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rp 4.500.000", "4500000"},
		{"100000", "100000"},
		{"IDR 1,250,000", "1250000"},
		{"", "0"},
		{"gratis", "0"},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in).String(); got != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestService_AdminSummary(t *testing.T) {
	svc, _ := newTestService()
	for _, f := range demoClaims {
		if err := svc.RecordCreated(context.Background(), f); err != nil {
			t.Fatalf("RecordCreated: %v", err)
		}
	}

	got, err := svc.DashboardSummary(context.Background(), admin, "admin-bpjs")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	s := got.(*AdminSummary)
	want := AdminSummary{
		TotalClaims:         4,
		ApprovedClaims:      1,
		PendingClaims:       1,
		PendingReviewClaims: 1,
		RejectedClaims:      1,
		FraudDetected:       1,
		TotalAmount:         7650000,
		AvgProcessingTime:   avgProcessingDays,
		ApprovalRate:        25,
	}
	if *s != want {
		t.Errorf("got %+v, want %+v", *s, want)
	}
}

func TestService_AdminSummary_Empty(t *testing.T) {
	svc, _ := newTestService()
	got, err := svc.DashboardSummary(context.Background(), admin, "admin")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	s := got.(*AdminSummary)
	if s.TotalClaims != 0 || s.ApprovalRate != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestService_AdminSummary_RequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.DashboardSummary(context.Background(), facility, "admin-bpjs")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestService_ApprovalRateRounding(t *testing.T) {
	svc, _ := newTestService()
	for i, status := range []string{StatusApproved, StatusProcessing, StatusProcessing} {
		f := ClaimFacts{ID: fmt.Sprintf("CLM-%d", i), CreatedBy: "faskes-1", Status: status}
		if err := svc.RecordCreated(context.Background(), f); err != nil {
			t.Fatalf("RecordCreated: %v", err)
		}
	}
	got, _ := svc.DashboardSummary(context.Background(), admin, "admin")
	if rate := got.(*AdminSummary).ApprovalRate; rate != 33.3 {
		t.Errorf("expected 33.3, got %v", rate)
	}
}

func TestService_FacilitySummary(t *testing.T) {
	svc, _ := newTestService()
	for _, f := range demoClaims {
		svc.RecordCreated(context.Background(), f)
	}

	got, err := svc.DashboardSummary(context.Background(), facility, "faskes")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	s := got.(*FacilitySummary)
	if s.TotalClaims != 2 || s.ApprovedClaims != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.AvgAIScore != 96.5 {
		t.Errorf("expected avg 96.5, got %v", s.AvgAIScore)
	}
	if s.CurrentQueue != 120 {
		t.Errorf("expected queue from generator, got %d", s.CurrentQueue)
	}

	empty, _ := svc.DashboardSummary(context.Background(), auth.Principal{UserID: "new"}, "facility")
	if avg := empty.(*FacilitySummary).AvgAIScore; avg != 0 {
		t.Errorf("expected 0 average for no claims, got %v", avg)
	}
}

func TestService_BeneficiarySummary(t *testing.T) {
	svc, _ := newTestService()
	for _, f := range demoClaims {
		svc.RecordCreated(context.Background(), f)
	}

	got, err := svc.DashboardSummary(context.Background(), beneficiary, "peserta")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	s := got.(*BeneficiarySummary)
	if s.TotalClaims != 1 || s.ApprovedClaims != 0 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.ParticipantCard == nil || s.ParticipantCard.CardNumber != "0001234567890" {
		t.Errorf("expected participant card, got %+v", s.ParticipantCard)
	}
}

func TestService_UnknownRole(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.DashboardSummary(context.Background(), admin, "doctor"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_RecordStatusChange(t *testing.T) {
	svc, repo := newTestService()
	f := ClaimFacts{ID: "CLM-1", CreatedBy: "faskes-1", Status: StatusProcessing, AIScore: 80}
	svc.RecordCreated(context.Background(), f)

	if err := svc.RecordStatusChange(context.Background(), "faskes-1", StatusProcessing, StatusApproved); err != nil {
		t.Fatalf("RecordStatusChange: %v", err)
	}
	for _, scope := range []string{GlobalScope, "faskes-1"} {
		c, _ := repo.Get(context.Background(), scope)
		if c.ByStatus[StatusProcessing] != 0 || c.ByStatus[StatusApproved] != 1 {
			t.Errorf("scope %q: unexpected buckets %v", scope, c.ByStatus)
		}
		if c.TotalClaims != 1 {
			t.Errorf("scope %q: total changed to %d", scope, c.TotalClaims)
		}
	}
}

func TestService_Rebuild(t *testing.T) {
	svc, repo := newTestService()
	// Counters from a previous life that no longer match any claim.
	repo.Save(context.Background(), "ghost", &Counters{TotalClaims: 9})
	repo.Save(context.Background(), GlobalScope, &Counters{TotalClaims: 99})

	n, err := svc.Rebuild(context.Background(), demoClaims)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != len(demoClaims) {
		t.Errorf("expected %d claims counted, got %d", len(demoClaims), n)
	}

	global, _ := repo.Get(context.Background(), GlobalScope)
	if global.TotalClaims != 4 || global.FraudDetected != 1 {
		t.Errorf("unexpected global counters %+v", global)
	}
	ghost, _ := repo.Get(context.Background(), "ghost")
	if ghost.TotalClaims != 0 {
		t.Errorf("stale scope should be cleared, got %+v", ghost)
	}
	scopes, _ := repo.UserScopes(context.Background())
	if len(scopes) != 3 {
		t.Errorf("expected 3 user scopes, got %v", scopes)
	}
}

func TestService_ConcurrentRecording(t *testing.T) {
	svc, _ := newTestService()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := ClaimFacts{ID: fmt.Sprintf("CLM-%d", i), CreatedBy: "faskes-1", Status: StatusApproved, Amount: "1000"}
			if err := svc.RecordCreated(context.Background(), f); err != nil {
				t.Errorf("RecordCreated: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := svc.DashboardSummary(context.Background(), admin, "admin")
	s := got.(*AdminSummary)
	if s.TotalClaims != 50 || s.TotalAmount != 50000 {
		t.Errorf("lost updates: %+v", s)
	}
}

func TestService_ConcurrentReadersAgree(t *testing.T) {
	svc, _ := newTestService()
	svc.Rebuild(context.Background(), demoClaims)

	results := make([]AdminSummary, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := svc.DashboardSummary(context.Background(), admin, "admin-bpjs")
			if err != nil {
				t.Errorf("DashboardSummary: %v", err)
				return
			}
			results[i] = *got.(*AdminSummary)
		}(i)
	}
	wg.Wait()
	if results[0] != results[1] {
		t.Errorf("concurrent readers disagree: %+v vs %+v", results[0], results[1])
	}
}

// failingCounters fails every Save while fail is set.
type failingCounters struct {
	CounterRepository
	fail bool
}

func (f *failingCounters) Save(ctx context.Context, scope string, c *Counters) error {
	if f.fail {
		return errors.New("store unavailable")
	}
	return f.CounterRepository.Save(ctx, scope, c)
}

func TestService_FailedUpdateRepairsOnRead(t *testing.T) {
	repo := &failingCounters{CounterRepository: NewCounterRepoKV(kv.NewMemoryStore())}
	svc := NewService(repo, nil)
	svc.UseSource(demoClaims)
	ctx := context.Background()

	repo.fail = true
	if err := svc.RecordCreated(ctx, demoClaims[0]); err == nil {
		t.Fatal("expected RecordCreated to fail")
	}
	if !svc.Stale() {
		t.Fatal("expected counters to be marked stale")
	}

	repo.fail = false
	got, err := svc.DashboardSummary(ctx, admin, "admin")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if s := got.(*AdminSummary); s.TotalClaims != len(demoClaims) {
		t.Errorf("expected rebuilt total %d, got %d", len(demoClaims), s.TotalClaims)
	}
	if svc.Stale() {
		t.Error("expected stale flag cleared after rebuild")
	}
}

func TestService_FailedRepairReportsInternal(t *testing.T) {
	repo := &failingCounters{CounterRepository: NewCounterRepoKV(kv.NewMemoryStore()), fail: true}
	svc := NewService(repo, nil)
	svc.UseSource(demoClaims)

	_ = svc.RecordCreated(context.Background(), demoClaims[0])
	_, err := svc.DashboardSummary(context.Background(), admin, "admin")
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !svc.Stale() {
		t.Error("expected counters to stay stale after a failed rebuild")
	}
}
