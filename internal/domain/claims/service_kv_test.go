package claims

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthchain/portal/internal/domain/analytics"
	"github.com/healthchain/portal/internal/domain/scoring"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/kv"
)

// kvEnv runs the service over the memory store and the real analytics
// service, as the server wires it.
type kvEnv struct {
	svc   *Service
	repo  ClaimRepository
	stats *analytics.Service
}

func newKVEnv(repo func(ClaimRepository) ClaimRepository) *kvEnv {
	store := kv.NewMemoryStore()
	var r ClaimRepository = NewClaimRepoKV(store)
	if repo != nil {
		r = repo(r)
	}
	stats := analytics.NewService(analytics.NewCounterRepoKV(store), nil)
	svc := NewService(r, scoring.DefaultStaticStrategy(), &stubAlerts{}, stats, nil, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 123456789, time.UTC) }
	stats.UseSource(svc)
	return &kvEnv{svc: svc, repo: r, stats: stats}
}

func (env *kvEnv) summary(t *testing.T) *analytics.AdminSummary {
	t.Helper()
	got, err := env.stats.DashboardSummary(context.Background(), admin, "admin")
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	return got.(*analytics.AdminSummary)
}

func TestService_CreateThenGet_RoundTrip(t *testing.T) {
	env := newKVEnv(nil)
	in := validInput
	in.FacilityID = "faskes-9"
	in.Documents = []Document{{FileName: "resume.pdf", FileType: "application/pdf", FileSize: 20480}}

	created, err := env.svc.Create(context.Background(), "faskes-1", in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := env.svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	want, _ := json.Marshal(created)
	have, _ := json.Marshal(got)
	if string(want) != string(have) {
		t.Errorf("stored claim differs from created claim:\ncreated %s\nstored  %s", want, have)
	}
}

func TestService_ConcurrentStatusChanges_OneWins(t *testing.T) {
	env := newKVEnv(nil)
	ctx := context.Background()
	target, _ := env.svc.Create(ctx, "faskes-1", validInput)
	if _, err := env.svc.Create(ctx, "faskes-1", validInput); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 16
	start := make(chan struct{})
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		to := StatusApproved
		if i%2 == 1 {
			to = StatusRejected
		}
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			<-start
			_, errs[i] = env.svc.UpdateStatus(ctx, target.ID, to, "")
		}(i, to)
	}
	close(start)
	wg.Wait()

	var won int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case !errors.Is(err, apperr.ErrValidation):
			t.Errorf("expected validation error for the losing update, got %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one update to succeed, got %d", won)
	}

	s := env.summary(t)
	if s.PendingClaims != 1 || s.ApprovedClaims+s.RejectedClaims != 1 {
		t.Errorf("counters drifted from store: %+v", s)
	}
}

// gatedRepo holds the next Save after arming until release is closed.
type gatedRepo struct {
	ClaimRepository
	armed   atomic.Bool
	saving  chan struct{}
	release chan struct{}
}

func (g *gatedRepo) Save(ctx context.Context, c *Claim) error {
	if g.armed.CompareAndSwap(true, false) {
		close(g.saving)
		<-g.release
	}
	return g.ClaimRepository.Save(ctx, c)
}

func TestService_UpdateStatus_LoserSeesWinner(t *testing.T) {
	gate := &gatedRepo{saving: make(chan struct{}), release: make(chan struct{})}
	env := newKVEnv(func(r ClaimRepository) ClaimRepository {
		gate.ClaimRepository = r
		return gate
	})
	ctx := context.Background()

	c := &Claim{ID: "CLM-2026-0001", Status: StatusProcessing, CreatedBy: "faskes-1", Amount: "Rp 100.000"}
	if err := env.svc.Import(ctx, []*Claim{c}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := env.stats.Rebuild(ctx, env.svc); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	gate.armed.Store(true)

	first := make(chan error, 1)
	go func() {
		_, err := env.svc.UpdateStatus(ctx, c.ID, StatusApproved, "")
		first <- err
	}()
	<-gate.saving

	second := make(chan error, 1)
	go func() {
		_, err := env.svc.UpdateStatus(ctx, c.ID, StatusRejected, "")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	if err := <-first; err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := <-second; !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected second update to be rejected by the state machine, got %v", err)
	}

	stored, _ := env.svc.Get(ctx, c.ID)
	if stored.Status != StatusApproved {
		t.Errorf("expected approved, got %s", stored.Status)
	}
	s := env.summary(t)
	if s.ApprovedClaims != 1 || s.RejectedClaims != 0 || s.PendingClaims != 0 {
		t.Errorf("unexpected counters %+v", s)
	}
}

func TestClaimLocks_ReleasesEntries(t *testing.T) {
	l := newClaimLocks()
	unlock := l.lock("CLM-1")
	done := make(chan struct{})
	go func() {
		l.lock("CLM-1")()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(10 * time.Millisecond):
	}
	unlock()
	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("expected no lock entries left, got %d", len(l.locks))
	}
}
