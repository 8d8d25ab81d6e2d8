package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/healthchain/portal/internal/domain/alerts"
	"github.com/healthchain/portal/internal/domain/claims"
	"github.com/healthchain/portal/internal/domain/identity"
	"github.com/healthchain/portal/internal/platform/apperr"
	"github.com/healthchain/portal/internal/platform/auth"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "demo123"

var demoAccounts = []identity.SignupInput{
	{
		Email:       "admin@bpjs.go.id",
		Name:        "Admin BPJS Pusat",
		Role:        "admin-bpjs",
		PhoneNumber: "021-1500400",
		Address:     "Jakarta Pusat",
	},
	{
		Email:       "admin@rscipto.id",
		Name:        "Admin RS Cipto Mangunkusumo",
		Role:        "faskes",
		PhoneNumber: "021-3149270",
		Address:     "Jakarta Pusat",
		Facility:    identity.DefaultPrimaryFacility,
	},
	{
		Email:       "peserta@email.com",
		Name:        "Ahmad Wijaya",
		Role:        "peserta",
		PhoneNumber: "081234567890",
		Address:     "Jl. Sudirman No. 123, Jakarta",
		Facility:    identity.DefaultPrimaryFacility,
	},
}

// SeedReport summarizes what Seed wrote.
type SeedReport struct {
	Accounts         int
	AccountsExisting int
	Claims           int
	Alerts           int
	ClaimsCounted    int
}

// Seed loads the demo accounts, claims and alerts, then rebuilds the
// dashboard counters. Running it again leaves existing accounts and alerts
// alone and rewrites the demo claims.
func (s *Services) Seed(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}
	ids := make(map[auth.Role]string, len(demoAccounts))

	for _, acct := range demoAccounts {
		acct.Password = DemoPassword
		id, created, err := s.ensureAccount(ctx, acct)
		if err != nil {
			return nil, fmt.Errorf("seed account %s: %w", acct.Email, err)
		}
		if created {
			report.Accounts++
		} else {
			report.AccountsExisting++
		}
		role, _ := auth.ParseRole(acct.Role)
		ids[role] = id
	}

	facilityID := ids[auth.RoleFacility]
	demo := demoClaims(facilityID)
	if err := s.Claims.Import(ctx, demo); err != nil {
		return nil, fmt.Errorf("seed claims: %w", err)
	}
	report.Claims = len(demo)

	admin := auth.Principal{UserID: ids[auth.RoleAdmin], Roles: []string{string(auth.RoleAdmin)}}
	existing, err := s.Alerts.List(ctx, admin)
	if err != nil {
		return nil, fmt.Errorf("seed alerts: %w", err)
	}
	if len(existing) == 0 {
		for _, in := range demoAlerts(admin.UserID) {
			if _, err := s.Alerts.Create(ctx, in); err != nil {
				return nil, fmt.Errorf("seed alerts: %w", err)
			}
			report.Alerts++
		}
	}

	n, err := s.Analytics.Rebuild(ctx, s.Claims)
	if err != nil {
		return nil, fmt.Errorf("rebuild analytics: %w", err)
	}
	report.ClaimsCounted = n
	return report, nil
}

// ensureAccount signs acct up, or logs in when the email is already taken.
func (s *Services) ensureAccount(ctx context.Context, acct identity.SignupInput) (string, bool, error) {
	u, err := s.Identity.Signup(ctx, acct)
	if err == nil {
		return u.ID, true, nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return "", false, err
	}
	sess, err := s.Identity.Login(ctx, acct.Email, acct.Password)
	if err != nil {
		return "", false, fmt.Errorf("account exists with a different password: %w", err)
	}
	return sess.User.ID, false, nil
}

func demoClaims(facilityID string) []*claims.Claim {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	mk := func(id, patient, service, diagnosis, amount, status string, ai, risk int, created, updated string) *claims.Claim {
		c := &claims.Claim{
			ID:             id,
			PatientName:    patient,
			Service:        service,
			Diagnosis:      diagnosis,
			Amount:         amount,
			FacilityID:     facilityID,
			Status:         status,
			AIScore:        ai,
			FraudRiskScore: risk,
			CreatedAt:      at(created),
			UpdatedAt:      at(created),
			CreatedBy:      facilityID,
		}
		if updated != "" {
			c.UpdatedAt = at(updated)
		}
		return c
	}
	return []*claims.Claim{
		mk("CLM-2024-1523", "Ahmad Wijaya", "Rawat Inap", "Demam Berdarah Dengue", "Rp 4.500.000",
			claims.StatusApproved, 98, 15, "2024-11-10T08:00:00Z", "2024-11-10T10:30:00Z"),
		mk("CLM-2024-1524", "Siti Nurhaliza", "Rawat Jalan", "Hipertensi", "Rp 850.000",
			claims.StatusProcessing, 95, 22, "2024-11-12T09:15:00Z", ""),
		mk("CLM-2024-1525", "Budi Santoso", "IGD", "Gastritis Akut", "Rp 2.300.000",
			claims.StatusPendingReview, 72, 68, "2024-11-13T14:20:00Z", ""),
	}
}

func demoAlerts(adminID string) []alerts.CreateInput {
	return []alerts.CreateInput{
		{
			Type:       alerts.TypeFraud,
			Severity:   alerts.SeverityHigh,
			Message:    "Potensi fraud terdeteksi di RS. Permata Medika",
			Recipients: []string{adminID},
		},
		{
			Type:       alerts.TypeSpike,
			Severity:   alerts.SeverityMedium,
			Message:    "Lonjakan klaim 45% di Jawa Barat",
			Recipients: []string{adminID},
		},
	}
}
