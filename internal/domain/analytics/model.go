package analytics

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/healthchain/portal/internal/domain/identity"
)

// Claim statuses counted by the dashboards.
const (
	StatusApproved      = "approved"
	StatusProcessing    = "processing"
	StatusPendingReview = "pending_review"
	StatusRejected      = "rejected"
)

// FraudThreshold is the fraud risk score at which a claim counts as
// detected fraud.
const FraudThreshold = 80

// avgProcessingDays is reported on the admin dashboard until processing
// times are tracked per claim.
const avgProcessingDays = 2.4

// ClaimFacts is what analytics needs to know about a claim.
type ClaimFacts struct {
	ID             string
	CreatedBy      string
	Status         string
	Amount         string
	AIScore        int
	FraudRiskScore int
}

// Counters are the running aggregates for one scope: all claims, or the
// claims of one user.
type Counters struct {
	TotalClaims   int             `json:"totalClaims"`
	ByStatus      map[string]int  `json:"byStatus"`
	FraudDetected int             `json:"fraudDetected"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AIScoreSum    int64           `json:"aiScoreSum"`
}

func newCounters() *Counters {
	return &Counters{ByStatus: make(map[string]int)}
}

func (c *Counters) add(f ClaimFacts) {
	if c.ByStatus == nil {
		c.ByStatus = make(map[string]int)
	}
	c.TotalClaims++
	c.ByStatus[f.Status]++
	if f.FraudRiskScore >= FraudThreshold {
		c.FraudDetected++
	}
	c.TotalAmount = c.TotalAmount.Add(ParseAmount(f.Amount))
	c.AIScoreSum += int64(f.AIScore)
}

func (c *Counters) move(from, to string) {
	if c.ByStatus == nil {
		c.ByStatus = make(map[string]int)
	}
	if c.ByStatus[from] > 0 {
		c.ByStatus[from]--
	}
	c.ByStatus[to]++
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// ParseAmount reads a free-form amount such as "Rp 4.500.000" by keeping its
// digits. Amounts without digits count as zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(nonDigits.ReplaceAllString(s, ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// AdminSummary is the program-wide dashboard.
type AdminSummary struct {
	TotalClaims         int     `json:"totalClaims"`
	ApprovedClaims      int     `json:"approvedClaims"`
	PendingClaims       int     `json:"pendingClaims"`
	PendingReviewClaims int     `json:"pendingReviewClaims"`
	RejectedClaims      int     `json:"rejectedClaims"`
	FraudDetected       int     `json:"fraudDetected"`
	TotalAmount         float64 `json:"totalAmount"`
	AvgProcessingTime   float64 `json:"avgProcessingTime"`
	ApprovalRate        float64 `json:"approvalRate"`
}

// FacilitySummary covers the claims a facility submitted.
type FacilitySummary struct {
	TotalClaims    int     `json:"totalClaims"`
	ApprovedClaims int     `json:"approvedClaims"`
	AvgAIScore     float64 `json:"avgAiScore"`
	CurrentQueue   int     `json:"currentQueue"`
}

// BeneficiarySummary covers a beneficiary's own claims and membership.
type BeneficiarySummary struct {
	TotalClaims     int                       `json:"totalClaims"`
	ApprovedClaims  int                       `json:"approvedClaims"`
	ParticipantCard *identity.ParticipantCard `json:"participantCard,omitempty"`
}
