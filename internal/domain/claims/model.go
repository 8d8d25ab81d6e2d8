package claims

import (
	"fmt"
	"time"
)

// Claim statuses.
const (
	StatusApproved      = "approved"
	StatusProcessing    = "processing"
	StatusPendingReview = "pending_review"
	StatusRejected      = "rejected"
)

// transitions lists the statuses each status may move to. Approved and
// rejected claims are final, so a claim the scorer auto-approved (aiScore of
// 90 or more) can no longer be rejected.
var transitions = map[string][]string{
	StatusPendingReview: {StatusApproved, StatusRejected},
	StatusProcessing:    {StatusApproved, StatusRejected, StatusPendingReview},
	StatusApproved:      nil,
	StatusRejected:      nil,
}

// KnownStatus reports whether s is a claim status.
func KnownStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a claim in status from may move to status to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusForScore derives a new claim's status from its AI score.
func StatusForScore(aiScore int) string {
	switch {
	case aiScore >= 90:
		return StatusApproved
	case aiScore >= 70:
		return StatusProcessing
	default:
		return StatusPendingReview
	}
}

// Document is a supporting file attached to a claim.
type Document struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Claim struct {
	ID             string     `json:"id"`
	PatientName    string     `json:"patientName"`
	Service        string     `json:"service"`
	Diagnosis      string     `json:"diagnosis"`
	Amount         string     `json:"amount"`
	FacilityID     string     `json:"facilityId"`
	Status         string     `json:"status"`
	AIScore        int        `json:"aiScore"`
	FraudRiskScore int        `json:"fraudRiskScore"`
	Documents      []Document `json:"documents"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CreatedBy      string     `json:"createdBy"`
	Notes          string     `json:"notes,omitempty"`
}

// ClaimID formats the id of the seq-th claim of year.
func ClaimID(year int, seq int64) string {
	return fmt.Sprintf("CLM-%d-%04d", year, seq)
}

type CreateInput struct {
	PatientName string
	Service     string
	Diagnosis   string
	Amount      string
	FacilityID  string
	Documents   []Document
}
