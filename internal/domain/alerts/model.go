package alerts

import "time"

// Severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert types raised by the portal itself.
const (
	TypeFraud  = "fraud"
	TypeSpike  = "spike"
	TypeSystem = "system"
)

type Alert struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	ClaimID    string    `json:"claimId,omitempty"`
	FacilityID string    `json:"facilityId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// CreateInput describes a new alert. Recipients are the users whose alert
// inbox receives it; administrators see every alert regardless.
type CreateInput struct {
	Type       string   `json:"type"`
	Severity   string   `json:"severity"`
	Message    string   `json:"message"`
	ClaimID    string   `json:"claimId"`
	FacilityID string   `json:"facilityId"`
	Recipients []string `json:"-"`
}

func validSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}
