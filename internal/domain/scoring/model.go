package scoring

import (
	"fmt"
	"time"
)

// DocumentMeta describes an uploaded claim document.
type DocumentMeta struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// DocumentChecks are the individual completeness checks on a document.
type DocumentChecks struct {
	ICDCode         bool `json:"icdCode"`
	ClinicalSummary bool `json:"clinicalSummary"`
	Signature       bool `json:"signature"`
	Date            bool `json:"date"`
}

// ExtractedData is what the validator read out of the document.
type ExtractedData struct {
	PatientName string `json:"patientName"`
	Diagnosis   string `json:"diagnosis"`
	ICDCode     string `json:"icdCode"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
}

type DocumentValidation struct {
	DocumentMeta
	ValidationScore int            `json:"validationScore"`
	Status          string         `json:"status"`
	Checks          DocumentChecks `json:"checks"`
	ExtractedData   ExtractedData  `json:"extractedData"`
	Timestamp       time.Time      `json:"timestamp"`
}

// Document validation statuses.
const (
	DocumentExcellent   = "excellent"
	DocumentGood        = "good"
	DocumentNeedsReview = "needs_review"
)

// Subject is the part of a claim a strategy may look at.
type Subject struct {
	ClaimID   string
	Service   string
	Diagnosis string
	Amount    string
}

// ClaimScore is assigned to a claim at creation.
type ClaimScore struct {
	AIScore        int `json:"aiScore"`
	FraudRiskScore int `json:"fraudRiskScore"`
}

type FraudAnalysis struct {
	ClaimID        string    `json:"claimId"`
	FraudScore     int       `json:"fraudScore"`
	RiskLevel      string    `json:"riskLevel"`
	RiskFactors    []string  `json:"riskFactors"`
	Recommendation string    `json:"recommendation"`
	AIExplanation  string    `json:"aiExplanation"`
	Timestamp      time.Time `json:"timestamp"`
}

// Fraud risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// HighFraudRisk is the fraud risk score at which a claim raises an alert.
const HighFraudRisk = 80

// DocumentStatus classifies a validation score.
func DocumentStatus(score int) string {
	switch {
	case score >= 85:
		return DocumentExcellent
	case score >= 70:
		return DocumentGood
	default:
		return DocumentNeedsReview
	}
}

// RiskLevel classifies a fraud score.
func RiskLevel(score int) string {
	switch {
	case score >= HighFraudRisk:
		return RiskHigh
	case score >= 60:
		return RiskMedium
	default:
		return RiskLow
	}
}

// NewFraudAnalysis fills in the narrative fields for score.
func NewFraudAnalysis(claimID string, score int, now time.Time) *FraudAnalysis {
	factors := []string{}
	switch {
	case score > 80:
		factors = append(factors, "Duplicate claim pattern detected", "Unusual billing amount for diagnosis")
	case score > 60:
		factors = append(factors, "Moderate risk pattern identified")
	}

	level := RiskLevel(score)
	recommendation := "Low risk - proceed normally"
	indicators := 8
	switch level {
	case RiskHigh:
		recommendation = "Immediate investigation required"
		indicators = 15
	case RiskMedium:
		recommendation = "Manual review recommended"
	}

	return &FraudAnalysis{
		ClaimID:        claimID,
		FraudScore:     score,
		RiskLevel:      level,
		RiskFactors:    factors,
		Recommendation: recommendation,
		AIExplanation:  fmt.Sprintf("Based on pattern analysis of %d key indicators including billing patterns, diagnosis codes, and historical data.", indicators),
		Timestamp:      now,
	}
}

func sampleExtraction(now time.Time) ExtractedData {
	return ExtractedData{
		PatientName: "Ahmad Wijaya",
		Diagnosis:   "Demam Berdarah Dengue",
		ICDCode:     "A91",
		DoctorName:  "dr. Siti Nurhaliza, Sp.PD",
		Date:        now.UTC().Format("2006-01-02"),
	}
}
