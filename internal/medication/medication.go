// Package medication holds the application's medication record and the
// mapping from the backend parser's drug records into it.
package medication

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// SourceBackend marks medications produced by the backend parsing service
const SourceBackend = "backend"

// BackendDrug is one drug entry as returned by the backend parsing service
type BackendDrug struct {
	DrugName     string  `json:"drug_name"`
	Dosage       string  `json:"dosage"`
	Frequency    string  `json:"frequency"`
	Duration     string  `json:"duration"`
	TotalDays    int     `json:"total_days"`
	Instructions string  `json:"instructions"`
	Confidence   float64 `json:"confidence"`
}

// ParseResult is the backend parsing service's response body
type ParseResult struct {
	Drugs []BackendDrug `json:"drugs"`
}

// Medication is a medication entry owned by the caller
type Medication struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Dosage       string  `json:"dosage"`
	Frequency    string  `json:"frequency"`
	Duration     string  `json:"duration"`
	Instructions string  `json:"instructions,omitempty"`
	Confidence   float64 `json:"confidence"`
	Source       string  `json:"source"`
}

// FromBackendDrug maps a backend drug record. Every input produces a Medication.
func FromBackendDrug(d BackendDrug) Medication {
	duration := strings.TrimSpace(d.Duration)
	if duration == "" && d.TotalDays > 0 {
		duration = fmt.Sprintf("%d일", d.TotalDays)
	}

	return Medication{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(d.DrugName),
		Dosage:       strings.TrimSpace(d.Dosage),
		Frequency:    strings.TrimSpace(d.Frequency),
		Duration:     duration,
		Instructions: strings.TrimSpace(d.Instructions),
		Confidence:   clamp01(d.Confidence),
		Source:       SourceBackend,
	}
}

// FromBackendDrugs maps drugs in order. The result is never nil.
func FromBackendDrugs(drugs []BackendDrug) []Medication {
	out := make([]Medication, 0, len(drugs))
	for _, d := range drugs {
		out = append(out, FromBackendDrug(d))
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
