package medication

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func TestFromBackendDrug(t *testing.T) {
	got := FromBackendDrug(BackendDrug{
		DrugName:     "  타이레놀정500mg ",
		Dosage:       "1정",
		Frequency:    "1일 3회",
		Duration:     "5일",
		Instructions: "식후 30분",
		Confidence:   0.91,
	})

	if _, err := uuid.Parse(got.ID); err != nil {
		t.Errorf("ID %q is not a uuid: %v", got.ID, err)
	}
	if got.Name != "타이레놀정500mg" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Dosage != "1정" || got.Frequency != "1일 3회" || got.Duration != "5일" || got.Instructions != "식후 30분" {
		t.Errorf("fields not mapped: %+v", got)
	}
	if got.Confidence != 0.91 || got.Source != SourceBackend {
		t.Errorf("Confidence = %v, Source = %q", got.Confidence, got.Source)
	}
}

func TestFromBackendDrugDurationFallback(t *testing.T) {
	if got := FromBackendDrug(BackendDrug{TotalDays: 14}); got.Duration != "14일" {
		t.Errorf("Duration = %q, want 14일", got.Duration)
	}
	if got := FromBackendDrug(BackendDrug{}); got.Duration != "" {
		t.Errorf("Duration = %q, want empty", got.Duration)
	}
	if got := FromBackendDrug(BackendDrug{Duration: "3일", TotalDays: 14}); got.Duration != "3일" {
		t.Errorf("explicit duration should win, got %q", got.Duration)
	}
}

func TestFromBackendDrugClampsConfidence(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{1.7, 1},
		{math.NaN(), 0},
		{0.5, 0.5},
	}
	for _, tc := range tests {
		if got := FromBackendDrug(BackendDrug{Confidence: tc.in}).Confidence; got != tc.want {
			t.Errorf("clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFromBackendDrugsPreservesOrder(t *testing.T) {
	got := FromBackendDrugs([]BackendDrug{{DrugName: "a"}, {DrugName: "b"}, {DrugName: "c"}})
	if len(got) != 3 || got[0].Name != "a" || got[1].Name != "b" || got[2].Name != "c" {
		t.Errorf("order not preserved: %+v", got)
	}
	if got[0].ID == got[1].ID {
		t.Error("IDs should be unique")
	}

	if empty := FromBackendDrugs(nil); empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}
