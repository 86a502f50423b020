package scheduling

import (
	"testing"
	"time"
)

func TestValidStatus(t *testing.T) {
	cases := []struct {
		status string
		valid  bool
	}{
		{"Scheduled", true},
		{"Completed", true},
		{"Cancelled", true},
		{"NoShow", true},
		{"scheduled", false},
		{"Pending", false},
		{"", false},
	}

	for _, tt := range cases {
		if got := ValidStatus(tt.status); got != tt.valid {
			t.Fatalf("ValidStatus(%q)=%v, want %v", tt.status, got, tt.valid)
		}
	}
}

func TestCheckStartTime(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	if err := CheckStartTime(now.Add(-time.Minute), now); err == nil {
		t.Fatal("expected error for start one minute in the past")
	}
	if err := CheckStartTime(now.Add(time.Minute), now); err != nil {
		t.Fatalf("start one minute ahead rejected: %v", err)
	}
	if err := CheckStartTime(now, now); err != nil {
		t.Fatalf("start equal to now rejected: %v", err)
	}
}
