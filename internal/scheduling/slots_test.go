package scheduling

import (
	"testing"
	"time"
)

func TestDaySlots(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	slots := DaySlots(date)

	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	first := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	last := time.Date(2025, 6, 2, 16, 30, 0, 0, time.UTC)
	if !slots[0].Equal(first) {
		t.Fatalf("first slot = %s, want %s", slots[0], first)
	}
	if !slots[15].Equal(last) {
		t.Fatalf("last slot = %s, want %s", slots[15], last)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Sub(slots[i-1]) != SlotInterval {
			t.Fatalf("slot %d not %s after previous", i, SlotInterval)
		}
	}
}

func TestDaySlotsIgnoresTimeComponent(t *testing.T) {
	noon := time.Date(2025, 6, 2, 12, 17, 3, 0, time.UTC)
	midnight := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	a, b := DaySlots(noon), DaySlots(midnight)
	if len(a) != len(b) {
		t.Fatalf("slot count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("slot %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestAvailableRemovesExactMatchesOnly(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	nine := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	free := Available(date, []time.Time{nine})
	if len(free) != 15 {
		t.Fatalf("expected 15 free slots, got %d", len(free))
	}
	for _, slot := range free {
		if slot.Equal(nine) {
			t.Fatalf("booked slot %s still listed as available", nine)
		}
	}

	// A booking off the 30-minute grid blocks nothing.
	offGrid := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	free = Available(date, []time.Time{offGrid})
	if len(free) != 16 {
		t.Fatalf("off-grid booking removed slots: got %d free", len(free))
	}
}

func TestAvailableFullyBooked(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	free := Available(date, DaySlots(date))
	if len(free) != 0 {
		t.Fatalf("expected no free slots, got %d", len(free))
	}
}
