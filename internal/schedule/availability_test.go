package schedule

import (
	"testing"
	"time"
)

func findSlot(t *testing.T, slots []TimeSlot, start string) TimeSlot {
	t.Helper()
	for _, s := range slots {
		if s.Start == start {
			return s
		}
	}
	t.Fatalf("slot %s not found", start)
	return TimeSlot{}
}

func TestResolveAvailabilityNoAppointments(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	resolved := ResolveAvailability(slots, nil)

	for _, s := range resolved {
		if !s.Available {
			t.Errorf("slot %s should remain available with no appointments", s.Start)
		}
	}
}

func TestResolveAvailabilityMarksOverlap(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	resolved := ResolveAvailability(slots, []Busy{{Start: "10:00", End: "11:00"}})

	for _, s := range resolved {
		if s.Start == "10:00" {
			if s.Available {
				t.Error("10:00 slot should be unavailable")
			}
			if s.Reason != ReasonBooked {
				t.Errorf("10:00 slot reason = %q, want %q", s.Reason, ReasonBooked)
			}
			continue
		}
		if !s.Available {
			t.Errorf("slot %s should be available", s.Start)
		}
	}
}

func TestResolveAvailabilityMultiHourAppointment(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	resolved := ResolveAvailability(slots, []Busy{{Start: "09:00", End: "12:00"}})

	for _, start := range []string{"09:00", "10:00", "11:00"} {
		if findSlot(t, resolved, start).Available {
			t.Errorf("slot %s should be unavailable", start)
		}
	}
	if !findSlot(t, resolved, "08:00").Available {
		t.Error("08:00 slot should be available")
	}
	if !findSlot(t, resolved, "12:00").Available {
		t.Error("12:00 slot should be available, [start,end) is half-open")
	}
}

func TestResolveAvailabilityPartialOverlap(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	// A 30-minute appointment straddling the 10:00 boundary blocks both
	// touched slots.
	resolved := ResolveAvailability(slots, []Busy{{Start: "09:45", End: "10:15"}})

	if findSlot(t, resolved, "09:00").Available {
		t.Error("09:00 slot overlaps 09:45-10:15")
	}
	if findSlot(t, resolved, "10:00").Available {
		t.Error("10:00 slot overlaps 09:45-10:15")
	}
	if !findSlot(t, resolved, "11:00").Available {
		t.Error("11:00 slot should be available")
	}
}

func TestResolveAvailabilityDoesNotMutateInput(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	_ = ResolveAvailability(slots, []Busy{{Start: "08:00", End: "18:00"}})

	for _, s := range slots {
		if !s.Available {
			t.Fatal("ResolveAvailability must not mutate its input")
		}
	}
}

func TestApplyLeadTimeToday(t *testing.T) {
	p := DefaultPolicy()
	slots, _ := GenerateSlots(p, wednesday)

	// 09:30 on the queried day: 10:00 starts in 30 minutes, under the 60
	// minute lead time; 11:00 starts in 90 minutes and stays offered.
	now := time.Date(2026, 9, 2, 9, 30, 0, 0, time.UTC)
	filtered := ApplyLeadTime(p, wednesday, slots, now)

	ten := findSlot(t, filtered, "10:00")
	if ten.Available {
		t.Error("10:00 slot should be suppressed by lead time")
	}
	if ten.Reason != ReasonTooSoon {
		t.Errorf("10:00 slot reason = %q, want %q", ten.Reason, ReasonTooSoon)
	}
	if !findSlot(t, filtered, "11:00").Available {
		t.Error("11:00 slot should remain available")
	}
	if findSlot(t, filtered, "08:00").Available {
		t.Error("08:00 slot already started and should be suppressed")
	}
}

func TestApplyLeadTimeFutureDateUntouched(t *testing.T) {
	p := DefaultPolicy()
	slots, _ := GenerateSlots(p, wednesday)

	// Same clock time but the day before: not "today", so no filtering.
	now := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	filtered := ApplyLeadTime(p, wednesday, slots, now)

	for _, s := range filtered {
		if !s.Available {
			t.Errorf("slot %s should be untouched for a future date", s.Start)
		}
	}
}

func TestApplyLeadTimeNeverUpgrades(t *testing.T) {
	p := DefaultPolicy()
	slots, _ := GenerateSlots(p, wednesday)
	booked := ResolveAvailability(slots, []Busy{{Start: "16:00", End: "17:00"}})

	now := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	filtered := ApplyLeadTime(p, wednesday, booked, now)

	s := findSlot(t, filtered, "16:00")
	if s.Available {
		t.Error("booked slot must stay unavailable")
	}
	if s.Reason != ReasonBooked {
		t.Errorf("booked slot must keep its reason, got %q", s.Reason)
	}
}

// Cancelling an appointment frees its slot: the busy set is built from
// non-cancelled appointments only, so the same query without the interval
// returns the slot to available.
func TestCancelledAppointmentFreesSlot(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)

	before := ResolveAvailability(slots, []Busy{{Start: "10:00", End: "11:00"}})
	if findSlot(t, before, "10:00").Available {
		t.Fatal("10:00 slot should be taken before cancellation")
	}

	after := ResolveAvailability(slots, nil)
	if !findSlot(t, after, "10:00").Available {
		t.Fatal("10:00 slot should be available after cancellation")
	}
}
