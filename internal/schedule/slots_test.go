package schedule

import (
	"testing"
	"time"
)

// 2026-09-02 is a Wednesday.
var wednesday = time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)

// 2026-09-06 is a Sunday.
var sunday = time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

func TestGenerateSlotsClosedDay(t *testing.T) {
	slots, open := GenerateSlots(DefaultPolicy(), sunday)
	if open {
		t.Fatal("expected Sunday to be closed")
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(slots))
	}
}

func TestGenerateSlotsWorkingDay(t *testing.T) {
	p := DefaultPolicy()
	slots, open := GenerateSlots(p, wednesday)
	if !open {
		t.Fatal("expected Wednesday to be open")
	}

	// Hours 8..17 inclusive start, minus the 13:00 lunch hour.
	want := (p.BusinessEndHour - p.BusinessStartHour) - len(p.ExcludedHours)
	if len(slots) != want {
		t.Fatalf("slot count = %d, want %d", len(slots), want)
	}

	if slots[0].Start != "08:00" || slots[0].End != "09:00" {
		t.Errorf("first slot = %s-%s, want 08:00-09:00", slots[0].Start, slots[0].End)
	}
	last := slots[len(slots)-1]
	if last.Start != "17:00" || last.End != "18:00" {
		t.Errorf("last slot = %s-%s, want 17:00-18:00", last.Start, last.End)
	}

	for i, s := range slots {
		if !s.Available {
			t.Errorf("slot %d should start available", i)
		}
		if s.Start == "13:00" {
			t.Error("13:00 slot should be excluded")
		}
		if i > 0 && minutesOf(slots[i-1].Start) >= minutesOf(s.Start) {
			t.Error("slots must be ordered ascending by start time")
		}
	}
}

func TestPartition(t *testing.T) {
	slots, _ := GenerateSlots(DefaultPolicy(), wednesday)
	morning, afternoon := Partition(slots)

	for _, s := range morning {
		if hourOf(s.Start) >= 12 {
			t.Errorf("morning slot %s starts at or after 12:00", s.Start)
		}
	}
	for _, s := range afternoon {
		if hourOf(s.Start) < 14 {
			t.Errorf("afternoon slot %s starts before 14:00", s.Start)
		}
	}
	// 08..11 morning, 14..17 afternoon, 12 falls in the gap.
	if len(morning) != 4 {
		t.Errorf("morning count = %d, want 4", len(morning))
	}
	if len(afternoon) != 4 {
		t.Errorf("afternoon count = %d, want 4", len(afternoon))
	}
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy should validate: %v", err)
	}

	bad := p
	bad.BusinessEndHour = p.BusinessStartHour
	if err := bad.Validate(); err != ErrInvalidHours {
		t.Errorf("expected ErrInvalidHours, got %v", err)
	}

	bad = p
	bad.ExcludedHours = []int{7}
	if err := bad.Validate(); err != ErrExcludedOutside {
		t.Errorf("expected ErrExcludedOutside, got %v", err)
	}

	bad = p
	bad.SlotDurationMinutes = 0
	if err := bad.Validate(); err != ErrInvalidDuration {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}
