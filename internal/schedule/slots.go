package schedule

import (
	"fmt"
	"time"
)

// Availability reasons reported alongside an unavailable slot so the UI can
// tell "booked by someone else" apart from "too soon to book".
const (
	ReasonBooked  = "booked"
	ReasonTooSoon = "too_soon"
)

// TimeSlot is a candidate appointment window. Derived on every query, never
// persisted.
type TimeSlot struct {
	Start     string `json:"start"` // "HH:MM"
	End       string `json:"end"`   // "HH:MM"
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// GenerateSlots produces the ordered slot list for a date. The second return
// value is false when the clinic is closed that day, in which case the slice
// is empty.
func GenerateSlots(p Policy, date time.Time) ([]TimeSlot, bool) {
	if !p.IsWorkingDay(date.Weekday()) {
		return []TimeSlot{}, false
	}

	slots := make([]TimeSlot, 0, p.BusinessEndHour-p.BusinessStartHour)
	for hour := p.BusinessStartHour; hour < p.BusinessEndHour; hour++ {
		if p.IsExcludedHour(hour) {
			continue
		}
		slots = append(slots, TimeSlot{
			Start:     fmt.Sprintf("%02d:00", hour),
			End:       fmt.Sprintf("%02d:00", hour+1),
			Available: true,
		})
	}
	return slots, true
}

// Partition splits slots into morning (start before 12:00) and afternoon
// (start at or after 14:00). The lunch gap falls between the two.
func Partition(slots []TimeSlot) (morning, afternoon []TimeSlot) {
	for _, s := range slots {
		switch h := hourOf(s.Start); {
		case h < 12:
			morning = append(morning, s)
		case h >= 14:
			afternoon = append(afternoon, s)
		}
	}
	return morning, afternoon
}

// minutesOf converts "HH:MM" to minutes since midnight. Malformed input
// yields -1, which never overlaps anything.
func minutesOf(hhmm string) int {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return -1
	}
	return h*60 + m
}

func hourOf(hhmm string) int {
	mins := minutesOf(hhmm)
	if mins < 0 {
		return -1
	}
	return mins / 60
}
