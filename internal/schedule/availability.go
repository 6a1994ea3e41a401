package schedule

import "time"

// Busy is an occupied interval on a day, half-open [Start, End).
type Busy struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// ResolveAvailability marks every slot that overlaps a busy interval as
// unavailable. Overlap is half-open: slot.start < busy.end && slot.end >
// busy.start, so the check stays correct if slot and appointment granularity
// ever diverge. Pure function; callers fetch the busy set beforehand and
// must exclude cancelled appointments from it.
func ResolveAvailability(slots []TimeSlot, busy []Busy) []TimeSlot {
	out := make([]TimeSlot, len(slots))
	copy(out, slots)

	for _, b := range busy {
		busyStart := minutesOf(b.Start)
		busyEnd := minutesOf(b.End)
		if busyStart < 0 || busyEnd <= busyStart {
			continue
		}
		for i := range out {
			if !out[i].Available {
				continue
			}
			slotStart := minutesOf(out[i].Start)
			slotEnd := minutesOf(out[i].End)
			if slotStart < busyEnd && slotEnd > busyStart {
				out[i].Available = false
				out[i].Reason = ReasonBooked
			}
		}
	}
	return out
}

// ApplyLeadTime downgrades same-day slots that start within the minimum lead
// time from now. Availability is only ever downgraded, never upgraded, and
// the check compares calendar dates, not timestamps: future dates pass
// through untouched.
func ApplyLeadTime(p Policy, date time.Time, slots []TimeSlot, now time.Time) []TimeSlot {
	if !sameDay(date, now) {
		return slots
	}

	out := make([]TimeSlot, len(slots))
	copy(out, slots)

	nowMinutes := now.Hour()*60 + now.Minute()
	for i := range out {
		if !out[i].Available {
			continue
		}
		if minutesOf(out[i].Start)-nowMinutes < p.MinimumLeadTimeMinutes {
			out[i].Available = false
			out[i].Reason = ReasonTooSoon
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
