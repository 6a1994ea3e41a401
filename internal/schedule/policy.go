// Package schedule implements the clinic calendar: slot generation,
// availability resolution against booked appointments, and the same-day
// lead-time cutoff.
package schedule

import (
	"errors"
	"time"
)

// Policy holds the clinic calendar configuration.
type Policy struct {
	// BusinessStartHour and BusinessEndHour bound the bookable day.
	// Slots start on the hour from start (inclusive) to end (exclusive).
	BusinessStartHour int `json:"business_start_hour"`
	BusinessEndHour   int `json:"business_end_hour"`

	// ExcludedHours are hours with no slots, e.g. the 13:00 lunch break.
	ExcludedHours []int `json:"excluded_hours"`

	// WorkingDays are the weekdays the clinic is open.
	WorkingDays []time.Weekday `json:"working_days"`

	SlotDurationMinutes    int `json:"slot_duration_minutes"`
	MinimumLeadTimeMinutes int `json:"minimum_lead_time_minutes"`
}

// DefaultPolicy returns the clinic's standard calendar: 08:00-18:00,
// Monday through Friday, hourly slots, 13:00 lunch break, and a one hour
// minimum lead time for same-day bookings.
func DefaultPolicy() Policy {
	return Policy{
		BusinessStartHour:      8,
		BusinessEndHour:        18,
		ExcludedHours:          []int{13},
		WorkingDays:            []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		SlotDurationMinutes:    60,
		MinimumLeadTimeMinutes: 60,
	}
}

var (
	ErrInvalidHours    = errors.New("schedule: business end hour must be after start hour")
	ErrInvalidDuration = errors.New("schedule: slot duration must be positive")
	ErrExcludedOutside = errors.New("schedule: excluded hour outside business hours")
)

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	if p.BusinessStartHour < 0 || p.BusinessEndHour > 24 || p.BusinessEndHour <= p.BusinessStartHour {
		return ErrInvalidHours
	}
	if p.SlotDurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	for _, h := range p.ExcludedHours {
		if h < p.BusinessStartHour || h >= p.BusinessEndHour {
			return ErrExcludedOutside
		}
	}
	return nil
}

// IsWorkingDay reports whether the clinic is open on the given weekday.
func (p Policy) IsWorkingDay(d time.Weekday) bool {
	for _, wd := range p.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

// IsExcludedHour reports whether no slot starts at the given hour.
func (p Policy) IsExcludedHour(h int) bool {
	for _, eh := range p.ExcludedHours {
		if eh == h {
			return true
		}
	}
	return false
}
