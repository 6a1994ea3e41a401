package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for appointment storage. Create must
// reject a booking whose slot overlaps an existing blocking appointment for
// the same date with ErrSlotTaken, atomically with the insert.
type Repository interface {
	Create(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter) ([]*Appointment, error)
	ListBlockingByDate(ctx context.Context, date string) ([]*Appointment, error)
	Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error)
	UpdateStatus(ctx context.Context, id, status string) (*Appointment, error)
}

// InMemoryRepository is an in-memory Repository used in tests and local
// development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	appts map[string]*Appointment
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appts: make(map[string]*Appointment)}
}

// Create inserts an appointment, rejecting overlaps under the same lock that
// performs the insert.
func (r *InMemoryRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appts {
		if existing.Date != appt.Date || !IsBlocking(existing.Status) {
			continue
		}
		if overlaps(appt.StartTime, appt.EndTime, existing.StartTime, existing.EndTime) {
			return nil, ErrSlotTaken
		}
	}

	stored := *appt
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now().UTC()
	r.appts[stored.ID] = &stored

	out := stored
	return &out, nil
}

// GetByID retrieves an appointment by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *appt
	return &out, nil
}

// List returns appointments matching the filter, ordered by date then start
// time.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, appt := range r.appts {
		if filter.PatientID != "" && appt.PatientID != filter.PatientID {
			continue
		}
		if filter.StartDate != "" && appt.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && appt.Date > filter.EndDate {
			continue
		}
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// ListBlockingByDate returns the non-cancelled appointments for a date.
func (r *InMemoryRepository) ListBlockingByDate(ctx context.Context, date string) ([]*Appointment, error) {
	all, err := r.List(ctx, ListFilter{StartDate: date, EndDate: date})
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, appt := range all {
		if IsBlocking(appt.Status) {
			out = append(out, appt)
		}
	}
	return out, nil
}

// Update applies a partial edit.
func (r *InMemoryRepository) Update(ctx context.Context, id string, req *UpdateRequest) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	// A reschedule rechecks the target window against every other blocking
	// appointment, same as Create.
	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		date, start, end := appt.Date, appt.StartTime, appt.EndTime
		if req.Date != nil {
			date = *req.Date
		}
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		for _, existing := range r.appts {
			if existing.ID == id || existing.Date != date || !IsBlocking(existing.Status) {
				continue
			}
			if overlaps(start, end, existing.StartTime, existing.EndTime) {
				return nil, ErrSlotTaken
			}
		}
	}

	if req.Date != nil {
		appt.Date = *req.Date
	}
	if req.StartTime != nil {
		appt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		appt.EndTime = *req.EndTime
	}
	if req.Title != nil {
		appt.Title = *req.Title
	}
	if req.TreatmentType != nil {
		appt.TreatmentType = *req.TreatmentType
	}
	if req.Doctor != nil {
		appt.Doctor = *req.Doctor
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	out := *appt
	return &out, nil
}

// UpdateStatus changes the lifecycle status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	appt.Status = status

	out := *appt
	return &out, nil
}

// overlaps tests half-open "HH:MM" intervals.
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}
