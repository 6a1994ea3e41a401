package appointments

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/odontosys/clinic-api/internal/observability/metrics"
	"github.com/odontosys/clinic-api/internal/schedule"
	"github.com/odontosys/clinic-api/pkg/logging"
)

var apptTracer = otel.Tracer("clinic.internal.appointments")

const closedDayMessage = "La clínica está cerrada este día"

// AvailabilityResponse is the payload returned for an availability query.
type AvailabilityResponse struct {
	Date      string              `json:"date"`
	Available bool                `json:"available"`
	Message   string              `json:"message,omitempty"`
	Slots     []schedule.TimeSlot `json:"slots"`
	Morning   []schedule.TimeSlot `json:"morning"`
	Afternoon []schedule.TimeSlot `json:"afternoon"`
}

// PolicyProvider supplies the clinic calendar policy.
type PolicyProvider interface {
	Get(ctx context.Context) (schedule.Policy, error)
}

// Service wires the slot pipeline to appointment storage.
type Service struct {
	repo     Repository
	policies PolicyProvider
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService constructs an appointments service.
func NewService(repo Repository, policies PolicyProvider, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		policies: policies,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Availability runs the full slot pipeline for a date: generate, mark booked
// slots from non-cancelled appointments, then apply the same-day lead-time
// cutoff.
func (s *Service) Availability(ctx context.Context, date string) (*AvailabilityResponse, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.availability")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.date", date))

	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: load policy: %w", err)
	}

	slots, open := schedule.GenerateSlots(policy, day)
	s.metrics.ObserveAvailabilityQuery(open)
	if !open {
		morning, afternoon := schedule.Partition(slots)
		return &AvailabilityResponse{Date: date, Available: false, Message: closedDayMessage, Slots: slots, Morning: morning, Afternoon: afternoon}, nil
	}

	existing, err := s.repo.ListBlockingByDate(ctx, date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	busy := make([]schedule.Busy, 0, len(existing))
	for _, appt := range existing {
		busy = append(busy, schedule.Busy{Start: appt.StartTime, End: appt.EndTime})
	}

	slots = schedule.ResolveAvailability(slots, busy)
	slots = schedule.ApplyLeadTime(policy, day, slots, s.now())
	morning, afternoon := schedule.Partition(slots)

	return &AvailabilityResponse{Date: date, Available: true, Slots: slots, Morning: morning, Afternoon: afternoon}, nil
}

// Create validates and books a new appointment. End time defaults to start
// plus the slot duration, title to the treatment label, status to scheduled.
// The storage layer rechecks the slot atomically with the insert.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Appointment, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := s.policies.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: load policy: %w", err)
	}

	day, _ := time.Parse(time.DateOnly, req.Date)
	if !policy.IsWorkingDay(day.Weekday()) {
		return nil, ErrClosedDay
	}

	start, _ := time.Parse("15:04", req.StartTime)
	endStr := req.EndTime
	if endStr == "" {
		endStr = start.Add(time.Duration(policy.SlotDurationMinutes) * time.Minute).Format("15:04")
	}
	end, _ := time.Parse("15:04", endStr)
	if !start.Before(end) {
		return nil, ErrInvalidTimeRange
	}
	if start.Hour() < policy.BusinessStartHour || start.Hour() >= policy.BusinessEndHour || policy.IsExcludedHour(start.Hour()) {
		return nil, ErrOutsideBusinessHours
	}
	// The end time must not run past closing either.
	if end.Hour()*60+end.Minute() > policy.BusinessEndHour*60 {
		return nil, ErrOutsideBusinessHours
	}

	title := req.Title
	if title == "" {
		title = req.TreatmentType
	}

	appt := &Appointment{
		PatientID:     req.PatientID,
		Date:          req.Date,
		StartTime:     start.Format("15:04"),
		EndTime:       end.Format("15:04"),
		Title:         title,
		TreatmentType: req.TreatmentType,
		Doctor:        req.Doctor,
		Notes:         req.Notes,
		Status:        StatusScheduled,
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		if err == ErrSlotTaken {
			s.metrics.ObserveSlotConflict()
		}
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment booked",
		"id", created.ID,
		"patient_id", created.PatientID,
		"date", created.Date,
		"start", created.StartTime,
	)
	return created, nil
}

// ChangeStatus moves an appointment through its lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, id, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	appt, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment status changed", "id", id, "status", status)
	return appt, nil
}

// Cancel soft-deletes an appointment. The row remains; availability frees up
// because cancelled appointments never block.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	return s.ChangeStatus(ctx, id, StatusCancelled)
}
