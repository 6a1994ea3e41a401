// Package reports builds dashboard aggregates for the front desk.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PatientStats summarizes patient intake.
type PatientStats struct {
	Total      int            `json:"total"`
	ThisYear   int            `json:"this_year"`
	LastMonths []MonthlyCount `json:"last_months"`
}

// MonthlyCount is one month's worth of new patients.
type MonthlyCount struct {
	Month string `json:"month"` // "2026-08"
	Count int    `json:"count"`
}

// AppointmentStats summarizes the schedule load.
type AppointmentStats struct {
	Today    int            `json:"today"`
	ThisWeek int            `json:"this_week"`
	ByStatus map[string]int `json:"by_status"`
}

// Service answers dashboard queries. It runs plain read-only SQL over
// database/sql so the aggregates stay decoupled from the row repositories.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// PatientStats counts total and current-year patients plus a monthly
// breakdown of the trailing three months.
func (s *Service) PatientStats(ctx context.Context) (*PatientStats, error) {
	var stats PatientStats

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('year', now()))
		FROM patients`).Scan(&stats.Total, &stats.ThisYear)
	if err != nil {
		return nil, fmt.Errorf("reports: patient totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM patients
		WHERE created_at >= date_trunc('month', now()) - interval '2 months'
		GROUP BY 1
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mc MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("reports: scan monthly patients: %w", err)
		}
		stats.LastMonths = append(stats.LastMonths, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: monthly patients: %w", err)
	}
	return &stats, nil
}

// AppointmentStats counts today's and this week's appointments and breaks
// the total down by status. Cancelled appointments still show up in the
// by-status map but not in the day and week counts.
func (s *Service) AppointmentStats(ctx context.Context, now time.Time) (*AppointmentStats, error) {
	stats := &AppointmentStats{ByStatus: make(map[string]int)}
	today := now.Format(time.DateOnly)

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE appointment_date = $1::date AND status <> 'cancelled'),
			COUNT(*) FILTER (WHERE appointment_date >= date_trunc('week', $1::date)
				AND appointment_date < date_trunc('week', $1::date) + interval '7 days'
				AND status <> 'cancelled')
		FROM appointments`, today).Scan(&stats.Today, &stats.ThisWeek)
	if err != nil {
		return nil, fmt.Errorf("reports: appointment totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("reports: appointments by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("reports: scan appointments by status: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: appointments by status: %w", err)
	}
	return stats, nil
}
