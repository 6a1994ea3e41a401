package reports

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\),`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "this_year"}).AddRow(120, 34))
	mock.ExpectQuery(`date_trunc\('month', created_at\)`).
		WillReturnRows(sqlmock.NewRows([]string{"month", "count"}).
			AddRow("2026-06", 9).
			AddRow("2026-07", 12).
			AddRow("2026-08", 13))

	stats, err := NewService(db).PatientStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, stats.Total)
	assert.Equal(t, 34, stats.ThisYear)
	require.Len(t, stats.LastMonths, 3)
	assert.Equal(t, MonthlyCount{Month: "2026-07", Count: 12}, stats.LastMonths[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentStats(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`appointment_date = \$1::date`).
		WithArgs("2026-08-28").
		WillReturnRows(sqlmock.NewRows([]string{"today", "this_week"}).AddRow(5, 23))
	mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("scheduled", 14).
			AddRow("completed", 40).
			AddRow("cancelled", 6))

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	stats, err := NewService(db).AppointmentStats(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Today)
	assert.Equal(t, 23, stats.ThisWeek)
	assert.Equal(t, 40, stats.ByStatus["completed"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientStatsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\),`).WillReturnError(context.DeadlineExceeded)

	_, err = NewService(db).PatientStats(context.Background())
	assert.Error(t, err)
}
