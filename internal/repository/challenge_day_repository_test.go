package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeDayListDue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChallengeDayRepository(db)

	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"day_number", "title", "description", "is_active", "deadline", "is_expired", "updated_at"}).
		AddRow(1, "Day 1", "", true, now.Add(-time.Hour), false, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE deadline <= $1 AND is_expired = FALSE ORDER BY day_number ASC")).
		WithArgs(now).
		WillReturnRows(rows)

	days, err := repo.ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].DayNumber)
}

func TestChallengeDayExpireDayInsertsMissed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChallengeDayRepository(db)

	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).WithArgs(advisoryKey(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_expired FROM challenge_days WHERE day_number = $1 FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"is_expired"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM profiles WHERE role = 'student'")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1").AddRow("u2").AddRow("u3"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM submissions WHERE day_number = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u2"))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, day_number) DO NOTHING")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1, "linkedin", "missed", now).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE challenge_days SET is_expired = TRUE")).WithArgs(1, now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE challenge_days SET is_active = TRUE")).WithArgs(2, now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var gotRegistered, gotSubmitted []string
	result, err := repo.ExpireDay(context.Background(), ExpireDayParams{
		DayNumber: 1,
		TotalDays: 15,
		Feedback:  "missed",
		Now:       now,
		Missing: func(registered, submitted []string) []string {
			gotRegistered, gotSubmitted = registered, submitted
			return []string{"u1", "u3"}
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, []string{"u1", "u2", "u3"}, gotRegistered)
	assert.Equal(t, []string{"u2"}, gotSubmitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeDayExpireDaySkipsLatched(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChallengeDayRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT is_expired").WithArgs(3).WillReturnRows(sqlmock.NewRows([]string{"is_expired"}).AddRow(true))
	mock.ExpectCommit()

	result, err := repo.ExpireDay(context.Background(), ExpireDayParams{DayNumber: 3, TotalDays: 15, Missing: func(_, _ []string) []string {
		t.Fatal("missing must not be computed for an expired day")
		return nil
	}})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChallengeDayExpireFinalDayDoesNotActivateNext(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewChallengeDayRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT is_expired").WithArgs(15).WillReturnRows(sqlmock.NewRows([]string{"is_expired"}).AddRow(false))
	mock.ExpectQuery("SELECT id FROM profiles").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT user_id FROM submissions").WithArgs(15).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec("SET is_expired = TRUE").WithArgs(15, now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.ExpireDay(context.Background(), ExpireDayParams{DayNumber: 15, TotalDays: 15, Now: now, Missing: func(_, _ []string) []string { return nil }})
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
