package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardListPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	rows := sqlmock.NewRows([]string{"rank", "user_id", "full_name", "avatar_url", "university", "total_points", "validated_count"}).
		AddRow(1, "u1", "Ada", nil, nil, 40, 3).
		AddRow(1, "u2", "Bob", nil, nil, 40, 4).
		AddRow(2, "u3", "Cy", nil, nil, 10, 1)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.total_points DESC, p.full_name ASC LIMIT 10 OFFSET 0")).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles WHERE role = 'student' AND is_registered = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	entries, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 3)
	assert.Equal(t, entries[0].Rank, entries[1].Rank)
	assert.Equal(t, 2, entries[2].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRankUnknownParticipant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery("WHERE ranked.user_id = ").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Rank(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
