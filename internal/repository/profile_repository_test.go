package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

var profileRowColumns = []string{"id", "email", "password_hash", "full_name", "role", "total_points", "is_registered", "avatar_url", "university", "linkedin_url", "facebook_url", "instagram_url", "last_login", "created_at", "updated_at"}

func TestProfileFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("1", "ada@example.com", "hash", "Ada", string(models.RoleStudent), 30, true, nil, nil, nil, nil, nil, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("ada@example.com").
		WillReturnRows(rows)

	profile, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 30, profile.TotalPoints)
	assert.True(t, profile.IsRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("FROM profiles WHERE id = ").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProfileCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO profiles").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Profile{Email: "ada@example.com", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestProfileListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	role := models.RoleStudent
	registered := true
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE 1=1 AND role = $1 AND is_registered = $2 ORDER BY total_points DESC LIMIT 20 OFFSET 0")).
		WithArgs(role, registered).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("1", "a@example.com", "hash", "A", "student", 10, true, nil, nil, nil, nil, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles WHERE 1=1 AND role = $1 AND is_registered = $2")).
		WithArgs(role, registered).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	profiles, total, err := repo.List(context.Background(), models.ProfileFilter{Role: &role, IsRegistered: &registered, SortBy: "total_points"})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateRoleMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("UPDATE profiles SET role").WithArgs("u1", models.RoleAmbassador, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), "u1", models.RoleAmbassador)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestProfileCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{UserID: "u1", Token: "token", ExpiresAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
