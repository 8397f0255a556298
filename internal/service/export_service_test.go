package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

func TestExportLeaderboardCSV(t *testing.T) {
	board := NewLeaderboardService(&fakeLeaderboardRepo{entries: sampleLeaderboard()}, nil, 0, nil)
	svc := NewExportService(board, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 16, 8, 30, 0, 0, time.UTC) }

	file, err := svc.Leaderboard(context.Background(), ambassador, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "leaderboard-20260316-083000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rank,full_name,university,total_points,validated_days", lines[0])
	assert.Equal(t, "1,Ayu,Universitas Indonesia,40,3", lines[1])
	assert.Equal(t, "2,Citra,,12,1", lines[3])
}

func TestExportLeaderboardPDF(t *testing.T) {
	board := NewLeaderboardService(&fakeLeaderboardRepo{entries: sampleLeaderboard()}, nil, 0, nil)
	svc := NewExportService(board, nil, nil)

	file, err := svc.Leaderboard(context.Background(), ambassador, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportLeaderboardRejectsBadRequests(t *testing.T) {
	board := NewLeaderboardService(&fakeLeaderboardRepo{}, nil, 0, nil)
	svc := NewExportService(board, nil, nil)

	_, err := svc.Leaderboard(context.Background(), ambassador, "xlsx")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Leaderboard(context.Background(), student, "csv")
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
