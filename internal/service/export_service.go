package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/export"
)

type leaderboardSource interface {
	All(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type documentRenderer interface {
	Render(f export.Format, data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders leaderboard exports.
type ExportService struct {
	leaderboard leaderboardSource
	renderer    documentRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(leaderboard leaderboardSource, renderer documentRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	return &ExportService{leaderboard: leaderboard, renderer: renderer, logger: logger, now: time.Now}
}

// Leaderboard renders the full leaderboard in the requested format.
func (s *ExportService) Leaderboard(ctx context.Context, actor *models.JWTClaims, rawFormat string) (*ExportFile, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	entries, err := s.leaderboard.All(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Render(format, leaderboardDataset(entries), "Marathon Challenge Leaderboard")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	stamp := s.now().UTC().Format("20060102-150405")
	s.logger.Info("leaderboard exported", zap.String("format", string(format)), zap.Int("rows", len(entries)), zap.String("actor_id", actor.UserID))
	return &ExportFile{
		Filename:    fmt.Sprintf("leaderboard-%s.%s", stamp, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func leaderboardDataset(entries []models.LeaderboardEntry) export.Dataset {
	dataset := export.Dataset{Columns: []export.Column{
		{Key: "rank", Numeric: true, Width: 0.6},
		{Key: "full_name", Width: 2.5},
		{Key: "university", Width: 2.5},
		{Key: "total_points", Numeric: true},
		{Key: "validated_days", Numeric: true},
	}}
	for _, entry := range entries {
		university := ""
		if entry.University != nil {
			university = *entry.University
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"rank":           strconv.Itoa(entry.Rank),
			"full_name":      entry.FullName,
			"university":     university,
			"total_points":   strconv.Itoa(entry.TotalPoints),
			"validated_days": strconv.Itoa(entry.ValidatedCount),
		})
	}
	return dataset
}
