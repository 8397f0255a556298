package service

import (
	"fmt"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

// ValidateScore checks that score is within [0, MaxScore(day)] and that day
// belongs to the program.
func ValidateScore(day, score, totalDays int) error {
	if day < 1 || day > totalDays {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d is outside the program", day))
	}
	if limit := models.MaxScore(day); score < 0 || score > limit {
		return appErrors.Clone(appErrors.ErrInvalidScore, fmt.Sprintf("score must be between 0 and %d for day %d", limit, day))
	}
	return nil
}

// decideValidate computes the effect of validating current with score.
// The delta is relative to what the row already contributes to the ledger, so
// re-applying the same decision yields zero.
func decideValidate(current models.Submission, score, totalDays int, unlockNext bool) (models.ReviewOutcome, error) {
	if err := ValidateScore(current.DayNumber, score, totalDays); err != nil {
		return models.ReviewOutcome{}, err
	}
	outcome := models.ReviewOutcome{
		Status:       models.SubmissionValidated,
		ScoreAwarded: score,
		PointDelta:   score - current.Contribution(),
	}
	if unlockNext && current.Status != models.SubmissionValidated && current.DayNumber < totalDays {
		next := current.DayNumber + 1
		outcome.UnlockDay = &next
	}
	return outcome, nil
}

// decideReject computes the effect of rejecting current. The score is forced
// to zero and whatever the row contributed is withdrawn.
func decideReject(current models.Submission, comment *string) models.ReviewOutcome {
	return models.ReviewOutcome{
		Status:           models.SubmissionRejected,
		ScoreAwarded:     0,
		RejectionComment: comment,
		PointDelta:       -current.Contribution(),
	}
}

// missingParticipants returns registered ids that have no submission, in registered order.
func missingParticipants(registered, submitted []string) []string {
	seen := make(map[string]struct{}, len(submitted))
	for _, id := range submitted {
		seen[id] = struct{}{}
	}
	missing := make([]string, 0, len(registered))
	for _, id := range registered {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
