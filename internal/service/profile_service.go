package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/storage"
)

type profileRepository interface {
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	CompleteProfile(ctx context.Context, profile *models.Profile) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProfileService handles onboarding and profile management.
type ProfileService struct {
	repo        profileRepository
	store       storage.ObjectStore
	upload      UploadPolicy
	leaderboard leaderboardInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProfileService creates an instance of ProfileService.
func NewProfileService(repo profileRepository, store storage.ObjectStore, upload UploadPolicy, leaderboard leaderboardInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, store: store, upload: upload, leaderboard: leaderboard, validator: validate, logger: logger}
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// List returns paginated profiles and pagination metadata.
func (s *ProfileService) List(ctx context.Context, actor *models.JWTClaims, query dto.ProfileQuery) ([]models.Profile, *models.Pagination, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, nil, err
	}
	filter := models.ProfileFilter{
		IsRegistered: query.IsRegistered,
		Search:       strings.TrimSpace(query.Search),
		Page:         query.Page,
		PageSize:     query.PageSize,
		SortBy:       query.SortBy,
		SortOrder:    query.SortOrder,
	}
	if query.Role != "" {
		role := models.UserRole(strings.ToLower(query.Role))
		if !role.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
		}
		filter.Role = &role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	return profiles, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// CompleteProfile stores onboarding details and enrols the caller in the
// challenge. Only enrolled students take part in deadlines and the leaderboard.
func (s *ProfileService) CompleteProfile(ctx context.Context, userID string, req dto.CompleteProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	wasRegistered := profile.IsRegistered

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.University = trimmedOrNil(req.University)
	profile.LinkedInURL = trimmedOrNil(req.LinkedInURL)
	profile.FacebookURL = trimmedOrNil(req.FacebookURL)
	profile.InstagramURL = trimmedOrNil(req.InstagramURL)

	if err := s.repo.CompleteProfile(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	if !wasRegistered {
		s.logger.Info("participant registered", zap.String("user_id", userID))
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return profile, nil
}

// UploadAvatar stores a new avatar image and records its URL.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, upload Upload) (*models.Profile, error) {
	stored, err := storeImage(ctx, s.store, s.upload, "avatars", userID, upload)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAvatar(ctx, userID, stored.URL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save avatar")
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
	return s.Get(ctx, userID)
}

// SetRole changes a profile's role.
func (s *ProfileService) SetRole(ctx context.Context, actor *models.JWTClaims, userID string, req dto.UpdateRoleRequest) (*models.Profile, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}
	if userID == actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot change your own role")
	}
	existing, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	role := models.UserRole(req.Role)
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	oldValues, _ := json.Marshal(map[string]string{"role": string(existing.Role)})
	newValues, _ := json.Marshal(map[string]string{"role": string(role)})
	actorID := actor.UserID
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionRoleChange,
		Resource:   "profile",
		ResourceID: &userID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}); err != nil {
		s.logger.Warn("failed to record role change audit log", zap.String("user_id", userID), zap.Error(err))
	}
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	existing.Role = role
	return existing, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
