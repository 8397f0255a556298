package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

const (
	ambassadorID   = "9a1f3e52-7c4b-4d8e-a6f0-2b3c4d5e6f70"
	studentID      = "5d3c8a2e-1b4f-4e6a-8c7d-9f0e1a2b3c4d"
	otherStudentID = "c2e4a6b8-0d1f-4a3c-8e5b-7d9f1a3c5e7b"
	submissionID   = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
	messageID      = "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
	missingID      = "00000000-0000-4000-8000-000000000000"
)

var (
	ambassadorClaims = &models.JWTClaims{UserID: ambassadorID, Role: models.RoleAmbassador}
	studentClaims    = &models.JWTClaims{UserID: studentID, Role: models.RoleStudent}
)

type fakeTokens map[string]*models.JWTClaims

func (f fakeTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type fakeAuthSrv struct{}

func (fakeAuthSrv) Login(context.Context, models.LoginRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "stu"}, nil
}

func (fakeAuthSrv) Register(_ context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "stu", User: models.UserInfo{Email: req.Email}}, nil
}

func (fakeAuthSrv) Me(_ context.Context, userID string) (*models.Profile, error) {
	return &models.Profile{ID: userID}, nil
}

func (fakeAuthSrv) RefreshToken(context.Context, models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	return &models.RefreshTokenResponse{}, nil
}

func (fakeAuthSrv) Logout(context.Context, string, string, models.LoginRequest) error { return nil }

func (fakeAuthSrv) ChangePassword(context.Context, string, models.ChangePasswordRequest) error {
	return nil
}

type fakeProfileSrv struct {
	lastUpload []byte
}

func (f *fakeProfileSrv) Get(_ context.Context, id string) (*models.Profile, error) {
	return &models.Profile{ID: id}, nil
}

func (f *fakeProfileSrv) List(context.Context, *models.JWTClaims, dto.ProfileQuery) ([]models.Profile, *models.Pagination, error) {
	return []models.Profile{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeProfileSrv) CompleteProfile(_ context.Context, userID string, req dto.CompleteProfileRequest) (*models.Profile, error) {
	return &models.Profile{ID: userID, FullName: req.FullName, IsRegistered: true}, nil
}

func (f *fakeProfileSrv) UploadAvatar(_ context.Context, userID string, upload service.Upload) (*models.Profile, error) {
	f.lastUpload, _ = io.ReadAll(upload.Body)
	url := "http://cdn.test/avatars/" + userID
	return &models.Profile{ID: userID, AvatarURL: &url}, nil
}

func (f *fakeProfileSrv) SetRole(_ context.Context, _ *models.JWTClaims, userID string, req dto.UpdateRoleRequest) (*models.Profile, error) {
	return &models.Profile{ID: userID, Role: models.UserRole(req.Role)}, nil
}

type fakeDaySrv struct{}

func (fakeDaySrv) List(context.Context) ([]models.ChallengeDay, error) {
	return []models.ChallengeDay{{DayNumber: 1, IsActive: true}}, nil
}

func (fakeDaySrv) Get(_ context.Context, day int) (*models.ChallengeDay, error) {
	if day > models.DefaultTotalDays {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "challenge day not found")
	}
	return &models.ChallengeDay{DayNumber: day}, nil
}

func (fakeDaySrv) Update(_ context.Context, _ *models.JWTClaims, day int, _ dto.UpdateChallengeDayRequest) (*models.ChallengeDay, error) {
	return &models.ChallengeDay{DayNumber: day}, nil
}

type fakeSubmissionSrv struct {
	created    bool
	err        error
	lastReq    dto.CreateSubmissionRequest
	lastActor  *models.JWTClaims
	lastUpload []byte
	uploadName string
}

func (f *fakeSubmissionSrv) Create(_ context.Context, actor *models.JWTClaims, req dto.CreateSubmissionRequest) (*models.Submission, bool, error) {
	f.lastActor = actor
	f.lastReq = req
	if f.err != nil {
		return nil, false, f.err
	}
	return &models.Submission{ID: submissionID, UserID: actor.UserID, DayNumber: req.DayNumber, Status: models.SubmissionPending}, f.created, nil
}

func (f *fakeSubmissionSrv) Delete(_ context.Context, actor *models.JWTClaims, _ string) error {
	f.lastActor = actor
	return f.err
}

func (f *fakeSubmissionSrv) Get(_ context.Context, _ *models.JWTClaims, id string) (*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Submission{ID: id}, nil
}

func (f *fakeSubmissionSrv) ListMine(_ context.Context, userID string) ([]models.Submission, error) {
	return []models.Submission{{ID: submissionID, UserID: userID}}, nil
}

func (f *fakeSubmissionSrv) Progress(_ context.Context, userID string) (*dto.ProgressResponse, error) {
	return &dto.ProgressResponse{UserID: userID, Days: []models.DayProgress{}}, nil
}

func (f *fakeSubmissionSrv) UploadProof(_ context.Context, userID string, upload service.Upload) (*dto.ProofUploadResponse, error) {
	f.uploadName = upload.Filename
	f.lastUpload, _ = io.ReadAll(upload.Body)
	return &dto.ProofUploadResponse{URL: "http://cdn.test/proofs/" + userID + "/x.png", Size: upload.Size, ContentType: "image/png"}, nil
}

type fakeReviewSrv struct {
	lastScore   *int
	lastComment *string
	err         error
}

func (f *fakeReviewSrv) Validate(_ context.Context, _ *models.JWTClaims, id string, req dto.ValidateSubmissionRequest) (*models.ReviewResult, error) {
	f.lastScore = req.Score
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReviewResult{Submission: models.Submission{ID: id, Status: models.SubmissionValidated, ScoreAwarded: req.Score}, PointDelta: *req.Score}, nil
}

func (f *fakeReviewSrv) Reject(_ context.Context, _ *models.JWTClaims, id string, req dto.RejectSubmissionRequest) (*models.ReviewResult, error) {
	f.lastComment = req.Comment
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReviewResult{Submission: models.Submission{ID: id, Status: models.SubmissionRejected}}, nil
}

func (f *fakeReviewSrv) List(context.Context, *models.JWTClaims, dto.SubmissionQuery) ([]models.SubmissionDetail, *models.Pagination, error) {
	return []models.SubmissionDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

type fakeDeadlineRunner struct {
	report *dto.DeadlineRunReport
	err    error
	runs   int
}

func (f *fakeDeadlineRunner) Run(context.Context) (*dto.DeadlineRunReport, error) {
	f.runs++
	return f.report, f.err
}

type fakeLeaderboardSrv struct {
	hit bool
}

func (f *fakeLeaderboardSrv) List(_ context.Context, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, bool, error) {
	return []models.LeaderboardEntry{{Rank: 1, UserID: studentID, TotalPoints: 30}}, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: 1}, f.hit, nil
}

func (f *fakeLeaderboardSrv) Rank(_ context.Context, userID string) (*models.ParticipantRank, error) {
	return &models.ParticipantRank{UserID: userID, Rank: 1, TotalParticipants: 1}, nil
}

type fakeExporter struct {
	format string
}

func (f *fakeExporter) Leaderboard(_ context.Context, actor *models.JWTClaims, raw string) (*service.ExportFile, error) {
	f.format = raw
	if actor == nil || actor.Role != models.RoleAmbassador {
		return nil, appErrors.ErrForbidden
	}
	return &service.ExportFile{Filename: "leaderboard.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("rank,name\n1,Ayu\n")}, nil
}

type fakeMessageSrv struct{}

func (fakeMessageSrv) Send(_ context.Context, actor *models.JWTClaims, req dto.SendMessageRequest) (*models.Message, error) {
	return &models.Message{ID: messageID, SenderID: actor.UserID, RecipientID: req.RecipientID}, nil
}

func (fakeMessageSrv) Broadcast(_ context.Context, actor *models.JWTClaims, req dto.BroadcastRequest) (*models.Broadcast, error) {
	return &models.Broadcast{ID: "b1", SenderID: actor.UserID, Subject: req.Subject}, nil
}

func (fakeMessageSrv) Inbox(context.Context, string, int) ([]models.InboxItem, error) {
	return []models.InboxItem{}, nil
}

func (fakeMessageSrv) MarkRead(_ context.Context, _ string, id string) error {
	if id == missingID {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

func (fakeMessageSrv) MarkBroadcastRead(context.Context, string, string) error { return nil }

func (fakeMessageSrv) UnreadCount(context.Context, string) (*models.UnreadCount, error) {
	return &models.UnreadCount{Messages: 2, Total: 2}, nil
}

type fakeAnnouncementSrv struct {
	lastViewer *models.JWTClaims
}

func (f *fakeAnnouncementSrv) List(_ context.Context, viewer *models.JWTClaims, page, size int) ([]models.Announcement, *models.Pagination, error) {
	f.lastViewer = viewer
	return []models.Announcement{}, &models.Pagination{Page: page, PageSize: size}, nil
}

func (f *fakeAnnouncementSrv) Get(_ context.Context, id string) (*models.Announcement, error) {
	return &models.Announcement{ID: id}, nil
}

func (f *fakeAnnouncementSrv) Create(_ context.Context, _ *models.JWTClaims, req service.AnnouncementRequest) (*models.Announcement, error) {
	return &models.Announcement{ID: "a1", Title: req.Title}, nil
}

func (f *fakeAnnouncementSrv) Update(_ context.Context, _ *models.JWTClaims, id string, req service.AnnouncementRequest) (*models.Announcement, error) {
	return &models.Announcement{ID: id, Title: req.Title}, nil
}

func (f *fakeAnnouncementSrv) Delete(context.Context, *models.JWTClaims, string) error { return nil }

type fakeDashboardSrv struct {
	resp *dto.ReviewerDashboard
	hit  bool
	err  error
}

func (f *fakeDashboardSrv) Reviewer(_ context.Context, actor *models.JWTClaims) (*dto.ReviewerDashboard, bool, error) {
	if actor == nil || actor.Role != models.RoleAmbassador {
		return nil, false, appErrors.ErrForbidden
	}
	return f.resp, f.hit, f.err
}

type fakeHub struct {
	userID string
}

func (f *fakeHub) Serve(w http.ResponseWriter, _ *http.Request, userID string) error {
	f.userID = userID
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}
