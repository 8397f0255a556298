package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/middleware"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth         *AuthHandler
	Profile      *ProfileHandler
	Days         *ChallengeDayHandler
	Submission   *SubmissionHandler
	Review       *ReviewHandler
	Deadline     *DeadlineHandler
	Leaderboard  *LeaderboardHandler
	Message      *MessageHandler
	Announcement *AnnouncementHandler
	Dashboard    *DashboardHandler
	Realtime     *RealtimeHandler
	Metrics      *MetricsHandler
}

// RouteOptions carries the cross-cutting pieces routes depend on.
type RouteOptions struct {
	APIPrefix  string
	Tokens     middleware.TokenValidator
	CronSecret string
	// WriteLimit throttles credential and submission writes. Nil disables it.
	WriteLimit gin.HandlerFunc
	Audit      middleware.AuditWriter
	Logger     *zap.Logger
}

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r *gin.Engine, h Handlers, opts RouteOptions) {
	limit := opts.WriteLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(opts.Audit, opts.Logger, action, resource)
	}
	requireAuth := middleware.JWT(opts.Tokens)
	ambassadors := middleware.Ambassadors()
	students := middleware.Students()

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	r.GET("/ws", middleware.JWTWithQuery(opts.Tokens), h.Realtime.Connect)

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/register", limit, h.Auth.Register)
	auth.POST("/login", limit, h.Auth.Login)
	auth.POST("/refresh", limit, h.Auth.Refresh)
	auth.POST("/logout", requireAuth, h.Auth.Logout)
	auth.POST("/change-password", requireAuth, limit, h.Auth.ChangePassword)
	auth.GET("/me", requireAuth, h.Auth.Me)

	api.GET("/days", h.Days.List)
	api.GET("/days/:day", h.Days.Get)
	api.PATCH("/days/:day", requireAuth, ambassadors, h.Days.Update)

	api.GET("/leaderboard", h.Leaderboard.List)
	api.GET("/leaderboard/me", requireAuth, h.Leaderboard.Me)
	api.GET("/leaderboard/export", requireAuth, ambassadors, audit(models.AuditActionExport, "leaderboard"), h.Leaderboard.Export)
	api.GET("/leaderboard/participants/:userId", h.Leaderboard.Rank)

	api.GET("/announcements", middleware.OptionalJWT(opts.Tokens), h.Announcement.List)
	api.GET("/announcements/:id", h.Announcement.Get)
	announcements := api.Group("/announcements", requireAuth, ambassadors)
	announcements.POST("", h.Announcement.Create)
	announcements.PUT("/:id", h.Announcement.Update)
	announcements.DELETE("/:id", h.Announcement.Delete)

	api.POST("/jobs/deadlines/run", middleware.CronOrAmbassador(opts.CronSecret, opts.Tokens), audit(models.AuditActionDeadlineRun, "challenge_day"), h.Deadline.Run)

	secured := api.Group("", requireAuth)

	profiles := secured.Group("/profiles")
	profiles.PUT("/me", h.Profile.Complete)
	profiles.POST("/me/avatar", limit, h.Profile.UploadAvatar)
	profiles.GET("", ambassadors, h.Profile.List)
	profiles.GET("/:id", middleware.RBAC(string(models.RoleAmbassador), middleware.SelfAccess), h.Profile.Get)
	profiles.PATCH("/:id/role", ambassadors, h.Profile.SetRole)

	submissions := secured.Group("/submissions")
	submissions.POST("", students, limit, h.Submission.Create)
	submissions.POST("/proofs", students, limit, h.Submission.UploadProof)
	submissions.GET("/me", h.Submission.ListMine)
	submissions.GET("/progress", h.Submission.Progress)
	submissions.GET("/:id", h.Submission.Get)
	submissions.DELETE("/:id", students, audit(models.AuditActionSubmissionDel, "submission"), h.Submission.Delete)

	reviews := secured.Group("/reviews/submissions", ambassadors)
	reviews.GET("", h.Review.Queue)
	reviews.POST("/:id/validate", h.Review.Validate)
	reviews.POST("/:id/reject", h.Review.Reject)

	secured.POST("/messages", ambassadors, h.Message.Send)
	secured.GET("/messages/inbox", h.Message.Inbox)
	secured.GET("/messages/unread-count", h.Message.UnreadCount)
	secured.POST("/messages/:id/read", h.Message.MarkRead)
	secured.POST("/broadcasts", ambassadors, h.Message.Broadcast)
	secured.POST("/broadcasts/:id/read", h.Message.MarkBroadcastRead)

	secured.GET("/dashboard", ambassadors, h.Dashboard.Reviewer)
}
