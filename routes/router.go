package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/config"
	"github.com/cppla/standupbot/controllers"
	"github.com/cppla/standupbot/middleware"
	"github.com/cppla/standupbot/utils"
)

// Handlers bundles what SetupRouter mounts.
type Handlers struct {
	Authenticator middleware.Authenticator

	Slack       *controllers.SlackController
	Standups    *controllers.StandupController
	Users       *controllers.UserController
	Teams       *controllers.TeamController
	Submissions *controllers.SubmissionController
	Stats       *controllers.StatsController
	Auth        *controllers.AuthController
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, h Handlers, log *zap.Logger) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file when GinPath is set.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		log.Warn("gin logger unavailable, using app logger", zap.Error(err))
		gl = log
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, true))

	// Slack endpoints: signature first, the body is restored for the handlers.
	slackGroup := r.Group("/slack")
	signed := slackGroup.Group("", middleware.SlackSignature(cfg.SlackSigningSecret, log))
	signed.POST("/standup-trigger/", h.Slack.Trigger)
	signed.POST("/submit_standup/", h.Slack.Submit)

	admin := middleware.AdminAuth(h.Authenticator, log)
	limit := middleware.RateLimit(cfg.RateLimitPerMinute)

	// Publishing is driven by an external scheduler with an admin credential.
	slackGroup.GET("/publish_standup/:team_name/", limit, admin, h.Standups.Publish)

	api := r.Group("/api")
	api.Use(cors.New(corsConfig(cfg.AllowedOrigins)), limit)

	authGroup := api.Group("/auth")
	authGroup.POST("/token", h.Auth.Token)
	authGroup.POST("/logout", admin, h.Auth.Logout)

	protected := api.Group("", admin)
	protected.GET("/health/", h.Stats.Health)
	protected.GET("/stats/", h.Stats.GetStats)
	protected.GET("/notify_users/:team_name/", h.Standups.Notify)

	protected.POST("/add_user/", h.Users.Create)
	protected.PUT("/update_user/:id/", h.Users.Update)
	protected.GET("/get_user/:username/", h.Users.Get)
	protected.GET("/get_users/", h.Users.List)

	protected.POST("/add_team/", h.Teams.Create)
	protected.PUT("/update_team/:id/", h.Teams.Update)
	protected.GET("/get_team/:team_name/", h.Teams.Get)
	protected.GET("/get_teams/", h.Teams.List)
	protected.DELETE("/delete_team/:id/", h.Teams.Delete)

	protected.POST("/add_standup/", h.Standups.Create)
	protected.PUT("/update_standup/:id/", h.Standups.Update)
	protected.GET("/get_standup/:id/", h.Standups.Get)
	protected.GET("/get_standups/", h.Standups.List)
	protected.DELETE("/delete_standup/:id/", h.Standups.Delete)

	protected.GET("/get_submission/:user_id/", h.Submissions.ListForUser)
	protected.GET("/get_submissions/", h.Submissions.List)
	protected.DELETE("/delete_submissions/", h.Submissions.DeleteOld)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, utils.CodeNotFound, "route not found")
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		// gin-contrib/cors refuses credentials with a wildcard origin
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
