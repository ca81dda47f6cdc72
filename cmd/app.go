package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/standupbot/config"
	"github.com/cppla/standupbot/controllers"
	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/routes"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/slackbot"
	"github.com/cppla/standupbot/store"
	"github.com/cppla/standupbot/utils"
)

// openStore connects the database and returns the repositories built on it.
func openStore(cfg config.AppConfig, log *zap.Logger) (*gorm.DB, services.Deps, error) {
	db, err := config.InitDatabase(cfg, log, models.All()...)
	if err != nil {
		return nil, services.Deps{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, services.Deps{}, err
	}
	return db, services.Deps{
		Users:       store.NewUserStore(db),
		Teams:       store.NewTeamStore(db),
		Standups:    store.NewStandupStore(db),
		Submissions: store.NewSubmissionStore(db),
		Auth:        store.NewAuthStore(db),
		Clock:       services.NewClock(loc, nil),
		Log:         log,
	}, nil
}

// buildRouter wires services and controllers on top of deps.
func buildRouter(cfg config.AppConfig, deps services.Deps, log *zap.Logger) (*gin.Engine, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	rc := utils.NewRedis(cfg, log)
	deps.Cache = utils.NewCache(rc, log)
	deps.Slack = slackbot.NewClient(cfg.SlackAPIToken)

	authSvc := services.NewAuthService(deps, utils.NewTokenSigner(cfg.JWTSecret, cfg.SessionTTL()), utils.NewTokenBlacklist(rc))
	submissions := services.NewSubmissionService(deps, cfg.UpdatedMessage)
	query := services.NewQueryService(deps)
	publisher := services.NewPublishService(deps, services.PublishOptions{
		ChunkSize:       cfg.PublishChunkSize,
		PostStats:       cfg.PostPublishStats,
		NoSubmitMessage: cfg.NoSubmitMessage,
	})

	return routes.SetupRouter(cfg, routes.Handlers{
		Authenticator: authSvc,
		Slack:         controllers.NewSlackController(submissions, services.NewTriggerService(deps), cfg.NoUserErrorMessage, log),
		Standups: controllers.NewStandupController(publisher, services.NewNotifyService(deps, cfg.NotifyMessage),
			services.NewStandupService(deps), query, log),
		Users:       controllers.NewUserController(services.NewUserService(deps), log),
		Teams:       controllers.NewTeamController(services.NewTeamService(deps), log),
		Submissions: controllers.NewSubmissionController(query, submissions, log),
		Stats:       controllers.NewStatsController(services.NewStatsService(deps), log),
		Auth:        controllers.NewAuthController(authSvc, log),
	}, log), nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
