package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/config"
	"github.com/cppla/standupbot/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for Slack and the admin API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	log, err := utils.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, deps, err := openStore(cfg, log)
	if err != nil {
		log.Error("database init failed", zap.Error(err))
		return err
	}
	defer closeDB(db, log)

	r, err := buildRouter(cfg, deps, log)
	if err != nil {
		return err
	}

	log.Info("starting server", zap.String("port", cfg.AppPort))
	if err := utils.GraceServer(cmd.Context(), ":"+cfg.AppPort, r, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	return nil
}
