// Package commands holds the jobxctl subcommands.
package commands

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobx/internal/config"
	"github.com/justsurfingit/jobx/internal/database"
	"github.com/justsurfingit/jobx/internal/logger"
)

// ConfigPath is set by the root command's --config flag.
var ConfigPath string

// env is what the database commands share.
type env struct {
	cfg *config.Config
	log *zap.SugaredLogger
	db  *gorm.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, err
	}
	// schema changes only happen through `jobxctl migrate`
	cfg.Database.AutoMigrate = false

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.JSON)
	if err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	_ = database.Close(e.db)
	_ = e.log.Sync()
}
