package cmd

import (
	"context"
	"stockgenius/config"
	"stockgenius/pkg/cache"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/postgres"
	"stockgenius/pkg/tracing"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	tracing   *tracing.Provider
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	tp, err := tracing.Init(cfg.Tracing.Enabled, cfg.Tracing.ServiceName)
	if err != nil {
		log.Error("Failed to initialise tracing", zap.Error(err))
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		tracing:   tp,
	}, nil
}

func (d *AppDependency) Close(ctx context.Context) error {
	d.log.Info("Closing app dependency")
	if err := d.tracing.Shutdown(ctx); err != nil {
		d.log.Warn("Failed to flush traces", zap.Error(err))
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			return err
		}
	}
	_ = d.log.Sync()
	return nil
}
