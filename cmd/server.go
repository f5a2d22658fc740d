package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"stockgenius/internal/delivery/http"
	"stockgenius/internal/repository"
	"stockgenius/internal/service"
	"stockgenius/pkg/middleware"
	"stockgenius/pkg/ratelimit"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the StockGenius API server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	if appDep.cfg.Auth.JWTSecret == "" {
		log.Fatalf("auth.jwt_secret must be set")
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.cache)

	auth := middleware.NewAuthMiddleware(appDep.cfg.Auth.JWTSecret, func(ctx context.Context, id uint) (bool, error) {
		user, err := repo.UserRepo.FindByID(ctx, id)
		return user != nil, err
	})
	httpHandler := http.NewHttpAPIHandler(appDep.echo, appDep.validator, services, auth, newSuggestionLimiter(appDep.cfg.Gemini.MaxSuggestionPerMinute))

	if err := services.StockRefreshService.Start(); err != nil {
		log.Fatalf("Failed to start stock refresh schedule: %v", err)
	}

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	appDep.log.Info("Shutting down gracefully...")

	if err := apiServer.Stop(); err != nil {
		appDep.log.Error("Failed to stop HTTP server", zap.Error(err))
	}

	refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	select {
	case <-services.StockRefreshService.Stop().Done():
	case <-refreshCtx.Done():
		appDep.log.Warn("Timeout while waiting for stock refresh to finish")
	}

	if err := appDep.Close(refreshCtx); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// newSuggestionLimiter returns nil when the per-user limit is disabled.
func newSuggestionLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		return nil
	}
	store := ratelimit.NewLimiterStore(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return middleware.NewUserRateLimiterMiddleware(store)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh fundamentals of every stored stock once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = appDep.Close(context.Background())
		}()

		repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
		if err != nil {
			return err
		}

		refresher := service.NewStockRefreshService(appDep.cfg, appDep.log, repo.MarketDataRepo, repo.StockRepo)
		summary, err := refresher.RefreshAll(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Refreshed %d/%d stocks (skipped=%d failed=%d)\n", summary.Updated, summary.Total, summary.Skipped, summary.Failed)
		return nil
	},
}
