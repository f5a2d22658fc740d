package service

import (
	"context"
	"fmt"
	"stockgenius/config"
	"stockgenius/internal/dto"
	"stockgenius/internal/model"
	"stockgenius/internal/repository"
	"stockgenius/pkg/logger"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// StockRefreshService keeps persisted fundamentals current by re-reading each stock's overview.
type StockRefreshService interface {
	// Start schedules RefreshAll on scheduler.refresh_cron. It is a no-op when no schedule is configured.
	Start() error
	// Stop halts the schedule and returns a context that is done once a running refresh finishes.
	Stop() context.Context
	RefreshAll(ctx context.Context) (dto.RefreshSummary, error)
}

type stockRefreshService struct {
	cfg        *config.Config
	log        *logger.Logger
	marketRepo repository.MarketDataRepository
	stockRepo  repository.StockRepository
	cron       *cron.Cron
}

func NewStockRefreshService(
	cfg *config.Config,
	log *logger.Logger,
	marketRepo repository.MarketDataRepository,
	stockRepo repository.StockRepository,
) StockRefreshService {
	return &stockRefreshService{
		cfg:        cfg,
		log:        log,
		marketRepo: marketRepo,
		stockRepo:  stockRepo,
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
		),
	}
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

func (s *stockRefreshService) Start() error {
	spec := strings.TrimSpace(s.cfg.Scheduler.RefreshCron)
	if spec == "" {
		s.log.Info("Stock refresh schedule disabled")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		summary, err := s.RefreshAll(ctx)
		if err != nil {
			s.log.ErrorContext(ctx, "Scheduled stock refresh failed", logger.ErrorField(err))
			return
		}
		s.log.InfoContext(ctx, "Scheduled stock refresh completed",
			logger.IntField("total", summary.Total),
			logger.IntField("updated", summary.Updated),
			logger.IntField("skipped", summary.Skipped),
			logger.IntField("failed", summary.Failed),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to parse refresh cron %q: %w", spec, err)
	}

	s.cron.Start()
	s.log.Info("Stock refresh schedule started", logger.StringField("cron", spec))
	return nil
}

func (s *stockRefreshService) Stop() context.Context {
	return s.cron.Stop()
}

// RefreshAll updates every persisted stock. A failure for one symbol is logged and counted,
// it does not stop the others.
func (s *stockRefreshService) RefreshAll(ctx context.Context) (dto.RefreshSummary, error) {
	if s.cfg.Scheduler.TimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Scheduler.TimeoutDuration)
		defer cancel()
	}

	stocks, err := s.stockRepo.FindAll(ctx)
	if err != nil {
		return dto.RefreshSummary{}, fmt.Errorf("failed to load stocks: %w", err)
	}

	maxConcurrency := s.cfg.Scheduler.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	s.log.InfoContext(ctx, "Start refreshing stocks",
		logger.IntField("stock_count", len(stocks)),
		logger.IntField("max_concurrency", maxConcurrency),
	)

	var updated, skipped, failed atomic.Int64
	start := time.Now()

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrency)
	for _, stock := range stocks {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "Stock refresh cancelled", logger.ErrorField(ctx.Err()))
			break
		}

		g.Go(func() error {
			ok, err := s.refreshOne(ctx, stock)
			switch {
			case err != nil:
				failed.Add(1)
				s.log.WarnContext(ctx, "Failed to refresh stock", logger.StringField("symbol", stock.Symbol), logger.ErrorField(err))
			case ok:
				updated.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.InfoContext(ctx, "Stock refresh finished", logger.DurationField("elapsed", time.Since(start)))

	return dto.RefreshSummary{
		Total:   len(stocks),
		Updated: int(updated.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}, nil
}

func (s *stockRefreshService) refreshOne(ctx context.Context, stock model.Stock) (bool, error) {
	overview, err := s.marketRepo.GetOverview(ctx, stock.Symbol)
	if err != nil {
		return false, err
	}
	if overview == nil || strings.TrimSpace(overview.Name) == "" {
		return false, nil
	}

	update := dto.FundamentalsUpdateFromOverview(*overview)
	if err := s.stockRepo.UpdateFundamentals(ctx, stock.ID, update); err != nil {
		return false, fmt.Errorf("failed to update fundamentals: %w", err)
	}
	return true, nil
}
