package repository

import (
	"context"
	"fmt"
	"net/http"
	"stockgenius/config"
	"stockgenius/internal/dto"
	"stockgenius/pkg/httpclient"
	"stockgenius/pkg/logger"
)

type FinnhubRepository interface {
	Enabled() bool
	GetCompanyProfile(ctx context.Context, symbol string) (*dto.FinnhubCompanyProfile, error)
}

type finnhubRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
}

func NewFinnhubRepository(cfg *config.Config, log *logger.Logger) FinnhubRepository {
	return &finnhubRepository{
		httpClient: httpclient.New(log, cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout, ""),
		cfg:        cfg,
		logger:     log,
	}
}

// Enabled reports whether an API key is configured. Without one every call would be rejected.
func (r *finnhubRepository) Enabled() bool {
	return r.cfg.Finnhub.APIKey != ""
}

func (r *finnhubRepository) GetCompanyProfile(ctx context.Context, symbol string) (*dto.FinnhubCompanyProfile, error) {
	var profile dto.FinnhubCompanyProfile
	resp, err := r.httpClient.Get(ctx, "/stock/profile2", map[string]string{
		"symbol": symbol,
		"token":  r.cfg.Finnhub.APIKey,
	}, nil, &profile)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company profile from finnhub: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Finnhub returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("symbol", symbol),
		)
		return nil, fmt.Errorf("finnhub api returned status: %d", resp.StatusCode)
	}

	return &profile, nil
}
