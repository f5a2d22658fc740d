package service

import (
	"errors"
	"strings"
)

var (
	// ErrNoData means neither live market data nor a persisted record exists for the symbol.
	ErrNoData = errors.New("no data available")
	// ErrSymbolNotFound means the provider does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidInterval is returned for candle intervals outside dto.SupportedCandleIntervals.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrGenerationFailed wraps a non-retryable model failure.
	ErrGenerationFailed = errors.New("ai generation failed")
	// ErrUserNotFound is returned when an authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// OverloadClassifier decides whether a model error is transient capacity exhaustion.
type OverloadClassifier func(err error) bool

// IsOverloadError matches the upstream overload signals by message text ("503" or "overloaded").
// The model API surfaces these in the error string; there is no structured code to rely on here.
func IsOverloadError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") || strings.Contains(msg, "overloaded")
}
