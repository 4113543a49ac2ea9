package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kojo/kojo/internal/domain/records"
)

// LoadWithRetry attempts to load through gw up to attempts times,
// sleeping interval between failures. Some desktop platforms expose the
// data directory slowly at login, so a couple of short retries cover
// startup; after that the session proceeds on an empty aggregate rather
// than refusing to start.
func LoadWithRetry(ctx context.Context, gw records.Gateway, attempts int, interval time.Duration, logger zerolog.Logger) *records.AppData {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				logger.Warn().Err(ctx.Err()).Msg("load cancelled; starting empty")
				return records.NewAppData()
			}
		}
		data, err := gw.Load(ctx)
		if err == nil {
			if data == nil {
				return records.NewAppData()
			}
			return data
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", i+1).Msg("load failed")
	}
	logger.Error().Err(lastErr).Int("attempts", attempts).Msg("giving up on load; starting empty")
	return records.NewAppData()
}
