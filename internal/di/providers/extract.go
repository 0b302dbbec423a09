package providers

import (
	"github.com/samber/do/v2"

	"github.com/simmerapp/simmer-server/internal/config"
	"github.com/simmerapp/simmer-server/internal/extract"
	"github.com/simmerapp/simmer-server/internal/logger"
	"github.com/simmerapp/simmer-server/internal/ratelimit"
)

// ProvideExtractor provides the Gemini extraction client.
// The client is created even without an API key; extraction endpoints
// return 503 until one is configured.
func ProvideExtractor(i do.Injector) (*extract.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := extract.NewClient(cfg.Extract.GeminiAPIKey, cfg.Extract.GeminiModel, log.Logger)
	if client.Configured() {
		log.Info("Recipe extraction enabled", "model", cfg.Extract.GeminiModel)
	} else {
		log.Warn("GEMINI_API_KEY not set, recipe extraction disabled")
	}

	return client, nil
}

// ExtractLimiterHandle wraps the extraction rate limiter with shutdown capability.
type ExtractLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *ExtractLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideExtractLimiter provides the per-user extraction rate limiter.
func ProvideExtractLimiter(i do.Injector) (*ExtractLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	rps := float64(cfg.Extract.RatePerMinute) / 60.0
	limiter := ratelimit.New(rps, cfg.Extract.RatePerMinute)

	return &ExtractLimiterHandle{KeyedRateLimiter: limiter}, nil
}
