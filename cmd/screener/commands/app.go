package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/nse-screener/internal/external/nse"
	"github.com/wonny/nse-screener/internal/external/yahoo"
	"github.com/wonny/nse-screener/internal/providers"
	"github.com/wonny/nse-screener/internal/screenconfig"
	"github.com/wonny/nse-screener/internal/selection"
	"github.com/wonny/nse-screener/internal/universe"
	"github.com/wonny/nse-screener/pkg/config"
	"github.com/wonny/nse-screener/pkg/httputil"
	"github.com/wonny/nse-screener/pkg/logger"
	"github.com/wonny/nse-screener/pkg/redis"
	"github.com/wonny/nse-screener/pkg/retry"
	"github.com/wonny/nse-screener/pkg/throttle"
)

const cachePrefix = "nse-screener"

// app holds the process-wide dependencies of one command
type app struct {
	env    *config.Config
	screen screenconfig.Config
	logger *logger.Logger
	redis  *redis.Client
}

// newApp loads env and screen configuration, sets up logging and
// connects to Redis when enabled
func newApp(ctx context.Context) (*app, error) {
	env, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		env.LogLevel = "debug"
	}
	log := logger.New(env)

	screen := screenconfig.Default()
	if configFile != "" {
		screen, _, err = screenconfig.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	rdb, err := redis.New(ctx, env)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without shared cache and limiter")
		rdb = redis.Disabled()
	}

	return &app{env: env, screen: screen, logger: log, redis: rdb}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close Redis")
	}
}

// validate rejects an unusable screen config and logs advisory warnings
func (a *app) validate(cfg screenconfig.Config) error {
	if err := screenconfig.Validate(cfg); err != nil {
		var verr screenconfig.ValidationError
		if errors.As(err, &verr) && verr.Field == "universe.name" {
			return fmt.Errorf("%w: %s", universe.ErrUnknownIndex, cfg.Universe.Name)
		}
		return err
	}

	for _, w := range screenconfig.Check(cfg) {
		a.logger.WithField("code", w.Code).Warn(w.Message)
	}
	return nil
}

// nseClient builds the NSE client: archive downloads retry 4 times,
// shareholding calls 3 times, both behind the shared NSE limiter.
func (a *app) nseClient(cfg screenconfig.Config) *nse.Client {
	shared := throttle.NewShared(redis.NewRateLimiter(a.redis, cachePrefix), redis.NSERateLimit)

	archive := httputil.New(a.logger, cfg.Run.HTTPTimeout, a.env.NSE.UserAgent).
		WithRetry(retry.Default()).
		WithLimiter(shared)

	apiRetry := retry.Default()
	apiRetry.MaxAttempts = 3
	api := httputil.New(a.logger, cfg.Run.HTTPTimeout, a.env.NSE.UserAgent).
		WithRetry(apiRetry).
		WithLimiter(shared)

	return nse.NewClient(archive, api, a.logger, a.env.NSE)
}

// universeProvider resolves index constituents, cached in Redis when enabled
func (a *app) universeProvider(cfg screenconfig.Config) *universe.Provider {
	return universe.NewProvider(a.nseClient(cfg), redis.NewCache(a.redis, cachePrefix), a.logger)
}

// runner wires the data sources, pipeline and universe for one screen
func (a *app) runner(cfg screenconfig.Config, mode selection.Mode) *selection.Runner {
	cache := redis.NewCache(a.redis, cachePrefix)
	nseClient := a.nseClient(cfg)

	yahooLimiter := throttle.NewShared(redis.NewRateLimiter(a.redis, cachePrefix), redis.YahooRateLimit)
	yahooHTTP := httputil.New(a.logger, cfg.Run.HTTPTimeout, a.env.Yahoo.UserAgent).WithLimiter(yahooLimiter)
	yahooClient := yahoo.NewClient(yahooHTTP, a.logger, a.env.Yahoo.BaseURL).WithLimiter(yahooLimiter)

	sources := selection.Providers{
		Prices:       providers.NewPrices(yahooClient, a.logger),
		Fundamentals: providers.NewFundamentals(yahooClient, cache, a.env.CacheTTL, a.logger),
		Promoter:     providers.NewPromoter(nseClient, cache, a.env.CacheTTL, a.logger),
	}

	var pause throttle.Limiter
	if cfg.Run.Throttle {
		pause = throttle.NewPause(cfg.Run.Pause)
	}

	pipeline := selection.NewPipeline(cfg, sources, pause, a.logger)
	u := universe.NewProvider(nseClient, cache, a.logger)

	return selection.NewRunner(u, pipeline, cfg.Universe.Name, cfg.Universe.Limit, mode)
}
