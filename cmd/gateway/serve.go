package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	ratelimit "github.com/ratelimitgw/gateway"
	logadapter "github.com/ratelimitgw/gateway/adapters/log"
	logrusadapter "github.com/ratelimitgw/gateway/adapters/logrus"
	zapadapter "github.com/ratelimitgw/gateway/adapters/zap"
	zerologadapter "github.com/ratelimitgw/gateway/adapters/zerolog"
	"github.com/ratelimitgw/gateway/internal/config"
	"github.com/ratelimitgw/gateway/internal/proxy"
	"github.com/ratelimitgw/gateway/store"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		logAdapter string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reverse proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, logAdapter)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")
	cmd.Flags().StringVar(&logAdapter, "log-adapter", "zap", "logger backend: log, logrus, zap, or zerolog")
	return cmd
}

func runServe(ctx context.Context, configPath, logAdapterName string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := buildLogger(logAdapterName)
	if err != nil {
		return err
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: settings.RateLimiter.RedisAddr})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("gateway: connect to redis at %s: %w", settings.RateLimiter.RedisAddr, err)
	}
	defer redisClient.Close()
	counterStore := store.NewRedis(redisClient)

	target, err := url.Parse(settings.APIGateway.TargetURL)
	if err != nil {
		return fmt.Errorf("gateway: invalid target_url %q: %w", settings.APIGateway.TargetURL, err)
	}
	forwarder := proxy.New(target)

	handler := &reloadableHandler{}
	manager, err := buildManager(settings, counterStore, logger)
	if err != nil {
		return err
	}
	handler.swap(ratelimit.NewMiddleware(manager, forwarder, ratelimit.WithLogger(logger)))

	watchErrs := func(err error) { logger.Errorf("gateway: config reload: %v", err) }
	reloads, err := config.Watch(ctx, configPath, watchErrs)
	if err != nil {
		logger.Errorf("gateway: config hot-reload disabled: %v", err)
	} else {
		go func() {
			for updated := range reloads {
				m, err := buildManager(updated, counterStore, logger)
				if err != nil {
					logger.Errorf("gateway: reload rejected, keeping previous manager: %v", err)
					continue
				}
				handler.swap(ratelimit.NewMiddleware(m, forwarder, ratelimit.WithLogger(logger)))
				logger.Debugf("gateway: reloaded configuration from %s", configPath)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/", handler)

	server := &http.Server{
		Addr:    settings.APIGateway.ProxyServerAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Debugf("gateway: listening on %s, forwarding to %s", settings.APIGateway.ProxyServerAddr, target)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// reloadableHandler lets runServe hot-swap the Middleware a new config.Watch
// delivery built, without tearing down the listener.
type reloadableHandler struct {
	current atomic.Pointer[ratelimit.Middleware]
}

func (h *reloadableHandler) swap(mw *ratelimit.Middleware) {
	h.current.Store(mw)
}

func (h *reloadableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.current.Load().ServeHTTP(w, r)
}

// buildManager turns a validated Settings document into a Manager: one
// RateLimiter per configured limiter block, grouped by Strategy.Kind()
// exactly as Manager expects.
func buildManager(settings *config.Settings, counterStore ratelimit.CounterStore, logger ratelimit.Logger) (*ratelimit.Manager, error) {
	whitelist, invalid := settings.WhitelistIPs()
	for _, raw := range invalid {
		logger.Errorf("gateway: ignoring unparseable whitelist entry %q", raw)
	}

	limiters := make([]*ratelimit.RateLimiter, 0, len(settings.RateLimiter.Limiters))
	for i, ls := range settings.RateLimiter.Limiters {
		strategy, ok := ratelimit.StrategyForName(ls.Strategy)
		if !ok {
			return nil, fmt.Errorf("gateway: rate_limiter.limiter[%d]: unknown strategy %q", i, ls.Strategy)
		}

		var global *ratelimit.Bucket
		if ls.GlobalBucket != nil {
			b := ratelimit.NewBucket(ls.GlobalBucket.TokensCount, ls.GlobalBucket.AddTokensEvery)
			global = &b
		}

		perValue := make(map[string]ratelimit.Bucket, len(ls.BucketsPerValue))
		for _, bpv := range ls.BucketsPerValue {
			perValue[bpv.Value] = ratelimit.NewBucket(bpv.TokensCount, bpv.AddTokensEvery)
		}

		rl, err := ratelimit.NewRateLimiter(strategy, global, perValue, counterStore, ratelimit.WithLimiterLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("gateway: rate_limiter.limiter[%d]: %w", i, err)
		}
		limiters = append(limiters, rl)
	}

	return ratelimit.NewManager(whitelist, limiters), nil
}

func buildLogger(name string) (ratelimit.Logger, error) {
	switch name {
	case "log":
		return logadapter.New(nil), nil
	case "logrus":
		return logrusadapter.New(nil), nil
	case "zap":
		return zapadapter.New(nil), nil
	case "zerolog":
		return zerologadapter.New(nil), nil
	default:
		return nil, fmt.Errorf("gateway: unknown log adapter %q (want log, logrus, zap, or zerolog)", name)
	}
}
