package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/UdayGopi/Dental-Clinic/config"
)

// Run connects infrastructure, builds the portal, and serves until SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if cfg == nil {
		return errors.New("config is required")
	}

	var redisClient redis.UniversalClient
	if cfg.Session.Store == config.SessionStoreRedis {
		redisClient, err = ConnectRedis(ctx, RedisConnectConfig{Redis: cfg.Redis, Logger: logger})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
			}
		}()
	}

	components, err := BuildSessionComponents(SessionDeps{
		Config:      cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	handler, err := BuildHTTPHandler(HTTPHandlerConfig{Config: cfg, Components: components, Logger: logger})
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Serve(sigCtx, ServeConfig{
		Server: NewHTTPServer(cfg.HTTP.Addr, handler),
		Logger: logger,
	})
}
