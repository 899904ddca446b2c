package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/UdayGopi/Dental-Clinic/config"
	httpx "github.com/UdayGopi/Dental-Clinic/internal/http"
)

// DefaultShutdownTimeout bounds graceful HTTP shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// HTTPHandlerConfig contains configuration for BuildHTTPHandler.
type HTTPHandlerConfig struct {
	Config     *config.AppConfig
	Components *SessionComponents
	Logger     *slog.Logger
}

// BuildHTTPHandler assembles the portal router from config and session components.
func BuildHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	if cfg.Config == nil || cfg.Components == nil {
		return nil, errors.New("config and session components are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	var target *url.URL
	if appCfg.API.Enabled {
		u, err := url.Parse(appCfg.API.BackendURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid API_BACKEND_URL %q", appCfg.API.BackendURL)
		}
		target = u
		logger.Info("api proxy enabled", "target", u.Redacted())
	}

	services := httpx.RouterServices{
		Managers:       cfg.Components.Managers,
		APIProxyTarget: target,
		CookieName:     appCfg.HTTP.ProfileCookie,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		AdminCode:      appCfg.Auth.RegisterAdminCode,
		AuthRateLimit:  appCfg.HTTP.AuthRateLimit,
		Health:         cfg.Components.Health,
		IsDev:          appCfg.IsDev,
		Logger:         logger,
	}
	return httpx.NewRouter(services)
}

// NewHTTPServer returns a server with the portal's timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeConfig contains parameters for Serve.
type ServeConfig struct {
	Server *http.Server
	// Optional: pre-bound listener. When nil, Server.Addr is used.
	Listener        net.Listener
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Serve runs the server until ctx is done, then shuts it down gracefully.
// It returns the listener error if the server fails first.
func Serve(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cfg.Listener != nil {
			logger.Info("starting HTTP server", "addr", cfg.Listener.Addr().String())
			err = cfg.Server.Serve(cfg.Listener)
		} else {
			logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
			err = cfg.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}
