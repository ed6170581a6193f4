// Command sessiond serves the session identity endpoints: login, logout,
// registration and status, plus health and metrics.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sessionkit/modules/auth"
	"github.com/dmitrymomot/sessionkit/pkg/activesession"
	"github.com/dmitrymomot/sessionkit/pkg/clientip"
	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/cookie"
	"github.com/dmitrymomot/sessionkit/pkg/device"
	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/identity"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/ratelimiter"
	"github.com/dmitrymomot/sessionkit/pkg/redis"
	"github.com/dmitrymomot/sessionkit/pkg/requestid"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type appConfig struct {
	Log      logger.Config
	HTTP     httpserver.Config
	Redis    redis.Config
	Cookie   cookie.Config
	Session  session.Config
	Device   device.Config
	Store    activesession.Config
	Identity identity.Config
	ClientIP clientip.Config
	Login    ratelimiter.Config

	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// storeConfig ties the record lifetime to the session lifetime so the store
// never keeps or drops a record on a different clock than recovery.
func (c appConfig) storeConfig() activesession.Config {
	return c.Store.WithSessionTTL(c.Session.TTL)
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "sessiond:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.FromConfig(cfg.Log,
		logger.WithContextExtractors(requestid.LogExtractor, session.LogExtractor),
	)
	logger.SetAsDefault(log)

	dev := device.NewFromConfig(cfg.Device, device.WithLogger(log))
	log.Info("device identity ready", logger.DeviceID(dev.DeviceID()))

	var checks []httpserver.Check

	var rdb goredis.UniversalClient
	if cfg.Store.Driver == activesession.DriverRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}

	store, err := activesession.NewFromConfig(cfg.storeConfig(), rdb, activesession.WithLogger(log))
	if err != nil {
		return err
	}
	if hc, ok := store.(interface{ Healthcheck(context.Context) error }); ok {
		checks = append(checks, httpserver.Check{Name: "active_session_store", Fn: hc.Healthcheck})
	}

	cookieCfg := cfg.Cookie
	if len(cookieCfg.Secrets) == 0 {
		secret, err := ephemeralSecret()
		if err != nil {
			return err
		}
		cookieCfg.Secrets = []string{secret}
		log.Warn("COOKIE_SECRETS not set, using an ephemeral secret; sessions will not survive a restart")
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	ids := identity.NewFromConfig(cfg.Identity, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := session.NewMetrics(reg)
	if err != nil {
		return err
	}

	sessions, err := session.NewFromConfig(cfg.Session, cookies, store, dev,
		session.WithDirectory(ids),
		session.WithLogger(log),
		session.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	limiterStore := ratelimiter.NewMemoryStore()
	defer limiterStore.Close()
	limiter, err := ratelimiter.NewBucket(limiterStore, cfg.Login)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(cfg.ClientIP.TrustedHeaders...))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.LivenessHandler())
	r.Get("/readyz", httpserver.ReadinessHandler(log, cfg.HTTP.ReadyTimeout, checks...))
	r.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/auth", auth.New(sessions, ids,
		auth.WithLogger(log),
		auth.WithRedirect("/auth/status"),
		auth.WithLimiter(limiter),
	).Handle())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth/status", http.StatusFound)
	})

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(l *slog.Logger) { l.Info("http server stopped") }),
	)
	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func ephemeralSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
