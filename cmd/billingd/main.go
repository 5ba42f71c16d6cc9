package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/momentumhq/billingkit/modules/billing"
	"github.com/momentumhq/billingkit/pkg/config"
	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/httpserver"
	"github.com/momentumhq/billingkit/pkg/logger"
	"github.com/momentumhq/billingkit/pkg/pg"
	"github.com/momentumhq/billingkit/pkg/redis"
	"github.com/momentumhq/billingkit/pkg/subscription"
	"github.com/momentumhq/billingkit/pkg/sweep"
	"github.com/momentumhq/billingkit/pkg/tier"
	"github.com/momentumhq/billingkit/pkg/usage"
	"github.com/momentumhq/billingkit/pkg/webhook"
)

type appConfig struct {
	// TierConfigPath overrides the built-in tier catalog with a YAML file.
	TierConfigPath string `env:"TIER_CONFIG_PATH"`
}

func main() {
	log := logger.New(config.MustLoad[logger.Config]())
	logger.SetAsDefault(log)

	if err := run(context.Background(), log); err != nil {
		log.Error("billingd exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	appCfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	catalog := tier.DefaultCatalog()
	if appCfg.TierConfigPath != "" {
		catalog, err = tier.LoadCatalog(ctx, tier.FileSource(appCfg.TierConfigPath))
		if err != nil {
			return err
		}
	}

	pgCfg, err := config.Load[pg.Config]()
	if err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	redisCfg, err := config.Load[redis.Config]()
	if err != nil {
		return err
	}
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	store := subscription.NewPgStore(pool)
	manager := subscription.NewManager(store, store, catalog,
		subscription.WithLogger(log))

	gate := usage.NewGate(store, catalog, config.MustLoad[usage.Config](),
		usage.WithLogger(log))

	growCfg, err := config.Load[grow.Config]()
	if err != nil {
		return err
	}
	gateway, err := grow.NewClient(growCfg, catalog, grow.WithClientLogger(log))
	if err != nil {
		return err
	}

	processor := webhook.NewProcessor(manager,
		webhook.NewRedisDeduper(redisClient, log),
		growCfg.WebhookSecret,
		webhook.WithLogger(log))

	billingCfg, err := config.Load[billing.Config]()
	if err != nil {
		return err
	}
	svc := billing.NewService(manager, gateway, billingCfg, log)

	sweeper := sweep.New(config.MustLoad[sweep.Config](), manager, log)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()
	sweeper.Run()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/health", httpserver.HealthHandler(map[string]func(context.Context) error{
		"postgres": pg.Healthcheck(pool),
		"redis":    redis.Healthcheck(redisClient),
	}))
	r.Mount("/billing", billing.Router(billing.RouterOptions{
		Service:      svc,
		Gate:         gate,
		Webhook:      webhook.Handler(processor, log),
		Authenticate: userIDHeaderAuth,
		Logger:       log,
	}))

	srv := httpserver.New(config.MustLoad[httpserver.Config](), log)
	if err := srv.Run(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
