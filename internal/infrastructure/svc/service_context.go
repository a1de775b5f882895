package svc

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"binflip/internal/application/port"
	"binflip/internal/application/service"
	"binflip/internal/application/usecase/flipper"
	domainservice "binflip/internal/domain/service"
	"binflip/internal/infrastructure/auctions"
	"binflip/internal/infrastructure/clipboard"
	"binflip/internal/infrastructure/config"
	"binflip/internal/infrastructure/notify/discord"
	"binflip/internal/infrastructure/notify/wsfeed"
	compositerepo "binflip/internal/infrastructure/storage/composite"
	postgresrepo "binflip/internal/infrastructure/storage/postgres"
	redisrepo "binflip/internal/infrastructure/storage/redis"
	sqliterepo "binflip/internal/infrastructure/storage/sqlite"
	"binflip/internal/interfaces/console"
)

// ServiceContext wires infrastructure to the flipper use case and owns
// resource teardown. All dependency initialization happens here, in order.
type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	source    *auctions.Client
	repos     []port.Repository
	notifiers []port.Notifier

	closerChain []func() error
}

func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		closerChain: make([]func() error, 0),
	}

	sc.source = auctions.NewClient(
		cfg.Source.BaseURL,
		time.Duration(cfg.Source.TimeoutSec)*time.Second,
		cfg.Source.FetchRetries,
	)

	if err := sc.initializeStorage(); err != nil {
		_ = sc.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageInitFailed, err)
	}
	sc.initializeNotifiers()
	return sc, nil
}

func (sc *ServiceContext) initializeStorage() error {
	if sc.Config.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}
	if sc.Config.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if sc.Config.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.SQLite.Path)
	if err != nil {
		return err
	}
	sc.repos = append(sc.repos, repo)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})
	log.Info().Str("path", sc.Config.SQLite.Path).Msg("✓ SQLite journal initialized")
	return nil
}

func (sc *ServiceContext) initRedis() error {
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     sc.Config.Redis.Addr,
		Password: sc.Config.Redis.Password,
		DB:       sc.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("ping failed: %w", err)
	}

	repo := redisrepo.New(
		rdb,
		sc.Config.Redis.Prefix,
		time.Duration(sc.Config.Redis.TTLSeconds)*time.Second,
		sc.Config.Redis.FlipStream,
		sc.Config.Redis.FlipChannel,
	)
	sc.repos = append(sc.repos, repo)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return repo.Close()
	})
	log.Info().Str("addr", sc.Config.Redis.Addr).Int("db", sc.Config.Redis.DB).Msg("✓ Redis journal initialized")
	return nil
}

func (sc *ServiceContext) initPostgres() error {
	repo, err := postgresrepo.New(sc.Config.Postgres.DSN)
	if err != nil {
		return err
	}
	sc.repos = append(sc.repos, repo)
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})
	log.Info().Msg("✓ Postgres journal initialized")
	return nil
}

func (sc *ServiceContext) initializeNotifiers() {
	sc.notifiers = append(sc.notifiers, console.NewSink())

	if sc.Config.Alerts.WebhookURL != "" {
		sc.notifiers = append(sc.notifiers, discord.NewWebhook(
			sc.Config.Alerts.WebhookURL,
			sc.Config.Alerts.WebhookMentions,
		))
		log.Info().Int("mentions", len(sc.Config.Alerts.WebhookMentions)).Msg("✓ Discord alerts enabled")
	} else {
		log.Warn().Msg("webhook url not set, discord alerts disabled")
	}

	if sc.Config.WSFeed.Enabled {
		feed := wsfeed.NewBroadcaster(sc.Config.WSFeed.Addr)
		feed.Start()
		sc.notifiers = append(sc.notifiers, feed)
		sc.closerChain = append(sc.closerChain, func() error {
			log.Info().Msg("closing wsfeed server")
			return feed.Close()
		})
	}
}

// BuildFlipperDeps assembles the full dependency set for the poll loop.
func (sc *ServiceContext) BuildFlipperDeps() flipper.ServiceDeps {
	cfg := sc.Config

	norm := domainservice.NewNormalizer()
	ingestor := service.NewIngestor(sc.source, norm, service.IngestFilters{
		Categories: cfg.CategorySet(),
		Exceptions: cfg.ExceptionSet(),
	}, cfg.Source.FetchWorkers)

	detector := domainservice.NewDetector(domainservice.DetectorConfig{
		MinPrice:  cfg.Filters.MinPrice,
		MinMargin: cfg.Filters.MinFlip,
		MinSupply: cfg.Filters.MinSupply,
	})

	var repo port.Repository
	switch len(sc.repos) {
	case 0:
		// journaling fully disabled
	case 1:
		repo = sc.repos[0]
	default:
		repo = compositerepo.New(sc.repos...)
	}

	var clip port.Clipboard
	if cfg.Alerts.Clipboard {
		clip = clipboard.NewWriter()
	}

	return flipper.ServiceDeps{
		Source:          sc.source,
		Ingestor:        ingestor,
		Detector:        detector,
		Notifiers:       sc.notifiers,
		Repo:            repo,
		Clipboard:       clip,
		RefreshInterval: time.Duration(cfg.Source.RefreshIntervalSec) * time.Second,
		ProbeRetryWait:  time.Duration(cfg.Source.ProbeRetrySec) * time.Second,
	}
}

// Close releases every resource in reverse initialization order.
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	return nil
}
