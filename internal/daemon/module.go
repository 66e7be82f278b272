// Package daemon composes every component into the long-running process.
package daemon

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/suziewongzie/UniChat/internal/bus"
	"github.com/suziewongzie/UniChat/internal/config"
	"github.com/suziewongzie/UniChat/internal/connection"
	"github.com/suziewongzie/UniChat/internal/convo"
	"github.com/suziewongzie/UniChat/internal/creds"
	"github.com/suziewongzie/UniChat/internal/lock"
	"github.com/suziewongzie/UniChat/internal/logging"
	"github.com/suziewongzie/UniChat/internal/model"
	"github.com/suziewongzie/UniChat/internal/platform"
	"github.com/suziewongzie/UniChat/internal/platform/linkedin"
	"github.com/suziewongzie/UniChat/internal/platform/meta"
	"github.com/suziewongzie/UniChat/internal/platform/whatsapp"
	"github.com/suziewongzie/UniChat/internal/replygen"
	"github.com/suziewongzie/UniChat/internal/session"
	"github.com/suziewongzie/UniChat/internal/simulator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideCredsDB,
			provideCredsStore,
			provideGraphClient,
			provideAdapters,
			provideConnectionManager,
			provideConvoStore,
			provideGenerator,
			provideSimulator,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("config unreadable, using defaults", zap.Error(err))
		}
		return config.Default()
	}
	return cfg
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogDir(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(session.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideCredsDB(p Params, logger *zap.Logger) (*creds.DB, error) {
	dbPath := session.CredsDBPath(p.Profile)
	db, err := creds.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("credential store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideCredsStore(db *creds.DB, logger *zap.Logger) *creds.Store {
	// The graph session is installed afterwards; it reads tokens back out
	// of this store.
	return creds.NewStore(db, nil, logger)
}

func provideGraphClient(store *creds.Store, logger *zap.Logger) *meta.Client {
	client := meta.NewClient(store, "", logger)
	store.SetGraphSession(client)
	return client
}

func provideAdapters(store *creds.Store, client *meta.Client, logger *zap.Logger) []platform.Adapter {
	return []platform.Adapter{
		whatsapp.New(store, "", logger),
		meta.NewAdapter(client, model.Messenger),
		meta.NewAdapter(client, model.Instagram),
		linkedin.New(logger),
	}
}

func provideConnectionManager(store *creds.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *connection.Manager {
	delay := time.Duration(cfg.HandshakeDelayMs) * time.Millisecond
	return connection.NewManager(store, b, delay, logger)
}

func provideConvoStore(adapters []platform.Adapter, manager *connection.Manager, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *convo.Store {
	delay := time.Duration(cfg.DeliveredDelayMs) * time.Millisecond
	return convo.NewStore(adapters, manager, b, delay, logger)
}

func provideGenerator(cfg *config.Config, logger *zap.Logger) replygen.Generator {
	tones := replygen.Tones(cfg.Personas)
	gen, err := replygen.NewHTTP(cfg.ReplyAPI, tones, logger)
	if err != nil {
		logger.Info("reply api unavailable, using canned replies", zap.Error(err))
		return replygen.Canned{}
	}
	return gen
}

func provideSimulator(store *convo.Store, gen replygen.Generator, cfg *config.Config, logger *zap.Logger) *simulator.Simulator {
	minDelay := time.Duration(cfg.ReplyDelayMinMs) * time.Millisecond
	maxDelay := time.Duration(cfg.ReplyDelayMaxMs) * time.Millisecond
	return simulator.New(store, gen, minDelay, maxDelay, logger)
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, db *creds.DB, credsStore *creds.Store, manager *connection.Manager, store *convo.Store, sim *simulator.Simulator, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			store.SetSendHook(sim.Schedule)

			// Configured platforms connect on boot; the rest wait for an
			// explicit toggle.
			for _, p := range model.Platforms {
				if !credsStore.IsConfigured(p) {
					logger.Info("platform needs setup", zap.String("platform", string(p)))
					continue
				}
				if _, err := manager.Toggle(p); err != nil {
					logger.Warn("auto-connect failed",
						zap.String("platform", string(p)),
						zap.Error(err))
				}
			}
			logger.Info("daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sim.Stop()
			manager.Close()
			if err := db.Close(); err != nil {
				logger.Warn("error closing credential store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
