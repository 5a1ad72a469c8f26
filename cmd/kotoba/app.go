package main

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kaedesrs/kotoba/internal/catalog"
	"github.com/kaedesrs/kotoba/internal/config"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/mcqgen"
	"github.com/kaedesrs/kotoba/internal/scheduler"
	"github.com/kaedesrs/kotoba/internal/session"
	"github.com/kaedesrs/kotoba/internal/stats"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// App holds every dependency a subcommand needs, wired once in NewApp the
// way the teacher's App struct wired Storage/Scheduler/Sandbox/ReviewService.
// There is no sandbox here: the core is pure store+FSRS+generator.
type App struct {
	Config    *config.Config
	Store     *storage.DB
	Catalog   *catalog.Catalog
	Flash     *scheduler.FlashScheduler
	MCQ       *scheduler.MCQScheduler
	Stats     *stats.Stats
	FlashSvc  *session.FlashService
	Generator *mcqgen.Generator
	logger    *zap.SugaredLogger
}

// NewApp wires storage, the FSRS engine, both schedulers, the catalog, and
// the statistics reader from a loaded Config.
func NewApp(cfg *config.Config) (*App, error) {
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := cfg.GetDatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	db, err := storage.NewDB(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	engineCfg, err := cfg.FSRS.ToEngineConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build fsrs engine config: %w", err)
	}
	// fsrsengine.New and mcqgen.New both fall back to a fixed seed when given
	// a nil *rand.Rand, which is what tests want but would make every CLI
	// invocation fuzz FSRS intervals and shuffle distractors identically.
	engine := fsrsengine.New(engineCfg, rand.New(rand.NewSource(time.Now().UnixNano())))

	cat := catalog.New(db)
	flashSched := scheduler.NewFlashScheduler(db, engine)
	mcqSched := scheduler.NewMCQScheduler(db, engine)

	app := &App{
		Config:    cfg,
		Store:     db,
		Catalog:   cat,
		Flash:     flashSched,
		MCQ:       mcqSched,
		Stats:     stats.New(db),
		FlashSvc:  session.NewFlashService(flashSched),
		Generator: mcqgen.New(cat, rand.New(rand.NewSource(time.Now().UnixNano()))),
		logger:    logger,
	}
	return app, nil
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func buildLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.LogLevel); err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.LogJSON {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// ConfigLoader defines how configuration is loaded, mirroring the teacher's
// injectable-loader pattern so tests can substitute a pre-built Config.
type ConfigLoader interface {
	Load() (*config.Config, error)
}

// DefaultConfigLoader loads configuration via config.Load().
type DefaultConfigLoader struct{}

func (l *DefaultConfigLoader) Load() (*config.Config, error) {
	return config.Load()
}

// TestConfigLoader returns a pre-built configuration.
type TestConfigLoader struct {
	Config *config.Config
}

func (l *TestConfigLoader) Load() (*config.Config, error) {
	if l.Config == nil {
		return nil, fmt.Errorf("no config provided to TestConfigLoader")
	}
	return l.Config, nil
}
