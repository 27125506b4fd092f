package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/slopwatch/slopwatch/internal/aiclassifier"
	"github.com/slopwatch/slopwatch/internal/config"
	"github.com/slopwatch/slopwatch/internal/database"
	"github.com/slopwatch/slopwatch/internal/logger"
	"github.com/slopwatch/slopwatch/internal/run"
	"github.com/slopwatch/slopwatch/internal/scoring"
	"github.com/slopwatch/slopwatch/internal/telemetry"
	"github.com/slopwatch/slopwatch/internal/youtube"
)

// deps bundles the wired pipeline for a command invocation.
type deps struct {
	cfg        *config.Config
	log        logger.Logger
	db         *sqlx.DB
	repo       *database.ChannelRepository
	controller *run.Controller
	telemetry  *telemetry.Provider
}

// buildStoreDeps loads config and wires the logger and persistence layer.
// Commands that only read the store do not need provider credentials.
func buildStoreDeps() (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	log = log.With(logger.String("service", cfg.Service.Name))

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:  cfg,
		log:  log,
		db:   db,
		repo: database.NewChannelRepository(db),
	}, nil
}

// buildDeps wires the full pipeline on top of the store deps, validating
// provider credentials first. The interval limiter is constructed here,
// once per process, and shared by every run the process performs.
func buildDeps() (*deps, error) {
	d, err := buildStoreDeps()
	if err != nil {
		return nil, err
	}
	if err := d.cfg.Validate(); err != nil {
		d.close()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	d.telemetry = telemetry.NewProvider()

	yt := youtube.NewClient(d.cfg.YouTube.APIKey, d.log)
	engine := scoring.NewEngine(d.log)

	limiter := aiclassifier.NewIntervalLimiter(d.cfg.Gemini.MinInterval())
	generator := aiclassifier.NewGeminiClient(d.cfg.Gemini.APIKey, d.cfg.Gemini.Model)
	ai := aiclassifier.New(generator, limiter, d.log, aiclassifier.WithRecorder(d.telemetry))

	d.controller = run.NewController(yt, yt, yt, yt, engine, ai, d.repo, d.telemetry, d.log)
	return d, nil
}

func (d *deps) close() {
	if d.db != nil {
		_ = d.db.Close()
	}
	if d.log != nil {
		_ = d.log.Sync()
	}
}
