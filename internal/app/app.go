// Package app assembles quizcraft's services from the environment.
package app

import (
	"context"
	"fmt"

	"github.com/abhisek/quizcraft/internal/extract"
	"github.com/abhisek/quizcraft/internal/kv"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/pipeline"
	"github.com/abhisek/quizcraft/internal/progress"
	"github.com/abhisek/quizcraft/internal/quizgen"
	"github.com/abhisek/quizcraft/internal/sandbox"
	"github.com/abhisek/quizcraft/internal/session"
	"github.com/abhisek/quizcraft/internal/store"
)

// Options override parts of the environment-driven wiring.
type Options struct {
	// DBPath is the SQLite file to open.
	DBPath string

	// Provider replaces the model provider built from QUIZCRAFT_LLM_*.
	Provider llm.Provider

	// Runner replaces the Piston client built from QUIZCRAFT_SANDBOX_*.
	Runner sandbox.Runner

	// Scheduler replaces the wall-clock auto-advance scheduler.
	Scheduler session.Scheduler

	Log *logger.Logger
}

// App holds the wired services. Close releases the store and any Redis
// connection.
type App struct {
	Store    *store.Store
	Sets     kv.SetStore
	Ledger   *progress.Ledger
	Pipeline *pipeline.Service
	Log      *logger.Logger

	// ProviderErr is set when no model provider could be configured. The
	// stores remain usable; only session creation is unavailable.
	ProviderErr error

	redis *kv.RedisSetStore
}

// New opens the store and wires every service. The completion ledger
// lives in Redis when QUIZCRAFT_REDIS_ADDR is set and in SQLite otherwise.
func New(ctx context.Context, opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{Store: st, Sets: st.SetRepo(), Log: log}

	if rc := kv.RedisConfigFromEnv(); rc.Addr != "" {
		rs, err := kv.NewRedisSetStore(ctx, rc)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("connect ledger backend: %w", err)
		}
		a.redis = rs
		a.Sets = rs
		log.Debug("completion ledger on redis", "addr", rc.Addr)
	}
	a.Ledger = progress.NewLedger(a.Sets)

	provider := opts.Provider
	if provider == nil {
		provider, err = llm.NewProviderFromEnv(ctx, st.EventRepo(), log)
		if err != nil {
			a.ProviderErr = err
			log.Warn("model provider not configured", "error", err)
			return a, nil
		}
	}

	runner := opts.Runner
	if runner == nil {
		runner = sandbox.NewPistonClient(sandbox.ConfigFromEnv(), log)
	}

	extractCfg := extract.ConfigFromEnv()
	a.Pipeline, err = pipeline.New(pipeline.Options{
		Extractor:   extract.NewCachingExtractor(extract.NewService(extractCfg, nil, log), extractCfg),
		Synthesizer: quizgen.New(provider, quizgen.ConfigFromEnv(), log),
		Runner:      runner,
		Committer:   progress.NewScoreCommitter(st.ProfileRepo(), log),
		Ledger:      a.Ledger,
		Contents:    st.ContentRepo(),
		Events:      st.EventRepo(),
		Scheduler:   opts.Scheduler,
		Session:     session.ConfigFromEnv(),
		Log:         log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return a.Store.Close()
}
