// Command bandit autoplays the slot machine headlessly. It records every
// round to SQLite and serves the live state over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/pocketbandit/internal/api"
	"github.com/MJE43/pocketbandit/internal/audio"
	"github.com/MJE43/pocketbandit/internal/config"
	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/game"
	"github.com/MJE43/pocketbandit/internal/jobs"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/round"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/rules/builtin"
	"github.com/MJE43/pocketbandit/internal/store"
	"github.com/MJE43/pocketbandit/internal/trial"
)

const recorderBatch = 50

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		var cerr *rules.ConfigurationError
		if errors.As(err, &cerr) {
			logger.Error("invalid rule file", zap.String("resource", cerr.Resource), zap.String("reason", cerr.Reason))
		} else {
			logger.Error("bandit failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	p, err := prefs.New(ctx, db, logger)
	if err != nil {
		return err
	}
	// Whatever happens below, the last state reaches the database.
	defer func() {
		if err := p.Flush(context.Background()); err != nil {
			logger.Warn("final preferences flush failed", zap.Error(err))
		}
	}()

	now := time.Now()
	period := trial.New(p)
	period.RecordLaunch(now)
	if period.IsOver(now) {
		logger.Info("trial period over", zap.Int("launches", period.Launches()), zap.Int("state", int(period.State())))
	}

	var fsys fs.FS = builtin.FS
	if cfg.RuleDir != "" {
		fsys = os.DirFS(cfg.RuleDir)
	}
	catalog, err := rules.NewCatalog(fsys, p)
	if err != nil {
		return err
	}
	if cfg.Rule != "" {
		if err := catalog.Select(cfg.Rule); err != nil {
			return err
		}
	}
	// Fail on a broken rule file before anything is recorded.
	if _, err := catalog.LoadAll(); err != nil {
		return err
	}
	variation, err := catalog.Load()
	if err != nil {
		return err
	}

	script, scriptName := "", "default"
	if cfg.Script != "" {
		b, err := os.ReadFile(cfg.Script)
		if err != nil {
			return fmt.Errorf("bandit: read script: %w", err)
		}
		script, scriptName = string(b), filepath.Base(cfg.Script)
	}

	var source engine.Source
	if cfg.ServerSeed != "" {
		nonce := uint64(period.Launches())
		source = engine.NewSeededSource(cfg.ServerSeed, cfg.ClientSeed, nonce)
		logger.Info("seeded source", zap.String("client_seed", cfg.ClientSeed), zap.Uint64("nonce", nonce))
	} else {
		source = engine.NewMathSource(uint64(now.UnixNano()))
	}

	sess, err := db.CreateSession(ctx, variation.Name, scriptName)
	if err != nil {
		return err
	}
	logger = logger.With(zap.String("session", sess.ID))
	recorder := store.NewRecorder(db, sess.ID, recorderBatch, logger)

	session, err := game.NewSession(game.Config{
		Catalog:           catalog,
		Prefs:             p,
		Source:            source,
		Mute:              audio.NewManager(p),
		Rounds:            cfg.Rounds,
		TransitionSeconds: cfg.TransitionSeconds,
		SymbolHeight:      cfg.SymbolHeight,
		Script:            script,
		Observers:         []round.Observer{recorder},
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(ctx, logger)
	if err := scheduler.AddFunc(cfg.FlushSchedule, "flush-preferences", p.Flush); err != nil {
		return err
	}
	if err := scheduler.AddFunc(cfg.FlushSchedule, "flush-rounds", recorder.Flush); err != nil {
		return err
	}

	logger.Info("session started",
		zap.String("variation", variation.Name),
		zap.String("script", scriptName),
		zap.Int("rounds", cfg.Rounds),
		zap.Bool("fast", cfg.Fast),
	)

	g, gctx := errgroup.WithContext(ctx)
	// Services stop once the loop is done.
	svcCtx, cancelSvc := context.WithCancel(gctx)
	defer cancelSvc()

	g.Go(func() error {
		defer cancelSvc()
		loop := game.NewLoop(cfg.FPS, logger)
		var err error
		if cfg.Fast {
			err = loop.RunFast(gctx, session, math.MaxInt64)
		} else {
			err = loop.Run(gctx, session)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return scheduler.Run(svcCtx)
	})
	if cfg.HTTPAddr != "" {
		server := api.NewServer(session, db, catalog, logger)
		g.Go(func() error {
			return server.ListenAndServe(svcCtx, cfg.HTTPAddr)
		})
	}

	waitErr := g.Wait()

	// Session bookkeeping uses a fresh context so an interrupt still records.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := recorder.Flush(finishCtx); err != nil {
		logger.Warn("final round flush failed", zap.Error(err), zap.Int("pending", recorder.Pending()))
	}
	rounds, wagered, returned := session.Totals()
	if err := db.EndSession(finishCtx, sess.ID, store.SessionTotals{
		Rounds:   rounds,
		Wagered:  wagered,
		Returned: returned,
	}); err != nil {
		logger.Warn("end session failed", zap.Error(err))
	}

	snap := session.Snapshot()
	logger.Info("session ended",
		zap.String("phase", string(snap.Phase)),
		zap.Int("rounds", rounds),
		zap.Int("wagered", wagered),
		zap.Int("returned", returned),
		zap.Int("credit", snap.Credit),
		zap.String("rtp", snap.Stats.RTP.String()),
	)

	if waitErr != nil {
		return waitErr
	}
	return session.Err()
}
