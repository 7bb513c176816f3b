package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"careassign/internal/config"
	"careassign/internal/metrics"
	"careassign/internal/notify"
	"careassign/internal/sched"
	"careassign/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "careassign-optimizer").Logger()

	if cfg.OrgID == "" {
		logger.Fatal().Msg("ORG_ID is required")
	}

	var st store.Store
	if cfg.DatabaseURL == "" {
		logger.Info().Msg("no DATABASE_URL, using in-memory store")
		st = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		if cfg.Migrate {
			if err := pg.MigrateDir("db/migrations"); err != nil {
				logger.Fatal().Err(err).Msg("migrations failed")
			}
		}
		st = pg
	}

	var sink notify.Sink = notify.LogSink{Log: logger}
	if cfg.RedisURL != "" {
		rs, err := notify.NewRedisSink(cfg.RedisURL, cfg.NotifyRatePerSec)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rs.Close()
		sink = rs
	}

	tn, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.TuningFile).Msg("bad tuning file")
	}

	metrics.RegisterDefault()
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener started")
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics listener stopped")
			}
		}()
	}

	planner := &sched.Planner{Store: st, Sink: sink, Log: logger, Tuning: tn}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runOnce(ctx, planner, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("run failed")
	}
	if cfg.RunEvery <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.RunEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("optimizer stopped")
			return
		case <-ticker.C:
			if err := runOnce(ctx, planner, cfg, logger); err != nil {
				logger.Error().Err(err).Msg("run failed")
				metrics.Passes.WithLabelValues(cfg.Mode, "error").Inc()
			}
		}
	}
}

func runOnce(ctx context.Context, p *sched.Planner, cfg config.Config, logger zerolog.Logger) error {
	start, end, err := cfg.Window(time.Now())
	if err != nil {
		return err
	}
	switch cfg.Mode {
	case "conflicts":
		violations, err := p.ScanConflicts(ctx, cfg.OrgID, start, end)
		if err != nil {
			return err
		}
		for _, v := range violations {
			logger.Warn().
				Str("type", string(v.Type)).
				Str("caregiverId", v.CaregiverID).
				Strs("visitIds", v.VisitIDs).
				Str("detail", v.Detail).
				Msg("schedule conflict")
		}
		logger.Info().Int("violations", len(violations)).Msg("conflict scan finished")
		return nil
	case "reoptimize":
		rep, err := p.Reoptimize(ctx, cfg.OrgID, start, end)
		if err != nil {
			return err
		}
		for _, r := range rep.Reassignments {
			logger.Info().
				Str("visitId", r.VisitID).
				Str("from", r.CurrentCaregiver).
				Str("to", r.ProposedCaregiver).
				Msg("proposed reassignment")
		}
		logger.Info().
			Float64("currentTravelMin", rep.CurrentTravelMinutes).
			Float64("proposedTravelMin", rep.ProposedTravelMinutes).
			Float64("savedMin", rep.TravelTimeSaved).
			Msg("re-optimization finished")
		return nil
	default:
		rep, err := p.RunPass(ctx, cfg.OrgID, start, end, cfg.ClientID)
		if err != nil {
			return err
		}
		if len(rep.Unassigned) > 0 {
			ids := make([]string, 0, len(rep.Unassigned))
			for _, v := range rep.Unassigned {
				ids = append(ids, v.ID)
			}
			logger.Warn().Strs("visitIds", ids).Msg("visits need manual scheduling")
		}
		return nil
	}
}
