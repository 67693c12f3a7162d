package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/minjcho/cowlick/params"
	"github.com/minjcho/cowlick/pkg/api"
	"github.com/minjcho/cowlick/pkg/auction"
	"github.com/minjcho/cowlick/pkg/solver"
	"github.com/minjcho/cowlick/pkg/storage"
	"github.com/minjcho/cowlick/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	level := zapcore.InfoLevel
	if os.Getenv("VERBOSE") == "true" {
		level = zapcore.DebugLevel
	}

	logger, err := util.NewLoggerWithFile(cfg.LogFile, level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Archive (optional) ----
	var archive *storage.Archive
	if cfg.Archive.Enabled {
		archive, err = storage.NewArchive(cfg.Archive.Path)
		if err != nil {
			sugar.Fatalw("archive_open_failed", "path", cfg.Archive.Path, "err", err)
		}
		defer archive.Close()
		sugar.Infow("archive_enabled", "path", cfg.Archive.Path)
	}

	// ---- Solver ----
	policy := auction.ExecPolicy{
		AmountTol:         cfg.Solver.AmountTol,
		XRateTol:          cfg.Solver.XRateTol,
		StrictSellCeiling: cfg.Solver.StrictSellCeiling,
		StrictLimitPrice:  cfg.Solver.StrictLimitPrice,
		Log:               sugar,
	}
	sol := solver.New(policy, sugar)

	sugar.Infow("solver_starting",
		"strict_sell_ceiling", cfg.Solver.StrictSellCeiling,
		"strict_limit_price", cfg.Solver.StrictLimitPrice,
		"amount_tol", cfg.Solver.AmountTol.String(),
		"xrate_tol", cfg.Solver.XRateTol.String())

	// ---- API Server ----
	server := api.NewServer(sol, archive, cfg.API.AllowedOrigins, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(cfg.API.Addr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting_down")
}
