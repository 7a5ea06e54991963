package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"linphase/app"
	"linphase/hal"
	"linphase/internal/buildinfo"
	"linphase/internal/config"
	"linphase/internal/httpapi"
	"linphase/internal/script"
)

const (
	shutdownTimeout = 5 * time.Second
	scriptTimeout   = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd binds flags over the environment defaults in cfg.
func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linphase",
		Short: "Interactive phase portraits of u' = A u for 2x2 matrices",
		Long: `linphase shows the phase portrait of a linear system u' = A u and lets you
steer the matrix through its trace and determinant or a rotation angle and skew.

It opens a desktop window by default. With --headless it runs from a ticker,
optionally replaying a YAML input script and writing a PNG snapshot at the end.
--http exposes the widget state (GET/PUT /state, GET /grade) for graders.`,
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := newLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if err := run(cmd.Context(), cfg, log); err != nil {
				log.Error("linphase failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window")
	f.IntVar(&cfg.Hz, "hz", cfg.Hz, "tick rate in headless mode")
	f.Uint64Var(&cfg.Ticks, "ticks", cfg.Ticks, "stop after N ticks in headless mode (0 = run until the script ends or forever)")
	f.IntVar(&cfg.Width, "width", cfg.Width, "framebuffer width")
	f.IntVar(&cfg.Height, "height", cfg.Height, "framebuffer height")
	f.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "serve the state API on this address")
	f.StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "load and keep the state in this JSON file")
	f.StringVar(&cfg.Script, "script", cfg.Script, "YAML input script for headless runs")
	f.StringVar(&cfg.Snapshot, "snapshot", cfg.Snapshot, "write the final frame to this PNG file")
	f.IntVar(&cfg.SnapshotScale, "snapshot-scale", cfg.SnapshotScale, "integer scale of the PNG snapshot")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug logging")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func run(parent context.Context, cfg *config.Config, log *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	// Load the script before anything starts so a typo fails fast.
	var sc *script.Script
	if cfg.Script != "" {
		var err error
		if sc, err = script.Load(cfg.Script); err != nil {
			return err
		}
	}

	session := uuid.NewString()
	log = log.With(zap.String("session", session))
	h := hal.New(hal.HostConfig{Width: cfg.Width, Height: cfg.Height, Log: log})
	sys := app.New(h, app.Config{StateFile: cfg.StateFile, Session: session})
	defer sys.Shutdown()

	if err := sys.Disabled(); err != nil {
		log.Warn("widget disabled", zap.Error(err))
	}
	log.Info("linphase started",
		zap.String("version", buildinfo.Short()),
		zap.Bool("headless", cfg.Headless),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(sys, sys.Snapshot, log.Named("http")), session),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
		g.Go(func() error {
			log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	loopErr := hostLoop(gctx, cfg, h, sys, sc)
	if loopErr == nil && cfg.Snapshot != "" {
		loopErr = writeSnapshot(sys, cfg.Snapshot, cfg.SnapshotScale)
		if loopErr == nil {
			log.Info("snapshot written", zap.String("path", cfg.Snapshot))
		}
	}

	cancel()
	if err := g.Wait(); err != nil && loopErr == nil {
		loopErr = err
	}
	return loopErr
}

// hostLoop runs on the main goroutine, which the window backend requires.
func hostLoop(ctx context.Context, cfg *config.Config, h hal.HAL, sys *app.System, sc *script.Script) error {
	step := func() error {
		if ctx.Err() != nil {
			return hal.ErrWindowClosed
		}
		return sys.Step()
	}

	if !cfg.Headless {
		return hal.RunWindow(h, step, "linphase "+buildinfo.Short())
	}

	hc := hal.HeadlessConfig{Hz: cfg.Hz, Ticks: cfg.Ticks}
	if sc != nil {
		player := script.NewPlayer(sc, func(body []byte) error {
			sctx, cancel := context.WithTimeout(ctx, scriptTimeout)
			defer cancel()
			_, err := sys.SetState(sctx, body)
			return err
		})
		hc.Script = player.Step
	}
	err := hal.RunHeadless(ctx, h, step, hc)
	if errors.Is(err, hal.ErrWindowClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeSnapshot(sys *app.System, path string, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := sys.Snapshot(f, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
