package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/ledsnake"
	"libdb.so/ledsnake/internal/termsim"
)

var (
	config  = ""
	verbose = false
	backend = ""
	device  = ""
	trace   = ""
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file (.toml or .yaml)")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVarP(&backend, "backend", "b", backend, "backend to use: terminal or serial")
	pflag.StringVarP(&device, "device", "d", device, "serial device, implies --backend=serial")
	pflag.StringVarP(&trace, "trace", "t", trace, "write a CSV trace of every tick to this file")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var opts []ledsnake.GameOption
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()

		opts = append(opts, ledsnake.WithTrace(ledsnake.NewTraceWriter(f)))
	}

	switch cfg.Backend {
	case ledsnake.SerialBackend:
		return runSerial(ctx, cfg, opts)
	default:
		return runTerminal(ctx, cfg, opts)
	}
}

func runSerial(ctx context.Context, cfg *ledsnake.Config, opts []ledsnake.GameOption) error {
	display, err := ledsnake.OpenSerialDisplay(cfg.Serial, slog.Default())
	if err != nil {
		return err
	}

	g, err := ledsnake.NewGame(cfg, display, display, slog.Default(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return display.Run(ctx)
	})
	errg.Go(func() error {
		if err := display.Initialize(ctx); err != nil {
			return err
		}
		return g.Run(ctx)
	})

	if err := errg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("game failed: %w", err)
	}

	return nil
}

func runTerminal(ctx context.Context, cfg *ledsnake.Config, opts []ledsnake.GameOption) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal screen: %w", err)
	}

	left, _ := utf8.DecodeRuneInString(cfg.Terminal.LeftKey)
	right, _ := utf8.DecodeRuneInString(cfg.Terminal.RightKey)

	sim, err := termsim.New(s, termsim.Keys{Left: left, Right: right})
	if err != nil {
		return err
	}

	g, err := ledsnake.NewGame(cfg, sim, sim, slog.Default(), opts...)
	if err != nil {
		s.Fini()
		return fmt.Errorf("failed to create game: %w", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return sim.Run(ctx)
	})
	errg.Go(func() error {
		return g.Run(ctx)
	})

	err = errg.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, termsim.ErrQuit) {
		return fmt.Errorf("game failed: %w", err)
	}

	return nil
}

func readConfig() (*ledsnake.Config, error) {
	cfg := ledsnake.DefaultConfig()
	if config != "" {
		var err error
		cfg, err = ledsnake.ReadConfigFile(config)
		if err != nil {
			return nil, err
		}
	}

	if device != "" {
		cfg.Serial.Device = device
		cfg.Backend = ledsnake.SerialBackend
	}
	if backend != "" {
		cfg.Backend = ledsnake.Backend(backend)
	}
	if trace != "" {
		cfg.Trace = trace
	}

	return cfg, nil
}
