package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/w3wave/social-digest/internal/app"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/pkg/logger"
	"go.uber.org/fx"
)

const usage = `usage:
  social-digest [serve]            run the scheduler and admin API
  social-digest run [YYYY-MM-DD]   run the digest once (default: today)
  social-digest reset YYYY-MM-DD   mark a day's posts unprocessed`

func main() {
	log := logger.New(logger.Opts{})

	args := os.Args[1:]
	mode := "serve"
	if len(args) > 0 {
		mode, args = args[0], args[1:]
	}

	switch mode {
	case "serve":
		os.Exit(serve(log))
	case "run":
		os.Exit(once(log, args, runOnce))
	case "reset":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(once(log, args, resetOnce))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func serve(log *logger.Impl) int {
	app := fx.New(
		fx.Logger(log),
		app.Serve,
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		return 1
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Gracefully shutdown the application
	if err := app.Stop(ctx); err != nil {
		log.Error("Failed to stop application", "error", err)
		return 1
	}
	return 0
}

type command func(ctx context.Context, log *logger.Impl, p pipeline.Client, args []string) int

// once boots the core graph without the scheduler or HTTP server, runs cmd and
// tears everything down.
func once(log *logger.Impl, args []string, cmd command) int {
	var p pipeline.Client
	app := fx.New(
		fx.Logger(log),
		app.Core,
		fx.Populate(&p),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Error("Failed to start application", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd(ctx, log, p, args)
	stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
	}
	return code
}

func parseDate(p pipeline.Client, args []string) (time.Time, error) {
	if len(args) == 0 {
		return time.Now(), nil
	}
	w, err := domain.ParseDay(args[0], p.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
	}
	return w.Start, nil
}

func runOnce(ctx context.Context, log *logger.Impl, p pipeline.Client, args []string) int {
	date, err := parseDate(p, args)
	if err != nil {
		log.Error("Bad arguments", "error", err)
		return 2
	}

	result, err := p.Run(ctx, date)
	fmt.Printf("%s: %s\n", result.Status, result.Message)
	if err != nil {
		return 1
	}
	return 0
}

func resetOnce(ctx context.Context, log *logger.Impl, p pipeline.Client, args []string) int {
	date, err := parseDate(p, args)
	if err != nil {
		log.Error("Bad arguments", "error", err)
		return 2
	}

	n, err := p.Reset(ctx, date)
	if err != nil {
		log.Error("Reset failed", "error", err)
		return 1
	}
	fmt.Printf("reset %d posts\n", n)
	return 0
}
