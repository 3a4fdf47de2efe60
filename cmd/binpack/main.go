package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/binpack/internal/application"
	"github.com/eugenenazirov/binpack/internal/binpack"
	"github.com/eugenenazirov/binpack/internal/config"
	"github.com/eugenenazirov/binpack/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("binpack", "Bin Packing Solver - packs fractional items into the fewest unit bins")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	var itemsSet bool
	itemsStr := kingpinApp.Flag("items", "Comma-separated item sizes in (0, 1]; an empty value solves the empty list").IsSetByUser(&itemsSet).String()
	maxItemsFlag := kingpinApp.Flag("max-items", "Largest item set accepted by the solver").Default("0").Int()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	solveCmd := kingpinApp.Command("solve", "Solve the configured items and print one bin index per item").Default()
	verbose := solveCmd.Flag("verbose", "Also print bin loads and bounds").Short('v').Bool()

	serveCmd := kingpinApp.Command("serve", "Run the HTTP API")
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity per client (set 0 to disable)").Default("-1").Int()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if strings.TrimSpace(*itemsStr) != "" {
		overrides.ItemsStr = itemsStr
	}

	if *maxItemsFlag > 0 {
		overrides.MaxItems = maxItemsFlag
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case solveCmd.FullCommand():
		items := solveItems(cfg, itemsSet, *itemsStr)
		if err := runSolve(os.Stdout, binpack.New(), items, *verbose, logger); err != nil {
			logger.Fatal("failed to solve items", zap.Error(err))
		}
	case serveCmd.FullCommand():
		app, err := application.New(cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize application", zap.Error(err))
		}

		if err := app.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}

		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	}
}

// solveItems picks the list for the solve command. An explicit empty --items
// selects the empty list, which the configuration cannot hold because it also
// seeds the service's working set.
func solveItems(cfg config.Config, itemsSet bool, raw string) []float64 {
	if itemsSet && strings.TrimSpace(raw) == "" {
		return []float64{}
	}
	return cfg.Items
}

// runSolve prints the assignment as "[1 1 2 3]", followed in verbose mode by
// the bounds and the contents of each bin.
func runSolve(w io.Writer, solver binpack.Solver, items []float64, verbose bool, logger *zap.Logger) error {
	start := time.Now()
	assignment, err := solver.Assign(items)
	if err != nil {
		return fmt.Errorf("assign items: %w", err)
	}
	packing, err := binpack.Summarize(items, assignment)
	if err != nil {
		return fmt.Errorf("verify assignment: %w", err)
	}
	logger.Debug("items solved",
		zap.Int("items", len(items)),
		zap.Int("bins", packing.Bins),
		zap.Duration("duration", time.Since(start)),
	)

	if _, err := fmt.Fprintln(w, assignment); err != nil {
		return err
	}
	if !verbose {
		return nil
	}

	lower, err := binpack.LowerBound(items)
	if err != nil {
		return err
	}
	upper, err := binpack.UpperBound(items)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "bins: %d (lower bound %d, first fit %d)\n", packing.Bins, lower, upper)

	contents := make([][]float64, packing.Bins)
	for idx, bin := range assignment {
		contents[bin-1] = append(contents[bin-1], items[idx])
	}
	for bin, sizes := range contents {
		fmt.Fprintf(w, "bin %d: load %.4g %v\n", bin+1, packing.Loads[bin], sizes)
	}
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
