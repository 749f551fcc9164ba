// Command pricecast trains crop price models from farm exports and serves
// forecasts from the saved models.
//
// Usage:
//
//	pricecast train -config pricecast.yaml
//	pricecast forecast -config pricecast.yaml -crop tomato_price -n 6
//	pricecast prepare -source farm_a.csv -crop tomato
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/agrichain/pricecast/farmdata"
	"github.com/agrichain/pricecast/forecast"
	"github.com/agrichain/pricecast/internal/config"
	"github.com/agrichain/pricecast/internal/logger"
	"github.com/agrichain/pricecast/internal/metrics"
	"github.com/agrichain/pricecast/internal/pipeline"
	"github.com/agrichain/pricecast/selection"
	"github.com/agrichain/pricecast/store"
	"github.com/agrichain/pricecast/timeseries"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2
	exitUsage    = 64
)

const usage = `usage: pricecast <command> [flags]

commands:
  train      train a model for every configured (source, crop) pair
  forecast   print a forecast from a saved model as JSON
  prepare    print the monthly price series of a crop as CSV
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:], stderr)
	case "forecast":
		return runForecast(ctx, args[1:], stdout, stderr)
	case "prepare":
		return runPrepare(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
}

func runTrain(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML configuration")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, log, code := setup(*configPath, stderr)
	if cfg == nil {
		return code
	}
	if len(cfg.Data.Sources) == 0 {
		log.Error("no data sources configured")
		return exitUsage
	}

	models, closeStore, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open model store", logger.Error(err))
		return exitFailure
	}
	defer closeStore()

	runID := uuid.New()
	log = log.With(logger.String("run_id", runID.String()))
	recorder := metrics.New()

	engine := selection.New(models,
		selection.WithConfig(selectionConfig(cfg.Selection)),
		selection.WithLogger(log),
		selection.WithMetrics(recorder),
		selection.WithRunID(runID))

	runner := pipeline.New(engine,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(recorder),
		pipeline.WithMinPoints(cfg.Data.MinPoints),
		pipeline.WithModelSuffix(cfg.Data.ModelSuffix))

	log.Info("starting training batch",
		logger.Strings("sources", cfg.Data.Sources),
		logger.Strings("crops", cfg.Data.Crops),
		logger.String("store", cfg.Store.Backend))

	report, err := runner.Run(ctx, cfg.Data.Sources, cfg.Data.Crops)
	if err != nil {
		log.Error("training batch aborted", logger.Error(err))
		return exitFailure
	}

	if cfg.Metrics.Enabled {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("failed to write metrics", logger.Error(err))
		}
	}

	trained := report.Models()
	if len(trained) == 0 {
		log.Warn("no model was trained")
		return exitOK
	}

	// Log a short forecast of the first model as a smoke check.
	m := trained[0]
	fc, err := forecast.Generate(m, cfg.Forecast.Horizon, cfg.Forecast.Confidence)
	if err != nil {
		log.Error("validation forecast failed",
			logger.String("model", m.Crop()),
			logger.Error(err))
		return exitFailure
	}
	for _, p := range fc.Points {
		log.Info("validation forecast",
			logger.String("model", m.Crop()),
			logger.String("month", p.Date.Format("2006-01")),
			logger.Float("value", p.Value),
			logger.Float("lower", p.Lower),
			logger.Float("upper", p.Upper))
	}
	return exitOK
}

func runForecast(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML configuration")
	crop := fs.String("crop", "", "model name, for example tomato_price")
	n := fs.Int("n", 0, "number of months to forecast (default from config)")
	confidence := fs.Float64("confidence", 0, "interval confidence level (default from config)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *crop == "" {
		fmt.Fprintln(stderr, "forecast: -crop is required")
		return exitUsage
	}

	cfg, log, code := setup(*configPath, stderr)
	if cfg == nil {
		return code
	}
	if *n == 0 {
		*n = cfg.Forecast.Horizon
	}
	if *confidence == 0 {
		*confidence = cfg.Forecast.Confidence
	}

	models, closeStore, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open model store", logger.Error(err))
		return exitFailure
	}
	defer closeStore()

	m, err := models.Load(ctx, *crop)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(stderr, "no trained model for %q, run pricecast train first\n", *crop)
		return exitNotFound
	}
	if err != nil {
		log.Error("failed to load model", logger.String("model", *crop), logger.Error(err))
		return exitFailure
	}

	fc, err := forecast.Generate(m, *n, *confidence)
	if err != nil {
		fmt.Fprintf(stderr, "forecast: %v\n", err)
		return exitUsage
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		log.Error("failed to write forecast", logger.Error(err))
		return exitFailure
	}
	return exitOK
}

func runPrepare(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	source := fs.String("source", "", "farm export (.csv or .xlsx)")
	crop := fs.String("crop", "", "crop type, for example tomato")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *source == "" || *crop == "" {
		fmt.Fprintln(stderr, "prepare: -source and -crop are required")
		return exitUsage
	}

	ds, err := farmdata.Load(*source)
	if err != nil {
		fmt.Fprintf(stderr, "prepare: %v\n", err)
		return exitFailure
	}

	series := farmdata.PrepareSeries(ds, *crop)
	if err := timeseries.WriteCSV(stdout, series); err != nil {
		fmt.Fprintf(stderr, "prepare: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// setup loads the configuration and builds the logger. A nil config means
// the command should exit with the returned code.
func setup(path string, stderr io.Writer) (*config.Config, *logger.Logger, int) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return nil, nil, exitUsage
	}

	var log *logger.Logger
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" {
		log, err = logger.NewWithWriter(&cfg.Log, stderr)
	} else {
		log, err = logger.New(&cfg.Log)
	}
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return nil, nil, exitUsage
	}
	return cfg, log, exitOK
}

func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedisStore(
			store.WithRedisAddr(cfg.Store.Redis.Addr),
			store.WithRedisPassword(cfg.Store.Redis.Password),
			store.WithRedisDB(cfg.Store.Redis.DB),
			store.WithRedisPrefix(cfg.Store.Redis.Prefix))
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return store.NewFileStore(cfg.Store.Dir), func() {}, nil
	}
}

func selectionConfig(c config.SelectionConfig) selection.Config {
	return selection.Config{
		MaxP:           c.MaxP,
		MaxQ:           c.MaxQ,
		MaxSP:          c.MaxSP,
		MaxSQ:          c.MaxSQ,
		MaxOrder:       c.MaxOrder,
		SeasonalPeriod: c.SeasonalPeriod,
		Criterion:      c.Criterion,
	}
}
