// Package pipeline trains one price model per (source, crop) pair.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrichain/pricecast/farmdata"
	"github.com/agrichain/pricecast/internal/logger"
	"github.com/agrichain/pricecast/pricemodel"
	"github.com/agrichain/pricecast/timeseries"
)

// Status is how a (source, crop) pair ended.
type Status string

const (
	StatusTrained Status = "trained"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// maxConcurrentLoads bounds the number of sources read at once.
const maxConcurrentLoads = 4

// Trainer fits and saves a model for a named series.
type Trainer interface {
	SelectAndFit(ctx context.Context, name string, series *timeseries.Series) (*pricemodel.TrainedModel, error)
}

// Recorder receives batch level metrics.
type Recorder interface {
	RecordOutcome(outcome string)
	RecordSeriesPoints(crop string, points int)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(string)           {}
func (nopRecorder) RecordSeriesPoints(string, int) {}

// Outcome describes one (source, crop) pair. Crop is empty when the whole
// source could not be read.
type Outcome struct {
	Source string
	Crop   string
	Model  string
	Points int
	Status Status
	Reason string
	Err    error
	Result *pricemodel.TrainedModel
}

// Report is the result of a batch, in source then crop order.
type Report struct {
	Outcomes []Outcome
	Took     time.Duration
}

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Trained, Skipped and Failed count outcomes by status.
func (r *Report) Trained() int { return r.count(StatusTrained) }
func (r *Report) Skipped() int { return r.count(StatusSkipped) }
func (r *Report) Failed() int  { return r.count(StatusFailed) }

// Models returns the trained models in the order they were fitted.
func (r *Report) Models() []*pricemodel.TrainedModel {
	var out []*pricemodel.TrainedModel
	for _, o := range r.Outcomes {
		if o.Result != nil {
			out = append(out, o.Result)
		}
	}
	return out
}

// Runner drives a training batch.
type Runner struct {
	trainer     Trainer
	log         *logger.Logger
	metrics     Recorder
	minPoints   int
	modelSuffix string
	load        func(path string) (*farmdata.Dataset, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the batch logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithMetrics sets the recorder for outcomes and series lengths.
func WithMetrics(m Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithMinPoints sets the series length below which a crop is skipped.
func WithMinPoints(n int) Option {
	return func(r *Runner) { r.minPoints = n }
}

// WithModelSuffix sets the suffix appended to a crop name to name its model.
func WithModelSuffix(suffix string) Option {
	return func(r *Runner) { r.modelSuffix = suffix }
}

// New creates a runner that trains through trainer, with a minimum of 12
// monthly points and the model suffix "_price" unless overridden.
func New(trainer Trainer, opts ...Option) *Runner {
	r := &Runner{
		trainer:     trainer,
		log:         logger.Nop(),
		metrics:     nopRecorder{},
		minPoints:   12,
		modelSuffix: "_price",
		load:        farmdata.Load,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ModelName is the name a crop's model is trained and stored under.
func (r *Runner) ModelName(crop string) string {
	return crop + r.modelSuffix
}

// Run reads every source, then trains each crop of each source in turn.
// Failures are logged and recorded in the report; only a cancelled context
// stops the batch early.
func (r *Runner) Run(ctx context.Context, sources, crops []string) (*Report, error) {
	start := time.Now()
	report := &Report{}

	datasets, loadErrs, err := r.loadAll(ctx, sources)
	if err != nil {
		return report, err
	}

	for i, source := range sources {
		if loadErrs[i] != nil {
			r.log.Error("failed to load source",
				logger.String("source", source),
				logger.Error(loadErrs[i]))
			r.metrics.RecordOutcome(string(StatusFailed))
			report.Outcomes = append(report.Outcomes, Outcome{
				Source: source,
				Status: StatusFailed,
				Reason: "source could not be read",
				Err:    loadErrs[i],
			})
			continue
		}

		r.log.Info("source loaded",
			logger.String("source", source),
			logger.Int("records", len(datasets[i].Records)),
			logger.Int("dropped", datasets[i].Dropped))

		for _, crop := range crops {
			if err := ctx.Err(); err != nil {
				report.Took = time.Since(start)
				return report, err
			}
			o := r.trainOne(ctx, source, datasets[i], crop)
			r.metrics.RecordOutcome(string(o.Status))
			report.Outcomes = append(report.Outcomes, o)
		}
	}

	report.Took = time.Since(start)
	r.log.Info("training batch finished",
		logger.Int("trained", report.Trained()),
		logger.Int("skipped", report.Skipped()),
		logger.Int("failed", report.Failed()),
		logger.Duration("took_ms", report.Took))
	return report, nil
}

// loadAll reads sources concurrently. Per source errors are returned by index
// and do not cancel the other loads.
func (r *Runner) loadAll(ctx context.Context, sources []string) ([]*farmdata.Dataset, []error, error) {
	datasets := make([]*farmdata.Dataset, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			datasets[i], errs[i] = r.load(source)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load sources: %w", err)
	}
	return datasets, errs, nil
}

func (r *Runner) trainOne(ctx context.Context, source string, ds *farmdata.Dataset, crop string) Outcome {
	name := r.ModelName(crop)
	log := r.log.With(
		logger.String("source", source),
		logger.String("crop", crop),
		logger.String("model", name))

	series := farmdata.PrepareSeries(ds, crop)
	o := Outcome{Source: source, Crop: crop, Model: name, Points: series.Len()}
	r.metrics.RecordSeriesPoints(name, o.Points)

	switch {
	case series.IsEmpty():
		o.Status = StatusSkipped
		o.Reason = "no price data for crop"
		log.Warn("skipping crop, no price data")
		return o
	case o.Points < r.minPoints:
		o.Status = StatusSkipped
		o.Reason = fmt.Sprintf("only %d monthly points, need %d", o.Points, r.minPoints)
		log.Warn("skipping crop, not enough monthly points",
			logger.Int("points", o.Points),
			logger.Int("min_points", r.minPoints))
		return o
	}

	log.Info("training model",
		logger.Int("points", o.Points),
		logger.Float("mean", series.Mean()),
		logger.Float("std", series.Std()),
		logger.Float("min", series.Min()),
		logger.Float("max", series.Max()),
		logger.String("first_month", series.First().Format("2006-01")),
		logger.String("last_month", series.Last().Format("2006-01")))

	m, err := r.trainer.SelectAndFit(ctx, name, series)
	if err != nil {
		o.Status = StatusFailed
		o.Reason = "model training failed"
		o.Err = err
		log.Error("model training failed", logger.Error(err))
		return o
	}

	o.Status = StatusTrained
	o.Result = m
	return o
}
