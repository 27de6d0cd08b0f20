package stats

import (
	"context"
	"fmt"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	KeyDataset = tag.MustNewKey("dataset")
	KeyLabel   = tag.MustNewKey("label")
)

var (
	MTrainedSamples = stats.Int64("knc/train/samples", "Number of samples accepted for training", stats.UnitDimensionless)
	MPredictions    = stats.Int64("knc/predict/total", "Number of predictions served", stats.UnitDimensionless)
	MPredictShare   = stats.Float64("knc/predict/share", "Winning vote share of served predictions", stats.UnitDimensionless)
	MPredictMs      = stats.Float64("knc/predict/latency", "Prediction latency", stats.UnitMilliseconds)
	MEvaluations    = stats.Int64("knc/evaluate/total", "Number of evaluation runs", stats.UnitDimensionless)
	MEvaluateMs     = stats.Float64("knc/evaluate/latency", "Evaluation latency", stats.UnitMilliseconds)
)

var views = []*view.View{
	{
		Name:        "knc/train/samples",
		Measure:     MTrainedSamples,
		Description: "Samples accepted for training by dataset",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.Count(),
	},
	{
		Name:        "knc/predict/total",
		Measure:     MPredictions,
		Description: "Predictions served by dataset and winning label",
		TagKeys:     []tag.Key{KeyDataset, KeyLabel},
		Aggregation: view.Count(),
	},
	{
		Name:        "knc/predict/share",
		Measure:     MPredictShare,
		Description: "Distribution of winning vote shares",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.Distribution(0.1, 0.25, 0.5, 0.75, 0.9, 1),
	},
	{
		Name:        "knc/predict/latency",
		Measure:     MPredictMs,
		Description: "Prediction latency distribution",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.Distribution(0.5, 1, 5, 10, 50, 100, 500, 1000),
	},
	{
		Name:        "knc/evaluate/total",
		Measure:     MEvaluations,
		Description: "Evaluation runs by dataset",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.Count(),
	},
	{
		Name:        "knc/evaluate/latency",
		Measure:     MEvaluateMs,
		Description: "Evaluation latency distribution",
		TagKeys:     []tag.Key{KeyDataset},
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000),
	},
}

// NewExporter registers the service views and returns a prometheus exporter
// ready to be mounted as an http.Handler.
func NewExporter() (*prometheus.Exporter, error) {
	if err := view.Register(views...); err != nil {
		return nil, fmt.Errorf("unable register stats views: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "knc"})
	if err != nil {
		return nil, fmt.Errorf("unable create prometheus exporter: %w", err)
	}
	view.RegisterExporter(exporter)
	return exporter, nil
}

func RecordTrain(ctx context.Context, dataset string, n int64) {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyDataset, dataset)}, MTrainedSamples.M(n))
}

func RecordPredict(ctx context.Context, dataset, label string, share, latencyMs float64) {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyDataset, dataset), tag.Upsert(KeyLabel, label)},
		MPredictions.M(1), MPredictShare.M(share), MPredictMs.M(latencyMs),
	)
}

func RecordEvaluate(ctx context.Context, dataset string, latencyMs float64) {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyDataset, dataset)},
		MEvaluations.M(1), MEvaluateMs.M(latencyMs),
	)
}
