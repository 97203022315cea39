// Package metrics prometheus collectors for the fare service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flight"

var (
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Predictions served, by kind and status.",
	}, []string{"kind", "status"})

	TrendDaysSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trend_days_skipped_total",
		Help:      "Trend days dropped because inference failed.",
	})

	QuoteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_failures_total",
		Help:      "Quote provider calls or per-quote predictions that failed.",
	})

	PredictionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Latency of prediction operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	ModelMAE = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_mae",
		Help:      "Mean absolute error on the held-out split of the current model.",
	})

	ModelR2 = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_r2",
		Help:      "R squared on the held-out split of the current model.",
	})

	ModelTrainingRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_training_rows",
		Help:      "Rows in the dataset the current model was trained on.",
	})
)

// Kinds used as the kind label.
const (
	KindSingle  = "single"
	KindBatch   = "batch"
	KindTrend   = "trend"
	KindAnalyze = "analyze"
	KindCompare = "compare"
)

// ObserveModel publishes evaluation figures of a newly installed model.
func ObserveModel(mae, r2 float64, rows int) {
	ModelMAE.Set(mae)
	ModelR2.Set(r2)
	ModelTrainingRows.Set(float64(rows))
}
