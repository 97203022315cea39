package predictor

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"flight-forecast-backend/internal/dataset"
)

// DatasetSource produces a training set.
type DatasetSource interface {
	Build(ctx context.Context) (*dataset.Dataset, error)
}

// Holder current model; readers take a snapshot, retrain swaps it whole
type Holder struct {
	cur atomic.Pointer[TrainedModel]
}

// Current snapshot or ErrNotTrained
func (h *Holder) Current() (*TrainedModel, error) {
	m := h.cur.Load()
	if m == nil {
		return nil, ErrNotTrained
	}
	return m, nil
}

// Set installs m.
func (h *Holder) Set(m *TrainedModel) {
	h.cur.Store(m)
}

// Ready reports whether a model is installed.
func (h *Holder) Ready() bool {
	return h.cur.Load() != nil
}

// LoadOrTrain reloads the artifacts in dir; on any failure it retrains from
// src and saves the result. trained reports which path was taken.
func LoadOrTrain(ctx context.Context, dir string, src DatasetSource, opts Options) (m *TrainedModel, trained bool, err error) {
	log := opts.logger().With(zap.String("component", "predictor"))
	if dir != "" {
		m, err = Load(dir, opts)
		if err == nil {
			log.Info("model loaded", zap.String("dir", dir), zap.String("run_id", m.runID))
			return m, false, nil
		}
		log.Info("model artifacts unusable, retraining", zap.String("dir", dir), zap.Error(err))
	}

	m, err = TrainFrom(ctx, src, opts)
	if err != nil {
		return nil, false, err
	}
	if dir != "" {
		if err := m.Save(dir); err != nil {
			log.Warn("save model failed", zap.String("dir", dir), zap.Error(err))
		}
	}
	return m, true, nil
}

// TrainFrom builds a dataset from src and trains on it.
func TrainFrom(ctx context.Context, src DatasetSource, opts Options) (*TrainedModel, error) {
	ds, err := src.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return Train(ctx, ds, opts)
}
