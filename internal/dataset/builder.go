package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"flight-forecast-backend/internal/model"
)

const (
	SourceHistorical = "historical"
	SourceSynthetic  = "synthetic"
)

// Dataset labeled examples plus where they came from
type Dataset struct {
	Examples []model.FareExample
	Source   string
}

// Len number of examples
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Examples)
}

// Builder assembles the training set: historical table first, synthetic
// fallback when the table is absent, unreadable or yields nothing.
type Builder struct {
	FaresPath string
	Synthetic SyntheticOptions
	Logger    *zap.Logger
}

// Build returns the dataset; ErrNoRows when neither source produced rows.
func (b *Builder) Build(ctx context.Context) (*Dataset, error) {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "dataset"))

	if b.FaresPath != "" {
		ds, err := b.historical(ctx, log)
		switch {
		case err == nil:
			log.Info("loaded historical fares", zap.String("path", b.FaresPath), zap.Int("rows", ds.Len()))
			return ds, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, os.ErrNotExist):
			log.Info("historical fare table not found, using synthetic data", zap.String("path", b.FaresPath))
		default:
			log.Warn("historical fare table unusable, using synthetic data", zap.String("path", b.FaresPath), zap.Error(err))
		}
	}

	ds, err := Synthetic(b.Synthetic)
	if err != nil {
		return nil, err
	}
	log.Info("generated synthetic fares", zap.Int("rows", ds.Len()), zap.Int64("seed", b.Synthetic.Seed))
	return ds, nil
}

func (b *Builder) historical(ctx context.Context, log *zap.Logger) (*Dataset, error) {
	if _, err := os.Stat(b.FaresPath); err != nil {
		return nil, err
	}
	records, unreadable, err := LoadFares(b.FaresPath)
	if err != nil {
		return nil, err
	}
	if unreadable > 0 {
		log.Warn("unreadable fare lines skipped", zap.String("path", b.FaresPath), zap.Int("skipped", unreadable))
	}

	examples := make([]model.FareExample, 0, len(records))
	skipped := 0
	for i, r := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ex, err := FromRecord(r)
		if err != nil {
			skipped++
			log.Warn("skip fare row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		examples = append(examples, ex)
	}
	if skipped > 0 {
		log.Warn("fare rows skipped", zap.Int("skipped", skipped), zap.Int("kept", len(examples)))
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%s: %w", b.FaresPath, ErrNoRows)
	}
	return &Dataset{Examples: examples, Source: SourceHistorical}, nil
}
