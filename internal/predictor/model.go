package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/dataset"
	"flight-forecast-backend/internal/features"
	"flight-forecast-backend/internal/forest"
	"flight-forecast-backend/internal/model"
)

var (
	ErrNotTrained       = errors.New("price model is not trained")
	ErrArtifactMismatch = errors.New("model artifacts come from different training runs")
)

const (
	minConfidence = 0.6
	maxConfidence = 0.95
	rangeLow      = 0.85
	rangeHigh     = 1.15

	DefaultTestFraction = 0.2
)

// Options training configuration
type Options struct {
	Trees        int
	MaxDepth     int
	Seed         *int64 // nil uses the forest default
	TestFraction float64
	Workers      int
	Now          func() time.Time
	Logger       *zap.Logger
}

func (o Options) params() forest.Params {
	p := forest.DefaultParams()
	if o.Trees > 0 {
		p.Trees = o.Trees
	}
	if o.MaxDepth > 0 {
		p.MaxDepth = o.MaxDepth
	}
	if o.Seed != nil {
		p.Seed = *o.Seed
	}
	p.Workers = o.Workers
	return p
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Evaluation held-out scores recorded at training time
type Evaluation struct {
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// Info model summary
type Info struct {
	RunID     string     `json:"run_id"`
	TrainedAt time.Time  `json:"trained_at"`
	Source    string     `json:"data_source"`
	Rows      int        `json:"training_rows"`
	Trees     int        `json:"trees"`
	MaxDepth  int        `json:"max_depth"`
	Eval      Evaluation `json:"evaluation"`
}

// TrainedModel ensemble, code tables and scaler from one training run.
// Immutable once built; safe for concurrent Predict calls.
type TrainedModel struct {
	runID     string
	trainedAt time.Time
	source    string
	rows      int
	forest    *forest.Forest
	encoder   *features.Encoder
	scaler    *forest.StandardScaler
	eval      Evaluation
	now       func() time.Time
}

// Train fits the scaler over the full encoded table, then the forest on the
// training side of the split, and scores the held-out side.
func Train(ctx context.Context, ds *dataset.Dataset, opts Options) (*TrainedModel, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("train: %w", dataset.ErrNoRows)
	}
	log := opts.logger().With(zap.String("component", "predictor"))
	start := time.Now()

	rows := make([]model.ItineraryFeatures, len(ds.Examples))
	y := make([]float64, len(ds.Examples))
	for i, ex := range ds.Examples {
		rows[i] = ex.Features
		y[i] = float64(ex.Price)
	}
	enc, encoded := features.FitTransform(rows)
	X := make([][]float64, len(encoded))
	for i, v := range encoded {
		X[i] = v.Values()
	}
	scaler, err := forest.FitScaler(X)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	Xs, err := scaler.TransformAll(X)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	p := opts.params()
	frac := opts.TestFraction
	if frac <= 0 || frac >= 1 {
		frac = DefaultTestFraction
	}
	trainIdx, testIdx := forest.TrainTestSplit(len(Xs), frac, p.Seed)

	trainX, trainY := pick(Xs, y, trainIdx)
	f, err := forest.Fit(ctx, trainX, trainY, p)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	eval := Evaluation{TrainRows: len(trainIdx), TestRows: len(testIdx)}
	if len(testIdx) > 0 {
		testX, testY := pick(Xs, y, testIdx)
		yhat := make([]float64, len(testX))
		for i, x := range testX {
			yhat[i] = f.Predict(x)
		}
		eval.MAE = forest.MeanAbsoluteError(testY, yhat)
		eval.R2 = forest.R2Score(testY, yhat)
	}

	m := &TrainedModel{
		runID:     uuid.NewString(),
		trainedAt: opts.clock()().UTC(),
		source:    ds.Source,
		rows:      ds.Len(),
		forest:    f,
		encoder:   enc,
		scaler:    scaler,
		eval:      eval,
		now:       opts.clock(),
	}
	log.Info("model trained",
		zap.String("run_id", m.runID),
		zap.String("source", ds.Source),
		zap.Int("rows", ds.Len()),
		zap.Int("trees", p.Trees),
		zap.Float64("mae", eval.MAE),
		zap.Float64("r2", eval.R2),
		zap.Duration("took", time.Since(start)),
	)
	return m, nil
}

func pick(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	px := make([][]float64, len(idx))
	py := make([]float64, len(idx))
	for i, j := range idx {
		px[i] = X[j]
		py[i] = y[j]
	}
	return px, py
}

// Predict prices it with days-until-departure counted from the model clock.
func (m *TrainedModel) Predict(it model.Itinerary) (model.PricePrediction, error) {
	if m == nil {
		return model.PricePrediction{}, ErrNotTrained
	}
	return m.PredictAt(it, m.now())
}

// PredictAt prices it as seen from now.
//
// Confidence is 1 - std/mean over the per-tree predictions, clamped to
// [0.6, 0.95]. It measures how much the trees disagree; it is not a
// calibrated probability.
func (m *TrainedModel) PredictAt(it model.Itinerary, now time.Time) (model.PricePrediction, error) {
	if m == nil || m.forest == nil {
		return model.PricePrediction{}, ErrNotTrained
	}
	f, err := features.FromItinerary(it, now)
	if err != nil {
		return model.PricePrediction{}, err
	}
	x, err := m.scaler.Transform(m.encoder.Transform(f).Values())
	if err != nil {
		return model.PricePrediction{}, err
	}

	mean, std := forest.MeanStd(m.forest.Members(x))
	price := int(mean)
	return model.PricePrediction{
		PredictedPrice: price,
		Confidence:     confidence(mean, std),
		PriceRange: model.PriceRange{
			Min: int(math.Round(float64(price) * rangeLow)),
			Max: int(math.Round(float64(price) * rangeHigh)),
		},
		StdDeviation: std,
	}, nil
}

func confidence(mean, std float64) float64 {
	if mean <= 0 || math.IsNaN(mean) || math.IsNaN(std) {
		return minConfidence
	}
	c := 1 - std/mean
	return math.Min(math.Max(c, minConfidence), maxConfidence)
}

// Now model clock
func (m *TrainedModel) Now() time.Time {
	return m.now()
}

// RunID training run identifier shared by the three artifacts
func (m *TrainedModel) RunID() string {
	if m == nil {
		return ""
	}
	return m.runID
}

// Airlines known to the encoder, in code order
func (m *TrainedModel) Airlines() []string {
	return append([]string(nil), m.encoder.Airline.Classes...)
}

// Cities union of source and destination classes, in first-seen order
func (m *TrainedModel) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range []*features.CodeTable{m.encoder.SourceCity, m.encoder.DestinationCity} {
		for _, c := range t.Classes {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Info summary for the model endpoint
func (m *TrainedModel) Info() Info {
	return Info{
		RunID:     m.runID,
		TrainedAt: m.trainedAt,
		Source:    m.source,
		Rows:      m.rows,
		Trees:     len(m.forest.Trees),
		MaxDepth:  m.forest.Params.MaxDepth,
		Eval:      m.eval,
	}
}
