package predictor

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-forecast-backend/internal/dataset"
	"flight-forecast-backend/internal/forest"
	"flight-forecast-backend/internal/model"
)

var testNow = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{Trees: 10, MaxDepth: 8, Workers: 2, Now: func() time.Time { return testNow }}
}

type staticSource struct {
	ds    *dataset.Dataset
	err   error
	calls int
}

func (s *staticSource) Build(context.Context) (*dataset.Dataset, error) {
	s.calls++
	return s.ds, s.err
}

func syntheticSource(t *testing.T) *staticSource {
	t.Helper()
	ds, err := dataset.Synthetic(dataset.SyntheticOptions{Samples: 800, Seed: 42})
	require.NoError(t, err)
	return &staticSource{ds: ds}
}

func trainSmall(t *testing.T) *TrainedModel {
	t.Helper()
	m, err := Train(context.Background(), syntheticSource(t).ds, testOptions())
	require.NoError(t, err)
	return m
}

func delhiMumbai(date string) model.Itinerary {
	return model.Itinerary{
		Airline: "IndiGo", SourceCity: "Delhi", DestinationCity: "Mumbai",
		DepartureDate: date, DepartureTime: "10:00", JourneyDurationHours: 2.5,
	}
}

func TestTrainInfo(t *testing.T) {
	m := trainSmall(t)
	info := m.Info()
	assert.NotEmpty(t, info.RunID)
	assert.Equal(t, dataset.SourceSynthetic, info.Source)
	assert.Equal(t, 800, info.Rows)
	assert.Equal(t, 10, info.Trees)
	assert.Equal(t, 8, info.MaxDepth)
	assert.Equal(t, 640, info.Eval.TrainRows)
	assert.Equal(t, 160, info.Eval.TestRows)
	assert.Greater(t, info.Eval.MAE, 0.0)
	assert.Equal(t, testNow, info.TrainedAt)
	assert.Contains(t, m.Airlines(), "IndiGo")
	assert.Contains(t, m.Cities(), "Lucknow")
}

func TestOptionsSeed(t *testing.T) {
	assert.Equal(t, forest.DefaultParams().Seed, Options{}.params().Seed)
	zero := int64(0)
	assert.Equal(t, int64(0), Options{Seed: &zero}.params().Seed)
	seven := int64(7)
	p := Options{Trees: 3, Seed: &seven}.params()
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, 3, p.Trees)
}

func TestTrainEmpty(t *testing.T) {
	_, err := Train(context.Background(), &dataset.Dataset{}, testOptions())
	assert.ErrorIs(t, err, dataset.ErrNoRows)
}

func TestPredictProperties(t *testing.T) {
	m := trainSmall(t)

	p, err := m.Predict(delhiMumbai("2024-03-07"))
	require.NoError(t, err)
	assert.Greater(t, p.PredictedPrice, 0)
	assert.GreaterOrEqual(t, p.Confidence, 0.6)
	assert.LessOrEqual(t, p.Confidence, 0.95)
	assert.GreaterOrEqual(t, p.StdDeviation, 0.0)
	assert.Equal(t, int(math.Round(float64(p.PredictedPrice)*0.85)), p.PriceRange.Min)
	assert.Equal(t, int(math.Round(float64(p.PredictedPrice)*1.15)), p.PriceRange.Max)

	again, err := m.Predict(delhiMumbai("2024-03-07"))
	require.NoError(t, err)
	assert.Equal(t, p, again)

	at, err := m.PredictAt(delhiMumbai("2024-03-07"), testNow)
	require.NoError(t, err)
	assert.Equal(t, p, at)
}

func TestPredictUnseenCategories(t *testing.T) {
	m := trainSmall(t)
	it := delhiMumbai("2024-04-01")
	it.Airline = "Star Air"
	it.SourceCity = "Hubli"

	p, err := m.Predict(it)
	require.NoError(t, err)
	assert.Greater(t, p.PredictedPrice, 0)
}

func TestPredictBadDate(t *testing.T) {
	m := trainSmall(t)
	_, err := m.Predict(delhiMumbai("07/03/2024"))
	assert.Error(t, err)
}

func TestPredictNilModel(t *testing.T) {
	var m *TrainedModel
	_, err := m.Predict(delhiMumbai("2024-03-07"))
	assert.ErrorIs(t, err, ErrNotTrained)
	assert.Empty(t, m.RunID())
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, 0.6, confidence(0, 10))
	assert.Equal(t, 0.6, confidence(-5, 1))
	assert.Equal(t, 0.6, confidence(math.NaN(), 1))
	assert.Equal(t, 0.95, confidence(5000, 0))
	assert.Equal(t, 0.6, confidence(5000, 4000))
	assert.InDelta(t, 0.7, confidence(5000, 1500), 1e-9)
}

func TestHolder(t *testing.T) {
	var h Holder
	assert.False(t, h.Ready())
	_, err := h.Current()
	assert.ErrorIs(t, err, ErrNotTrained)

	m := trainSmall(t)
	h.Set(m)
	assert.True(t, h.Ready())
	cur, err := h.Current()
	require.NoError(t, err)
	assert.Same(t, m, cur)
}
