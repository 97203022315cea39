package advisor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/trend"
)

func points(prices ...int) []model.TrendPoint {
	out := make([]model.TrendPoint, len(prices))
	for i, p := range prices {
		out[i] = model.TrendPoint{
			Date:           fmt.Sprintf("2024-03-%02d", i+2),
			DaysUntil:      i + 1,
			PredictedPrice: p,
		}
	}
	return out
}

func TestAnalyzeTrendBands(t *testing.T) {
	pts := points(4000, 5000, 6000)
	tests := []struct {
		current    float64
		action     string
		confidence string
	}{
		{3000, ActionBookNow, "high"},
		{4200, ActionBookNow, "high"},
		{4201, ActionBookSoon, "medium"},
		{4500, ActionBookSoon, "medium"},
		{4501, ActionWaitAndWatch, "medium"},
		{5000, ActionWaitAndWatch, "medium"},
		{5400, ActionWaitAndWatch, "medium"},
		{5600, ActionWait, "high"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.current), func(t *testing.T) {
			a := AnalyzeTrend(pts, tt.current, 1)
			assert.Equal(t, tt.action, a.Action)
			assert.Equal(t, tt.confidence, a.Confidence)
			assert.NotEmpty(t, a.Recommendation)
		})
	}
}

func TestAnalyzeTrendStats(t *testing.T) {
	a := AnalyzeTrend(points(4000, 5000, 6000), 4500, 2)

	assert.Equal(t, model.CurrentVsPredicted{
		CurrentPrice: 4500, PredictedPrice: 5000, Difference: -500, PercentageDifference: -10,
	}, a.CurrentVsPredicted)
	require.NotNil(t, a.CurrentVsAverage)
	assert.Equal(t, model.CurrentVsAverage{
		CurrentPrice: 4500, AveragePrice: 5000, DifferencePercent: -10, VsMinimum: 12.5, VsMaximum: -25,
	}, *a.CurrentVsAverage)
	require.NotNil(t, a.PriceStats)
	assert.Equal(t, model.PriceStats{Min: 4000, Max: 6000, Average: 5000, Range: 2000}, *a.PriceStats)
	assert.Equal(t, DirectionStable, a.TrendDirection)

	require.Len(t, a.BestBookingDays, 3)
	assert.Equal(t, []int{4000, 5000, 6000}, []int{a.BestBookingDays[0].Price, a.BestBookingDays[1].Price, a.BestBookingDays[2].Price})
	assert.Len(t, a.TrendData, 3)
}

func TestAnalyzeTrendWindows(t *testing.T) {
	prices := make([]int, 30)
	for i := range prices {
		prices[i] = 9000 - i*100
	}
	a := AnalyzeTrend(points(prices...), 6000, 30)

	assert.Len(t, a.TrendData, 14)
	require.Len(t, a.BestBookingDays, 5)
	assert.Equal(t, 30, a.BestBookingDays[0].DaysUntil)
	assert.Equal(t, 26, a.BestBookingDays[4].DaysUntil)
	assert.Equal(t, 6100, a.CurrentVsPredicted.PredictedPrice)
	assert.Equal(t, DirectionDecreasing, a.TrendDirection)
}

func TestAnalyzeTrendClosestDayTie(t *testing.T) {
	pts := []model.TrendPoint{
		{DaysUntil: 1, PredictedPrice: 5000},
		{DaysUntil: 3, PredictedPrice: 7000},
	}
	assert.Equal(t, 5000, AnalyzeTrend(pts, 5000, 2).CurrentVsPredicted.PredictedPrice)
	assert.Equal(t, 5000, AnalyzeTrend(pts, 5000, 0).CurrentVsPredicted.PredictedPrice)
	assert.Equal(t, 7000, AnalyzeTrend(pts, 5000, 90).CurrentVsPredicted.PredictedPrice)
}

func TestAnalyzeTrendEmpty(t *testing.T) {
	a := AnalyzeTrend(nil, 4321.9, 5)
	assert.Equal(t, "Unable to analyze trend", a.Recommendation)
	assert.Equal(t, "low", a.Confidence)
	assert.Equal(t, ActionBookNow, a.Action)
	assert.Equal(t, 4321, a.CurrentVsPredicted.PredictedPrice)
	assert.Nil(t, a.CurrentVsAverage)
	assert.Nil(t, a.PriceStats)
	assert.NotNil(t, a.BestBookingDays)
	assert.NotNil(t, a.TrendData)
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDirection(t *testing.T) {
	assert.Equal(t, DirectionStable, Direction(nil))
	assert.Equal(t, DirectionStable, Direction(repeat(100, 7)))
	assert.Equal(t, DirectionIncreasing, Direction(append(repeat(100, 7), repeat(106, 7)...)))
	assert.Equal(t, DirectionDecreasing, Direction(append(repeat(100, 7), repeat(94, 7)...)))
	assert.Equal(t, DirectionStable, Direction(append(repeat(100, 7), 104)))
	assert.Equal(t, DirectionIncreasing, Direction(append(repeat(100, 7), 110)))

	long := append(repeat(100, 14), repeat(1000, 10)...)
	assert.Equal(t, DirectionStable, Direction(long))
}

type stubTrends struct {
	pts     []model.TrendPoint
	horizon int
}

func (s *stubTrends) Generate(_ context.Context, _ trend.Predictor, _, _ string, horizon int) ([]model.TrendPoint, error) {
	s.horizon = horizon
	return s.pts, nil
}

func TestAdvisorAnalyzeDepartureDate(t *testing.T) {
	now := time.Date(2024, time.March, 1, 15, 0, 0, 0, time.UTC)
	st := &stubTrends{pts: points(4000, 5000, 6000)}
	a := New(st, func() time.Time { return now })

	got, err := a.Analyze(context.Background(), nil, 4500, "Delhi", "Mumbai", "2024-03-03")
	require.NoError(t, err)
	assert.Equal(t, AnalysisHorizon, st.horizon)
	assert.Equal(t, 5000, got.CurrentVsPredicted.PredictedPrice)

	for _, date := range []string{"", "not-a-date", "2024-02-01"} {
		got, err = a.Analyze(context.Background(), nil, 4500, "Delhi", "Mumbai", date)
		require.NoError(t, err)
		assert.Equal(t, 4000, got.CurrentVsPredicted.PredictedPrice, date)
	}
}
