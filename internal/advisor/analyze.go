// Package advisor turns predictions and trend series into booking advice.
package advisor

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/trend"
)

// analysis horizon and windows
const (
	AnalysisHorizon = 30
	recentWindow    = 7
	laterWindow     = 14
	bestDaysCount   = 5
	trendDataCount  = 14
)

const (
	ActionBookNow      = "book_now"
	ActionBookSoon     = "book_soon"
	ActionWaitAndWatch = "wait_and_watch"
	ActionWait         = "wait"

	DirectionIncreasing = "increasing"
	DirectionDecreasing = "decreasing"
	DirectionStable     = "stable"
)

// TrendSource produces a route trend.
type TrendSource interface {
	Generate(ctx context.Context, p trend.Predictor, source, destination string, horizon int) ([]model.TrendPoint, error)
}

// Advisor analyzes offers against the model's trend for a route.
type Advisor struct {
	trends TrendSource
	now    func() time.Time
}

// New nil now uses time.Now.
func New(trends TrendSource, now func() time.Time) *Advisor {
	if now == nil {
		now = time.Now
	}
	return &Advisor{trends: trends, now: now}
}

// Analyze compares currentPrice with a 30-day trend for the route. An
// unparsable or empty departureDate counts as today.
func (a *Advisor) Analyze(ctx context.Context, p trend.Predictor, currentPrice float64, source, destination, departureDate string) (model.Analysis, error) {
	points, err := a.trends.Generate(ctx, p, source, destination, AnalysisHorizon)
	if err != nil {
		return model.Analysis{}, err
	}
	now := a.now()
	days := 0
	if dep, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(departureDate), now.Location()); err == nil {
		days = max(holiday.DaysBetween(now, dep), 0)
	}
	return AnalyzeTrend(points, currentPrice, days), nil
}

// AnalyzeTrend classifies currentPrice against points. Band checks run in
// order and are inclusive: <= min*1.05, <= avg*0.9, <= avg*1.1, else wait.
func AnalyzeTrend(points []model.TrendPoint, currentPrice float64, daysUntil int) model.Analysis {
	if len(points) == 0 {
		return model.Analysis{
			Recommendation: "Unable to analyze trend",
			Confidence:     "low",
			Action:         ActionBookNow,
			CurrentVsPredicted: model.CurrentVsPredicted{
				CurrentPrice:   currentPrice,
				PredictedPrice: int(currentPrice),
			},
			TrendDirection:  DirectionStable,
			BestBookingDays: []model.BookingDay{},
			TrendData:       []model.TrendPoint{},
		}
	}

	prices := make([]float64, len(points))
	minP, maxP := points[0].PredictedPrice, points[0].PredictedPrice
	for i, pt := range points {
		prices[i] = float64(pt.PredictedPrice)
		minP = min(minP, pt.PredictedPrice)
		maxP = max(maxP, pt.PredictedPrice)
	}
	avg := mean(prices)

	closest := points[0]
	bestDelta := math.MaxInt
	for _, pt := range points {
		if d := absInt(pt.DaysUntil - daysUntil); d < bestDelta {
			bestDelta = d
			closest = pt
		}
	}
	predicted := closest.PredictedPrice

	out := model.Analysis{
		CurrentVsPredicted: model.CurrentVsPredicted{
			CurrentPrice:         currentPrice,
			PredictedPrice:       predicted,
			Difference:           int(currentPrice - float64(predicted)),
			PercentageDifference: percent(currentPrice, float64(max(predicted, 1))),
		},
		CurrentVsAverage: &model.CurrentVsAverage{
			CurrentPrice:      currentPrice,
			AveragePrice:      int(math.Round(avg)),
			DifferencePercent: percent(currentPrice, avg),
			VsMinimum:         percent(currentPrice, float64(minP)),
			VsMaximum:         percent(currentPrice, float64(maxP)),
		},
		TrendDirection:  Direction(prices),
		BestBookingDays: bestDays(points),
		TrendData:       append([]model.TrendPoint(nil), points[:min(trendDataCount, len(points))]...),
		PriceStats: &model.PriceStats{
			Min:     minP,
			Max:     maxP,
			Average: int(math.Round(avg)),
			Range:   maxP - minP,
		},
	}

	switch {
	case currentPrice <= float64(minP)*1.05:
		out.Action, out.Confidence = ActionBookNow, "high"
		out.Recommendation = "Excellent deal! Book immediately - this is close to the lowest predicted price."
	case currentPrice <= avg*0.9:
		out.Action, out.Confidence = ActionBookSoon, "medium"
		out.Recommendation = "Good deal! Consider booking - price is below average."
	case currentPrice <= avg*1.1:
		out.Action, out.Confidence = ActionWaitAndWatch, "medium"
		out.Recommendation = "Average price. You might find slightly better deals by waiting."
	default:
		out.Action, out.Confidence = ActionWait, "high"
		out.Recommendation = "Price is above average. Consider waiting for better deals."
	}
	return out
}

// Direction compares the mean of the first 7 prices with the mean of the
// next 7 (or everything after the first 7 when there are at most 14).
// Fewer than 8 prices is always stable.
func Direction(prices []float64) string {
	if len(prices) <= recentWindow {
		return DirectionStable
	}
	recent := prices[:recentWindow]
	later := prices[recentWindow:]
	if len(prices) > laterWindow {
		later = prices[recentWindow:laterWindow]
	}
	r, l := mean(recent), mean(later)
	switch {
	case l > r*1.05:
		return DirectionIncreasing
	case l < r*0.95:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

func bestDays(points []model.TrendPoint) []model.BookingDay {
	sorted := append([]model.TrendPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PredictedPrice < sorted[j].PredictedPrice
	})
	n := min(bestDaysCount, len(sorted))
	out := make([]model.BookingDay, n)
	for i := 0; i < n; i++ {
		pt := sorted[i]
		out[i] = model.BookingDay{Date: pt.Date, Price: pt.PredictedPrice, DaysUntil: pt.DaysUntil, DayOfWeek: pt.DayOfWeek}
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

// percent (cur-ref)/ref*100 rounded to one decimal; 0 when ref <= 0
func percent(cur, ref float64) float64 {
	if ref <= 0 {
		return 0
	}
	return round1((cur - ref) / ref * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
