// Package trend samples the price model across a horizon of future departure
// days for one route.
package trend

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/metrics"
	"flight-forecast-backend/internal/model"
)

// representative itinerary used for every trend day
const (
	Airline       = "IndiGo"
	DepartureTime = "10:00"
	Duration      = 2.5
	Stops         = 0

	DefaultHorizon = 30
	MaxHorizon     = 180
)

// Predictor prices an itinerary as seen from now.
type Predictor interface {
	PredictAt(it model.Itinerary, now time.Time) (model.PricePrediction, error)
}

// Generator runs per-day inference on a bounded worker pool.
type Generator struct {
	workers int
	now     func() time.Time
	logger  *zap.Logger
}

// NewGenerator workers <= 0 uses NumCPU; nil now uses time.Now.
func NewGenerator(workers int, now func() time.Time, logger *zap.Logger) *Generator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{workers: workers, now: now, logger: logger.With(zap.String("component", "trend"))}
}

// Generate returns one point per day d in 1..horizon, ascending in d. Days
// whose prediction fails are logged and left out.
func (g *Generator) Generate(ctx context.Context, p Predictor, source, destination string, horizon int) ([]model.TrendPoint, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("trend horizon must be > 0, got %d", horizon)
	}
	now := g.now()

	slots := make([]*model.TrendPoint, horizon)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for d := 1; d <= horizon; d++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			day := now.AddDate(0, 0, d)
			it := model.Itinerary{
				Airline:              Airline,
				SourceCity:           source,
				DestinationCity:      destination,
				DepartureDate:        day.Format(model.DateLayout),
				DepartureTime:        DepartureTime,
				JourneyDurationHours: Duration,
				TotalStops:           Stops,
			}
			pred, err := p.PredictAt(it, now)
			if err != nil {
				metrics.TrendDaysSkipped.Inc()
				g.logger.Warn("trend day skipped", zap.Int("days_until", d), zap.String("date", it.DepartureDate), zap.Error(err))
				return nil
			}
			slots[d-1] = &model.TrendPoint{
				Date:           it.DepartureDate,
				DaysUntil:      d,
				PredictedPrice: pred.PredictedPrice,
				DayOfWeek:      day.Weekday().String(),
				IsWeekend:      holiday.IsWeekend(day),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	points := make([]model.TrendPoint, 0, horizon)
	for _, pt := range slots {
		if pt != nil {
			points = append(points, *pt)
		}
	}
	return points, nil
}
