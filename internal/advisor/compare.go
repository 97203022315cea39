package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"flight-forecast-backend/internal/metrics"
	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/internal/trend"
)

const (
	LabelGreatDeal  = "great_deal"
	LabelFairPrice  = "fair_price"
	LabelOverpriced = "overpriced"

	dealThreshold = 10.0
)

// quote departure/arrival layout
const quoteTimeLayout = model.DateLayout + " " + model.TimeLayout

// Compare prices every quote with the model. Quotes that cannot be priced are
// logged and left out of ml_predictions; they stay in realtime_flights.
func Compare(p trend.Predictor, quotes []model.Quote, now time.Time, trendDirection string, logger *zap.Logger) model.Comparison {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := model.Comparison{
		Success:         true,
		RealtimeFlights: quotes,
		MLPredictions:   []model.QuotePrediction{},
		Recommendations: []string{},
		Sources:         sources(quotes),
	}
	if out.RealtimeFlights == nil {
		out.RealtimeFlights = []model.Quote{}
	}

	var sumCurrent, sumPredicted float64
	bestPct := math.Inf(1)
	for i, q := range quotes {
		if i == 0 {
			out.PriceAnalysis.PriceRange = model.PriceRange{Min: q.Price, Max: q.Price}
		}
		out.PriceAnalysis.PriceRange.Min = min(out.PriceAnalysis.PriceRange.Min, q.Price)
		out.PriceAnalysis.PriceRange.Max = max(out.PriceAnalysis.PriceRange.Max, q.Price)
		sumCurrent += float64(q.Price)

		it, err := QuoteItinerary(q)
		if err == nil {
			var pred model.PricePrediction
			pred, err = p.PredictAt(it, now)
			if err == nil {
				qp := quotePrediction(q, pred)
				out.MLPredictions = append(out.MLPredictions, qp)
				sumPredicted += float64(pred.PredictedPrice)
				if qp.PercentageDifference < bestPct {
					bestPct = qp.PercentageDifference
					out.PriceAnalysis.BestDealFlightID = q.ID
				}
				continue
			}
		}
		metrics.QuoteFailures.Inc()
		logger.Warn("quote prediction failed", zap.String("flight_id", q.ID), zap.String("source", q.Source), zap.Error(err))
	}

	if len(quotes) > 0 {
		out.PriceAnalysis.AvgCurrentPrice = int(math.Round(sumCurrent / float64(len(quotes))))
	}
	if n := len(out.MLPredictions); n > 0 {
		out.PriceAnalysis.AvgPredictedPrice = int(math.Round(sumPredicted / float64(n)))
	}
	out.PriceAnalysis.PriceTrend = trendDirection
	out.Recommendations = recommendations(out.MLPredictions, trendDirection)
	return out
}

// QuoteItinerary maps a quote onto a model itinerary.
func QuoteItinerary(q model.Quote) (model.Itinerary, error) {
	dep, err := time.Parse(quoteTimeLayout, strings.TrimSpace(q.DepartureTime))
	if err != nil {
		return model.Itinerary{}, fmt.Errorf("invalid departure_time %q: %w", q.DepartureTime, err)
	}
	hours := model.DefaultDuration
	if d, err := time.ParseDuration(strings.TrimSpace(q.Duration)); err == nil && d > 0 {
		hours = d.Hours()
	}
	it := model.Itinerary{
		Airline:              q.Airline,
		SourceCity:           q.Origin,
		DestinationCity:      q.Destination,
		DepartureDate:        dep.Format(model.DateLayout),
		DepartureTime:        dep.Format(model.TimeLayout),
		JourneyDurationHours: hours,
		TotalStops:           max(q.Stops, 0),
		TravelClass:          model.DefaultTravelClass,
	}
	return it, it.Validate()
}

func quotePrediction(q model.Quote, pred model.PricePrediction) model.QuotePrediction {
	diff := q.Price - pred.PredictedPrice
	pct := round1(float64(diff) / float64(max(pred.PredictedPrice, 1)) * 100)
	return model.QuotePrediction{
		FlightID:             q.ID,
		PredictedPrice:       pred.PredictedPrice,
		Confidence:           pred.Confidence,
		PriceDifference:      diff,
		PercentageDifference: pct,
		Recommendation:       Label(pct),
	}
}

// Label great_deal at or below -10%, overpriced at or above +10%.
func Label(pct float64) string {
	switch {
	case pct <= -dealThreshold:
		return LabelGreatDeal
	case pct >= dealThreshold:
		return LabelOverpriced
	default:
		return LabelFairPrice
	}
}

func recommendations(preds []model.QuotePrediction, direction string) []string {
	counts := map[string]int{}
	for _, p := range preds {
		counts[p.Recommendation]++
	}
	var out []string
	if n := counts[LabelGreatDeal]; n > 0 {
		out = append(out, fmt.Sprintf("%d flight(s) priced well below the predicted fare - good time to book", n))
	}
	if n := counts[LabelOverpriced]; n > 0 {
		out = append(out, fmt.Sprintf("%d flight(s) priced above the predicted fare", n))
	}
	switch direction {
	case DirectionIncreasing:
		out = append(out, "Prices on this route are expected to rise; booking early is advised")
	case DirectionDecreasing:
		out = append(out, "Prices on this route are expected to fall; waiting may pay off")
	}
	if len(out) == 0 {
		out = append(out, "Current prices are in line with predictions")
	}
	return out
}

func sources(quotes []model.Quote) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, q := range quotes {
		if q.Source != "" && !seen[q.Source] {
			seen[q.Source] = true
			out = append(out, q.Source)
		}
	}
	return out
}
