package advisor

import (
	"strings"
	"time"

	"flight-forecast-backend/internal/features"
	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/model"
)

const (
	RecommendBookNow = "book_now"
	RecommendWait    = "wait"
	RecommendMonitor = "monitor"

	lowPriceThreshold  = 4000
	highConfidence     = 0.8
	lastMinuteDays     = 7
	earlyBookingDays   = 60
	shortWindowDays    = 30
	optimalWindowStart = 30
)

// Recommend derives book_now / wait / monitor from one prediction. The
// last-minute check wins over the price check.
func Recommend(p model.PricePrediction, daysUntil int) string {
	switch {
	case daysUntil < lastMinuteDays:
		return RecommendBookNow
	case p.PredictedPrice < lowPriceThreshold && p.Confidence > highConfidence:
		return RecommendBookNow
	case daysUntil > earlyBookingDays:
		return RecommendWait
	default:
		return RecommendMonitor
	}
}

var airlineImpact = map[string]string{
	"IndiGo":        "Budget airline with competitive pricing",
	"SpiceJet":      "Low-cost carrier offering good value",
	"Air India":     "Full-service airline with premium pricing",
	"Vistara":       "Premium airline with higher service standards",
	"AirAsia India": "Ultra-low-cost carrier with basic pricing",
	"Akasa Air":     "New airline with competitive introductory pricing",
}

// Explain describes the main drivers of a prediction for departure dep,
// booked daysUntil days ahead.
func Explain(it model.Itinerary, dep time.Time, daysUntil int, p model.PricePrediction) model.Factors {
	return model.Factors{
		AirlineImpact:   AirlineImpact(it.Airline),
		RoutePopularity: RouteImpact(it.SourceCity, it.DestinationCity),
		TimingImpact:    TimingImpact(dep),
		BookingWindow:   BookingWindow(daysUntil),
		ConfidenceLevel: p.Confidence,
	}
}

// AirlineImpact fixed text per known carrier.
func AirlineImpact(airline string) string {
	if s, ok := airlineImpact[airline]; ok {
		return s
	}
	return "Standard airline pricing"
}

// RouteImpact uses the inference popular-route list.
func RouteImpact(source, destination string) string {
	if features.IsPopular(features.InferencePopularRoutes, source, destination) {
		return "Popular route with high competition leading to better prices"
	}
	return "Less popular route with limited competition"
}

// TimingImpact departure hour, weekend and season notes joined by "; ".
func TimingImpact(dep time.Time) string {
	var notes []string
	switch h := dep.Hour(); {
	case h >= 6 && h < 9:
		notes = append(notes, "Early morning departure offers lower prices")
	case h >= 18 && h < 21:
		notes = append(notes, "Peak evening hours increase demand")
	}
	if holiday.IsWeekend(dep) {
		notes = append(notes, "Weekend travel increases demand and prices")
	}
	if holiday.IsHolidaySeason(dep.Month()) {
		notes = append(notes, "Holiday season affects pricing")
	}
	if len(notes) == 0 {
		return "Standard timing with neutral impact"
	}
	return strings.Join(notes, "; ")
}

// BookingWindow text for the number of days before departure.
func BookingWindow(daysUntil int) string {
	switch {
	case daysUntil < lastMinuteDays:
		return "Last-minute booking premium applies"
	case daysUntil < shortWindowDays:
		return "Short booking window may result in higher prices"
	case daysUntil >= optimalWindowStart && daysUntil <= earlyBookingDays:
		return "Optimal booking window for best prices"
	default:
		return "Early booking - prices may fluctuate"
	}
}
