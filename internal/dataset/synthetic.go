package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"flight-forecast-backend/internal/features"
	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/model"
)

const (
	DefaultSyntheticSamples = 10000
	DefaultSyntheticSeed    = 42

	basePrice     = 3000.0
	durationRate  = 200.0
	stopDiscount  = 0.15
	minimumPrice  = 1500
	noiseLow      = 0.8
	noiseHigh     = 1.2
	maxDaysAhead  = 180
	firstHour     = 5
	lastHourLimit = 23
)

// Airlines carriers drawn by the synthetic generator
var Airlines = []string{"IndiGo", "SpiceJet", "Air India", "Vistara", "AirAsia India", "Akasa Air"}

// Cities cities drawn by the synthetic generator
var Cities = []string{
	"Delhi", "Mumbai", "Bangalore", "Chennai", "Kolkata", "Hyderabad",
	"Pune", "Ahmedabad", "Kochi", "Goa", "Jaipur", "Lucknow",
}

var airlineMultiplier = map[string]float64{
	"IndiGo":        1.0,
	"SpiceJet":      0.9,
	"Air India":     1.2,
	"Vistara":       1.3,
	"AirAsia India": 0.85,
	"Akasa Air":     0.95,
}

var syntheticYearStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SyntheticOptions generator size and seed
type SyntheticOptions struct {
	Samples int
	Seed    int64
}

// FormPrice applies the synthetic price formation in fixed order: airline
// factor, duration term, stops discount, booking window, weekend, holiday
// season, popular route, noise, then the floor.
func FormPrice(airline string, duration float64, stops, daysUntil int, weekend, holidaySeason, popular bool, noise float64) int {
	price := basePrice
	if m, ok := airlineMultiplier[airline]; ok {
		price *= m
	}
	price += duration * durationRate
	price *= 1 - float64(stops)*stopDiscount

	switch {
	case daysUntil < 7:
		price *= 1.4
	case daysUntil < 30:
		price *= 1.1
	case daysUntil > 90:
		price *= 0.9
	}
	if weekend {
		price *= 1.15
	}
	if holidaySeason {
		price *= 1.2
	}
	if popular {
		price *= 0.95
	}
	price *= noise

	if p := int(price); p > minimumPrice {
		return p
	}
	return minimumPrice
}

// Synthetic draws opts.Samples examples from the hand-tuned price model.
func Synthetic(opts SyntheticOptions) (*Dataset, error) {
	if opts.Samples <= 0 {
		return nil, fmt.Errorf("synthetic generator: %w (samples=%d)", ErrNoRows, opts.Samples)
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	examples := make([]model.FareExample, 0, opts.Samples)
	for i := 0; i < opts.Samples; i++ {
		airline := Airlines[rng.Intn(len(Airlines))]
		source := Cities[rng.Intn(len(Cities))]
		destination := Cities[rng.Intn(len(Cities)-1)]
		if destination == source {
			destination = Cities[len(Cities)-1]
		}

		day := syntheticYearStart.AddDate(0, 0, rng.Intn(365))
		departure := day.Add(time.Duration(firstHour+rng.Intn(lastHourLimit-firstHour)) * time.Hour)

		duration := 1.5 + rng.Float64()*(8.0-1.5)
		stops := drawStops(rng.Float64())
		daysUntil := 1 + rng.Intn(maxDaysAhead)

		f := features.Derive(airline, source, destination, departure, duration, stops, daysUntil, features.SyntheticPopularRoutes)
		noise := noiseLow + rng.Float64()*(noiseHigh-noiseLow)
		price := FormPrice(airline, duration, stops, daysUntil, holiday.IsWeekend(departure), holiday.IsHolidaySeason(departure.Month()), f.RoutePopularity, noise)

		examples = append(examples, model.FareExample{Features: f, Price: price})
	}
	return &Dataset{Examples: examples, Source: SourceSynthetic}, nil
}

// drawStops 0: 60%, 1: 30%, 2: 10%
func drawStops(u float64) int {
	switch {
	case u < 0.6:
		return 0
	case u < 0.9:
		return 1
	default:
		return 2
	}
}
