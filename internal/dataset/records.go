package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"flight-forecast-backend/internal/features"
	"flight-forecast-backend/internal/model"
)

const (
	defaultDuration = 2.0
	defaultDaysLeft = 30
	defaultPrice    = 5000
	defaultHour     = 12
)

// anchorDate historical tables carry no calendar date; hour and weekday
// features are read from this fixed day.
var anchorDate = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

var bucketHours = map[string]int{
	"Early_Morning": 6,
	"Morning":       9,
	"Afternoon":     14,
	"Evening":       18,
	"Night":         21,
	"Late_Night":    23,
}

var stopCounts = map[string]int{"zero": 0, "one": 1, "two": 2}

// BucketHour representative hour for a time-of-day label; unknown labels give 12.
func BucketHour(label string) int {
	if h, ok := bucketHours[strings.TrimSpace(label)]; ok {
		return h
	}
	return defaultHour
}

// BucketForHour inverse of BucketHour for export.
func BucketForHour(h int) string {
	switch {
	case h < 8:
		return "Early_Morning"
	case h < 12:
		return "Morning"
	case h < 17:
		return "Afternoon"
	case h < 20:
		return "Evening"
	case h < 23:
		return "Night"
	default:
		return "Late_Night"
	}
}

// StopCount integer for a stop label; unknown labels give 0.
func StopCount(label string) int {
	return stopCounts[strings.ToLower(strings.TrimSpace(label))]
}

// StopLabel inverse of StopCount; counts above two export as "two".
func StopLabel(n int) string {
	switch {
	case n <= 0:
		return "zero"
	case n == 1:
		return "one"
	default:
		return "two"
	}
}

// FromRecord coerces one historical row into a training example.
func FromRecord(r model.FareRecord) (model.FareExample, error) {
	airline := strings.TrimSpace(r.Airline)
	source := strings.TrimSpace(r.SourceCity)
	destination := strings.TrimSpace(r.DestinationCity)
	if airline == "" || source == "" || destination == "" {
		return model.FareExample{}, fmt.Errorf("missing airline or city (airline=%q source=%q destination=%q)", r.Airline, r.SourceCity, r.DestinationCity)
	}

	duration := defaultDuration
	if v, ok := parseFloat(r.Duration); ok && v >= 0 {
		duration = v
	}
	daysLeft := defaultDaysLeft
	if v, ok := parseFloat(r.DaysLeft); ok {
		daysLeft = int(v)
	}
	price := defaultPrice
	if v, ok := parseFloat(r.Price); ok && v > 0 {
		price = int(v)
	}

	departure := anchorDate.Add(time.Duration(BucketHour(r.DepartureTime)) * time.Hour)
	f := features.Derive(airline, source, destination, departure, duration, StopCount(r.Stops), daysLeft, features.HistoricalPopularRoutes)
	return model.FareExample{Features: f, Price: price}, nil
}

// ToRecord renders an example in the historical table shape.
func ToRecord(ex model.FareExample) model.FareRecord {
	f := ex.Features
	return model.FareRecord{
		Airline:         f.Airline,
		SourceCity:      f.SourceCity,
		DestinationCity: f.DestinationCity,
		DepartureTime:   BucketForHour(f.DepartureHour),
		Stops:           StopLabel(f.TotalStops),
		Duration:        strconv.FormatFloat(f.JourneyDurationHours, 'f', 2, 64),
		DaysLeft:        strconv.Itoa(f.DaysUntilDeparture),
		Price:           strconv.Itoa(ex.Price),
	}
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
