package features

import (
	"time"

	"flight-forecast-backend/internal/holiday"
	"flight-forecast-backend/internal/model"
)

// Derive computes the time-based and route features for one departure.
// daysUntil is floored at 0.
func Derive(airline, source, destination string, departure time.Time, duration float64, stops, daysUntil int, routes []Route) model.ItineraryFeatures {
	if daysUntil < 0 {
		daysUntil = 0
	}
	return model.ItineraryFeatures{
		Airline:              airline,
		SourceCity:           source,
		DestinationCity:      destination,
		DepartureHour:        departure.Hour(),
		DepartureDay:         departure.Day(),
		DepartureMonth:       int(departure.Month()),
		DepartureWeekday:     holiday.WeekdayIndex(departure),
		JourneyDurationHours: duration,
		TotalStops:           stops,
		DaysUntilDeparture:   daysUntil,
		IsWeekend:            holiday.IsWeekend(departure),
		IsHolidaySeason:      holiday.IsHolidaySeason(departure.Month()),
		RoutePopularity:      IsPopular(routes, source, destination),
	}
}

// FromItinerary derives inference features; days until departure is counted
// from now's calendar date.
func FromItinerary(it model.Itinerary, now time.Time) (model.ItineraryFeatures, error) {
	dep, err := it.Departure(now.Location())
	if err != nil {
		return model.ItineraryFeatures{}, err
	}
	days := holiday.DaysBetween(now, dep)
	return Derive(it.Airline, it.SourceCity, it.DestinationCity, dep, it.JourneyDurationHours, it.TotalStops, days, InferencePopularRoutes), nil
}
