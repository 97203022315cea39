package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultDepartureTime = "10:00"
	DefaultDuration      = 2.5
	DefaultTravelClass   = "economy"
)

// Itinerary one candidate flight as supplied by a caller
type Itinerary struct {
	Airline              string  `json:"airline"`
	SourceCity           string  `json:"source_city"`
	DestinationCity      string  `json:"destination_city"`
	DepartureDate        string  `json:"departure_date"` // YYYY-MM-DD
	DepartureTime        string  `json:"departure_time"` // HH:MM
	JourneyDurationHours float64 `json:"journey_duration_hours"`
	TotalStops           int     `json:"total_stops"`
	TravelClass          string  `json:"travel_class"`
}

// Departure parses date and time in loc.
func (it Itinerary) Departure(loc *time.Location) (time.Time, error) {
	clock := strings.TrimSpace(it.DepartureTime)
	if clock == "" {
		clock = DefaultDepartureTime
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(it.DepartureDate)+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure %q %q: %w", it.DepartureDate, clock, err)
	}
	return t, nil
}

// Validate checks the fields the model cannot default.
func (it Itinerary) Validate() error {
	switch {
	case strings.TrimSpace(it.Airline) == "":
		return fmt.Errorf("airline is required")
	case strings.TrimSpace(it.SourceCity) == "":
		return fmt.Errorf("source_city is required")
	case strings.TrimSpace(it.DestinationCity) == "":
		return fmt.Errorf("destination_city is required")
	case it.JourneyDurationHours < 0:
		return fmt.Errorf("journey_duration_hours must be >= 0")
	case it.TotalStops < 0:
		return fmt.Errorf("total_stops must be >= 0")
	}
	if _, err := it.Departure(time.UTC); err != nil {
		return err
	}
	return nil
}

// ItineraryFeatures one row of model input
type ItineraryFeatures struct {
	Airline              string  `json:"airline"`
	SourceCity           string  `json:"source_city"`
	DestinationCity      string  `json:"destination_city"`
	DepartureHour        int     `json:"departure_hour"`
	DepartureDay         int     `json:"departure_day"`
	DepartureMonth       int     `json:"departure_month"`
	DepartureWeekday     int     `json:"departure_weekday"` // Monday=0
	JourneyDurationHours float64 `json:"journey_duration_hours"`
	TotalStops           int     `json:"total_stops"`
	DaysUntilDeparture   int     `json:"days_until_departure"`
	IsWeekend            bool    `json:"is_weekend"`
	IsHolidaySeason      bool    `json:"is_holiday_season"`
	RoutePopularity      bool    `json:"route_popularity"`
}

// FareExample labeled training row
type FareExample struct {
	Features ItineraryFeatures `json:"features"`
	Price    int               `json:"price"`
}

// FareRecord raw row of a historical fare table, before coercion
type FareRecord struct {
	Airline         string
	SourceCity      string
	DestinationCity string
	DepartureTime   string // Early_Morning, Morning, Afternoon, Evening, Night, Late_Night
	Stops           string // zero, one, two
	Duration        string
	DaysLeft        string
	Price           string
}
