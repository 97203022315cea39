package features

import (
	"fmt"

	"flight-forecast-backend/internal/model"
)

// UnknownCode sentinel for categories not seen during fit
const UnknownCode = -1

// Columns model input order
var Columns = []string{
	"airline_encoded", "source_city_encoded", "destination_city_encoded",
	"departure_hour", "departure_day", "departure_month", "departure_weekday",
	"journey_duration_hours", "total_stops", "days_until_departure",
	"is_weekend", "is_holiday_season", "route_popularity",
}

// CodeTable category -> code, codes assigned in encounter order
type CodeTable struct {
	Classes []string       `json:"classes"`
	codes   map[string]int
}

func newCodeTable() *CodeTable {
	return &CodeTable{codes: map[string]int{}}
}

// CodeTableFrom rebuilds a table from its ordered classes.
func CodeTableFrom(classes []string) (*CodeTable, error) {
	t := newCodeTable()
	for _, c := range classes {
		if _, dup := t.codes[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		t.add(c)
	}
	return t, nil
}

func (t *CodeTable) add(v string) int {
	if code, ok := t.codes[v]; ok {
		return code
	}
	code := len(t.Classes)
	t.codes[v] = code
	t.Classes = append(t.Classes, v)
	return code
}

// Code returns the fitted code or UnknownCode.
func (t *CodeTable) Code(v string) int {
	if t == nil {
		return UnknownCode
	}
	if code, ok := t.codes[v]; ok {
		return code
	}
	return UnknownCode
}

// Len number of known classes
func (t *CodeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Classes)
}

// EncodedFeatureVector features with categorical codes in place of names
type EncodedFeatureVector struct {
	AirlineCode         int
	SourceCityCode      int
	DestinationCityCode int
	Features            model.ItineraryFeatures
}

// Values flattens the vector in Columns order.
func (v EncodedFeatureVector) Values() []float64 {
	f := v.Features
	return []float64{
		float64(v.AirlineCode),
		float64(v.SourceCityCode),
		float64(v.DestinationCityCode),
		float64(f.DepartureHour),
		float64(f.DepartureDay),
		float64(f.DepartureMonth),
		float64(f.DepartureWeekday),
		f.JourneyDurationHours,
		float64(f.TotalStops),
		float64(f.DaysUntilDeparture),
		boolFloat(f.IsWeekend),
		boolFloat(f.IsHolidaySeason),
		boolFloat(f.RoutePopularity),
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Encoder independent code tables for airline, source and destination.
// Read-only after FitTransform, so Transform is safe for concurrent use.
type Encoder struct {
	Airline         *CodeTable `json:"airline"`
	SourceCity      *CodeTable `json:"source_city"`
	DestinationCity *CodeTable `json:"destination_city"`
}

// FitTransform builds fresh tables from rows and encodes them.
func FitTransform(rows []model.ItineraryFeatures) (*Encoder, []EncodedFeatureVector) {
	e := &Encoder{
		Airline:         newCodeTable(),
		SourceCity:      newCodeTable(),
		DestinationCity: newCodeTable(),
	}
	out := make([]EncodedFeatureVector, len(rows))
	for i, r := range rows {
		out[i] = EncodedFeatureVector{
			AirlineCode:         e.Airline.add(r.Airline),
			SourceCityCode:      e.SourceCity.add(r.SourceCity),
			DestinationCityCode: e.DestinationCity.add(r.DestinationCity),
			Features:            r,
		}
	}
	return e, out
}

// Transform applies the fitted tables; unseen values map to UnknownCode.
func (e *Encoder) Transform(f model.ItineraryFeatures) EncodedFeatureVector {
	return EncodedFeatureVector{
		AirlineCode:         e.Airline.Code(f.Airline),
		SourceCityCode:      e.SourceCity.Code(f.SourceCity),
		DestinationCityCode: e.DestinationCity.Code(f.DestinationCity),
		Features:            f,
	}
}

// Restore rebuilds the lookup maps after decoding from JSON.
func (e *Encoder) Restore() error {
	for name, t := range map[string]**CodeTable{
		"airline":          &e.Airline,
		"source_city":      &e.SourceCity,
		"destination_city": &e.DestinationCity,
	} {
		if *t == nil {
			return fmt.Errorf("missing code table %s", name)
		}
		rebuilt, err := CodeTableFrom((*t).Classes)
		if err != nil {
			return fmt.Errorf("code table %s: %w", name, err)
		}
		*t = rebuilt
	}
	return nil
}
