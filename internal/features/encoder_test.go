package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-forecast-backend/internal/model"
)

func rows() []model.ItineraryFeatures {
	return []model.ItineraryFeatures{
		{Airline: "SpiceJet", SourceCity: "Delhi", DestinationCity: "Mumbai"},
		{Airline: "IndiGo", SourceCity: "Mumbai", DestinationCity: "Delhi"},
		{Airline: "SpiceJet", SourceCity: "Goa", DestinationCity: "Delhi"},
	}
}

func TestFitTransformEncounterOrder(t *testing.T) {
	enc, out := FitTransform(rows())
	require.Len(t, out, 3)

	assert.Equal(t, []string{"SpiceJet", "IndiGo"}, enc.Airline.Classes)
	assert.Equal(t, []string{"Delhi", "Mumbai", "Goa"}, enc.SourceCity.Classes)
	assert.Equal(t, []string{"Mumbai", "Delhi"}, enc.DestinationCity.Classes)

	assert.Equal(t, []int{0, 0, 0}, []int{out[0].AirlineCode, out[0].SourceCityCode, out[0].DestinationCityCode})
	assert.Equal(t, []int{1, 1, 1}, []int{out[1].AirlineCode, out[1].SourceCityCode, out[1].DestinationCityCode})
	assert.Equal(t, []int{0, 2, 1}, []int{out[2].AirlineCode, out[2].SourceCityCode, out[2].DestinationCityCode})
}

func TestTransformUnknownCategory(t *testing.T) {
	enc, _ := FitTransform(rows())
	v := enc.Transform(model.ItineraryFeatures{Airline: "Akasa Air", SourceCity: "Delhi", DestinationCity: "Srinagar"})
	assert.Equal(t, UnknownCode, v.AirlineCode)
	assert.Equal(t, 0, v.SourceCityCode)
	assert.Equal(t, UnknownCode, v.DestinationCityCode)

	var nilTable *CodeTable
	assert.Equal(t, UnknownCode, nilTable.Code("x"))
	assert.Equal(t, 0, nilTable.Len())
}

func TestTransformStable(t *testing.T) {
	enc, out := FitTransform(rows())
	for i, r := range rows() {
		assert.Equal(t, out[i].Values(), enc.Transform(r).Values())
	}
}

func TestValuesColumnOrder(t *testing.T) {
	v := EncodedFeatureVector{
		AirlineCode: 2, SourceCityCode: 1, DestinationCityCode: UnknownCode,
		Features: model.ItineraryFeatures{
			DepartureHour: 9, DepartureDay: 15, DepartureMonth: 6, DepartureWeekday: 5,
			JourneyDurationHours: 2.5, TotalStops: 1, DaysUntilDeparture: 30,
			IsWeekend: true, IsHolidaySeason: false, RoutePopularity: true,
		},
	}
	vals := v.Values()
	require.Len(t, vals, len(Columns))
	assert.Equal(t, []float64{2, 1, -1, 9, 15, 6, 5, 2.5, 1, 30, 1, 0, 1}, vals)
}

func TestEncoderJSONRestore(t *testing.T) {
	enc, _ := FitTransform(rows())
	b, err := json.Marshal(enc)
	require.NoError(t, err)

	var back Encoder
	require.NoError(t, json.Unmarshal(b, &back))
	require.NoError(t, back.Restore())
	assert.Equal(t, 1, back.Airline.Code("IndiGo"))
	assert.Equal(t, 2, back.SourceCity.Code("Goa"))
	assert.Equal(t, UnknownCode, back.DestinationCity.Code("Goa"))

	missing := Encoder{Airline: back.Airline, SourceCity: back.SourceCity}
	assert.Error(t, missing.Restore())
}

func TestCodeTableFromDuplicate(t *testing.T) {
	_, err := CodeTableFrom([]string{"a", "b", "a"})
	assert.Error(t, err)

	tbl, err := CodeTableFrom([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Code("b"))
	assert.Equal(t, 2, tbl.Len())
}
