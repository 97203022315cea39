package model

// PredictRequest prediction request
type PredictRequest struct {
	Airline              string   `json:"airline" binding:"required"`
	SourceCity           string   `json:"source_city" binding:"required"`
	DestinationCity      string   `json:"destination_city" binding:"required"`
	DepartureDate        string   `json:"departure_date" binding:"required"`
	DepartureTime        string   `json:"departure_time"`
	JourneyDurationHours *float64 `json:"journey_duration_hours" binding:"omitempty,gte=0"`
	TotalStops           *int     `json:"total_stops" binding:"omitempty,gte=0"`
	TravelClass          string   `json:"travel_class"`
}

// Itinerary fills request defaults.
func (r PredictRequest) Itinerary() Itinerary {
	it := Itinerary{
		Airline:              r.Airline,
		SourceCity:           r.SourceCity,
		DestinationCity:      r.DestinationCity,
		DepartureDate:        r.DepartureDate,
		DepartureTime:        r.DepartureTime,
		JourneyDurationHours: DefaultDuration,
		TravelClass:          r.TravelClass,
	}
	if it.DepartureTime == "" {
		it.DepartureTime = DefaultDepartureTime
	}
	if it.TravelClass == "" {
		it.TravelClass = DefaultTravelClass
	}
	if r.JourneyDurationHours != nil {
		it.JourneyDurationHours = *r.JourneyDurationHours
	}
	if r.TotalStops != nil {
		it.TotalStops = *r.TotalStops
	}
	return it
}

// PriceRange predicted price band
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PricePrediction model output for one itinerary
type PricePrediction struct {
	PredictedPrice int        `json:"predicted_price"`
	Confidence     float64    `json:"confidence"` // dispersion proxy, clamped to [0.6, 0.95]
	PriceRange     PriceRange `json:"price_range"`
	StdDeviation   float64    `json:"std_deviation"`
}

// Factors human-readable drivers of a prediction
type Factors struct {
	AirlineImpact   string  `json:"airline_impact"`
	RoutePopularity string  `json:"route_popularity"`
	TimingImpact    string  `json:"timing_impact"`
	BookingWindow   string  `json:"booking_window"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// PredictResult prediction response
type PredictResult struct {
	Success        bool       `json:"success"`
	PredictedPrice int        `json:"predicted_price"`
	Confidence     float64    `json:"confidence"`
	PriceRange     PriceRange `json:"price_range"`
	StdDeviation   float64    `json:"std_deviation"`
	Recommendation string     `json:"recommendation"` // book_now, wait, monitor
	Factors        Factors    `json:"factors"`
}

// BatchItem one successful batch prediction
type BatchItem struct {
	Index      int             `json:"index"`
	Request    Itinerary       `json:"request"`
	Prediction PricePrediction `json:"prediction"`
}

// BatchFailure one excluded batch item
type BatchFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult batch prediction response
type BatchResult struct {
	Success     bool           `json:"success"`
	Predictions []BatchItem    `json:"predictions"`
	Failed      []BatchFailure `json:"failed,omitempty"`
	Count       int            `json:"count"`
}
