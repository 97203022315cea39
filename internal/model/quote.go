package model

import "time"

// Quote live itinerary offer from a quote source
type Quote struct {
	ID            string    `json:"id"`
	Airline       string    `json:"airline"`
	FlightNumber  string    `json:"flight_number"`
	DepartureTime string    `json:"departure_time"` // YYYY-MM-DD HH:MM
	ArrivalTime   string    `json:"arrival_time"`
	Duration      string    `json:"duration"` // 2h45m
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Price         int       `json:"price"`
	Currency      string    `json:"currency"`
	Stops         int       `json:"stops"`
	Source        string    `json:"source"`
	ScrapedAt     time.Time `json:"scraped_at"`
	BookingURL    string    `json:"booking_url,omitempty"`
}

// CompareRequest live quote comparison request
type CompareRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date"`
	Passengers    int    `json:"passengers" binding:"omitempty,min=1,max=9"`
	TravelClass   string `json:"travel_class"`
}

// QuotePrediction model view of one quote
type QuotePrediction struct {
	FlightID             string  `json:"flight_id"`
	PredictedPrice       int     `json:"predicted_price"`
	Confidence           float64 `json:"confidence"`
	PriceDifference      int     `json:"price_difference"`
	PercentageDifference float64 `json:"percentage_difference"`
	Recommendation       string  `json:"recommendation"` // great_deal, fair_price, overpriced
}

// PriceAnalysis aggregate comparison statistics
type PriceAnalysis struct {
	AvgPredictedPrice int        `json:"avg_predicted_price"`
	AvgCurrentPrice   int        `json:"avg_current_price"`
	PriceTrend        string     `json:"price_trend"`
	PriceRange        PriceRange `json:"price_range"`
	BestDealFlightID  string     `json:"best_deal_flight_id,omitempty"`
}

// Comparison live quotes checked against the model
type Comparison struct {
	Success         bool              `json:"success"`
	RealtimeFlights []Quote           `json:"realtime_flights"`
	MLPredictions   []QuotePrediction `json:"ml_predictions"`
	PriceAnalysis   PriceAnalysis     `json:"price_analysis"`
	Recommendations []string          `json:"recommendations"`
	Sources         []string          `json:"sources"`
}
