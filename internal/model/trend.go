package model

// TrendPoint predicted price for one future departure day
type TrendPoint struct {
	Date           string `json:"date"`
	DaysUntil      int    `json:"days_until"`
	PredictedPrice int    `json:"predicted_price"`
	DayOfWeek      string `json:"day_of_week"`
	IsWeekend      bool   `json:"is_weekend"`
}

// TrendRequest price trend request
type TrendRequest struct {
	SourceCity      string `json:"source_city" binding:"required"`
	DestinationCity string `json:"destination_city" binding:"required"`
	DaysAhead       int    `json:"days_ahead" binding:"omitempty,min=1,max=180"`
}

// AnalyzeRequest price analysis request
type AnalyzeRequest struct {
	CurrentPrice    float64 `json:"current_price" binding:"required,gt=0"`
	SourceCity      string  `json:"source_city" binding:"required"`
	DestinationCity string  `json:"destination_city" binding:"required"`
	DepartureDate   string  `json:"departure_date"`
}

// CurrentVsPredicted caller price against the departure-day prediction
type CurrentVsPredicted struct {
	CurrentPrice         float64 `json:"current_price"`
	PredictedPrice       int     `json:"predicted_price"`
	Difference           int     `json:"difference"`
	PercentageDifference float64 `json:"percentage_difference"`
}

// CurrentVsAverage caller price against trend statistics
type CurrentVsAverage struct {
	CurrentPrice      float64 `json:"current_price"`
	AveragePrice      int     `json:"average_price"`
	DifferencePercent float64 `json:"difference_percent"`
	VsMinimum         float64 `json:"vs_minimum"`
	VsMaximum         float64 `json:"vs_maximum"`
}

// BookingDay one of the cheapest trend days
type BookingDay struct {
	Date      string `json:"date"`
	Price     int    `json:"price"`
	DaysUntil int    `json:"days_until"`
	DayOfWeek string `json:"day_of_week"`
}

// PriceStats summary over all trend points
type PriceStats struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Average int `json:"average"`
	Range   int `json:"range"`
}

// Analysis booking advice for a caller-supplied price
type Analysis struct {
	Recommendation     string             `json:"recommendation"`
	Confidence         string             `json:"confidence"` // high, medium, low
	Action             string             `json:"action"`     // book_now, book_soon, wait_and_watch, wait
	CurrentVsPredicted CurrentVsPredicted `json:"current_vs_predicted"`
	CurrentVsAverage   *CurrentVsAverage  `json:"current_vs_average,omitempty"`
	TrendDirection     string             `json:"trend_direction"` // increasing, decreasing, stable
	BestBookingDays    []BookingDay       `json:"best_booking_days"`
	TrendData          []TrendPoint       `json:"trend_data"`
	PriceStats         *PriceStats        `json:"price_stats,omitempty"`
}
