package quotes

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"flight-forecast-backend/internal/model"
)

const currencyINR = "INR"

// hashMod FNV-1a of s modulo n, stable across processes and platforms
func hashMod(s string, n uint32) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % n)
}

func clock(date string, hour int) string {
	return fmt.Sprintf("%s %02d:00", date, hour)
}

// MakeMyTrip sample offers priced off the departure date
type MakeMyTrip struct {
	Now func() time.Time
}

func (MakeMyTrip) Name() string { return "makemytrip" }

func (m MakeMyTrip) Search(ctx context.Context, origin, destination, date string) ([]model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	airlines := []string{"IndiGo", "SpiceJet", "Air India", "Vistara"}
	jitter := hashMod(date, 1000)
	scraped := now(m.Now)
	out := make([]model.Quote, 0, len(airlines))
	for i, airline := range airlines {
		stops := 1
		if i < 2 {
			stops = 0
		}
		out = append(out, model.Quote{
			ID:            fmt.Sprintf("mmt_%d", i),
			Airline:       airline,
			FlightNumber:  fmt.Sprintf("%s%d", strings.ToUpper(airline[:2]), 1000+i),
			DepartureTime: clock(date, 8+i*2),
			ArrivalTime:   clock(date, 11+i*2),
			Duration:      "3h",
			Origin:        origin,
			Destination:   destination,
			Price:         4000 + i*500 + jitter,
			Currency:      currencyINR,
			Stops:         stops,
			Source:        m.Name(),
			ScrapedAt:     scraped,
			BookingURL:    "https://www.makemytrip.com/flight/search",
		})
	}
	return out, nil
}

// Cleartrip sample offers priced off the route
type Cleartrip struct {
	Now func() time.Time
}

func (Cleartrip) Name() string { return "cleartrip" }

func (c Cleartrip) Search(ctx context.Context, origin, destination, date string) ([]model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sample := []struct {
		airline string
		code    string
		price   int
	}{
		{"AirAsia India", "I5", 3800},
		{"GoAir", "G8", 4100},
		{"Alliance Air", "9I", 5200},
	}
	jitter := hashMod(origin+destination, 500)
	scraped := now(c.Now)
	out := make([]model.Quote, 0, len(sample))
	for i, s := range sample {
		out = append(out, model.Quote{
			ID:            fmt.Sprintf("cleartrip_%d", i),
			Airline:       s.airline,
			FlightNumber:  fmt.Sprintf("%s%d", s.code, 2000+i),
			DepartureTime: clock(date, 12+i*3),
			ArrivalTime:   clock(date, 15+i*3),
			Duration:      "2h45m",
			Origin:        origin,
			Destination:   destination,
			Price:         s.price + jitter,
			Currency:      currencyINR,
			Stops:         i % 2,
			Source:        c.Name(),
			ScrapedAt:     scraped,
			BookingURL:    "https://www.cleartrip.com/flights",
		})
	}
	return out, nil
}

func now(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}
