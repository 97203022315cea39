// Package quotes supplies live itinerary offers for a route and date.
package quotes

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"flight-forecast-backend/internal/metrics"
	"flight-forecast-backend/internal/model"
)

// Source returns quotes for one route and departure date (YYYY-MM-DD).
type Source interface {
	Search(ctx context.Context, origin, destination, date string) ([]model.Quote, error)
}

// Provider one named quote feed
type Provider interface {
	Source
	Name() string
}

// Aggregator queries providers concurrently, drops failing ones, removes
// duplicates and sorts by price.
type Aggregator struct {
	providers []Provider
	logger    *zap.Logger
}

// NewAggregator nil logger logs nothing.
func NewAggregator(logger *zap.Logger, providers ...Provider) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{providers: providers, logger: logger.With(zap.String("component", "quotes"))}
}

// NewSampleSource built-in sample providers.
func NewSampleSource(logger *zap.Logger) *Aggregator {
	return NewAggregator(logger, MakeMyTrip{}, Cleartrip{})
}

// Search never fails on a single provider error; it returns what the others found.
func (a *Aggregator) Search(ctx context.Context, origin, destination, date string) ([]model.Quote, error) {
	results := make([][]model.Quote, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			qs, err := p.Search(ctx, origin, destination, date)
			if err != nil {
				metrics.QuoteFailures.Inc()
				a.logger.Warn("quote provider failed", zap.String("provider", p.Name()), zap.Error(err))
				return
			}
			a.logger.Debug("quotes found", zap.String("provider", p.Name()), zap.Int("count", len(qs)))
			results[i] = qs
		}(i, p)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []model.Quote
	for _, qs := range results {
		all = append(all, qs...)
	}
	out := Dedup(all)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

type dedupKey struct {
	airline   string
	departure string
	price     int
}

// Dedup keeps the first quote per (airline, departure time, price).
func Dedup(quotes []model.Quote) []model.Quote {
	seen := make(map[dedupKey]bool, len(quotes))
	out := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		k := dedupKey{q.Airline, q.DepartureTime, q.Price}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, q)
	}
	return out
}
