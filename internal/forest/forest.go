package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Params ensemble hyperparameters
type Params struct {
	Trees           int   `json:"trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	Seed            int64 `json:"seed"`
	Workers         int   `json:"-"`
}

// DefaultParams 100 trees, depth 20, seed 42
func DefaultParams() Params {
	return Params{Trees: 100, MaxDepth: 20, MinSamplesSplit: 2, Seed: 42}
}

// Forest bagged regression trees; prediction is the member mean
type Forest struct {
	Params Params
	Trees  []Tree
}

// Fit grows p.Trees trees, each on a bootstrap sample drawn from its own
// seeded source, so the result does not depend on scheduling.
func Fit(ctx context.Context, X [][]float64, y []float64, p Params) (*Forest, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("fit forest: no samples")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit forest: %d rows but %d targets", len(X), len(y))
	}
	if p.Trees <= 0 {
		return nil, fmt.Errorf("fit forest: trees must be > 0")
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trees := make([]Tree, p.Trees)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < p.Trees; t++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(p.Seed + int64(t)*7919))
			sample := make([]int, len(X))
			for i := range sample {
				sample[i] = rng.Intn(len(X))
			}
			trees[t] = fitTree(X, y, sample, p.MaxDepth, p.MinSamplesSplit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Forest{Params: p, Trees: trees}, nil
}

// Validate checks every tree against the feature count.
func (f *Forest) Validate(features int) error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].Validate(features); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// Members returns every tree's prediction for x.
func (f *Forest) Members(x []float64) []float64 {
	out := make([]float64, len(f.Trees))
	for i := range f.Trees {
		out[i] = f.Trees[i].Predict(x)
	}
	return out
}

// Predict mean of member predictions.
func (f *Forest) Predict(x []float64) float64 {
	mean, _ := MeanStd(f.Members(x))
	return mean
}

// MeanStd mean and population standard deviation.
func MeanStd(v []float64) (float64, float64) {
	if len(v) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	ss := 0.0
	for _, x := range v {
		d := x - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(v)))
}
