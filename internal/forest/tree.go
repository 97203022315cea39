package forest

import (
	"fmt"
	"sort"
)

// Node flat tree node; Feature < 0 marks a leaf
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// Tree regression tree, root at Nodes[0]
type Tree struct {
	Nodes []Node
}

// Predict walks x down to a leaf; x[Feature] <= Threshold goes left.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Validate checks that every split reads a feature below features and that
// children point forward inside Nodes, so Predict always reaches a leaf.
func (t *Tree) Validate(features int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 {
			continue
		}
		if n.Feature >= features {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, features)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children %d/%d outside (%d, %d)", i, n.Left, n.Right, i, len(t.Nodes))
		}
	}
	return nil
}

// Depth longest root-to-leaf path in edges.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return 0
		}
		l, r := walk(n.Left), walk(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}

type treeBuilder struct {
	X        [][]float64
	y        []float64
	maxDepth int
	minSplit int
	nodes    []Node
	scratch  []int
}

// fitTree grows a squared-error tree over the rows listed in idx.
func fitTree(X [][]float64, y []float64, idx []int, maxDepth, minSplit int) Tree {
	b := &treeBuilder{
		X:        X,
		y:        y,
		maxDepth: maxDepth,
		minSplit: minSplit,
		scratch:  make([]int, len(idx)),
	}
	work := append([]int(nil), idx...)
	b.build(work, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	sum := 0.0
	for _, i := range idx {
		sum += b.y[i]
	}
	node := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Value: sum / float64(len(idx))})

	if (b.maxDepth > 0 && depth >= b.maxDepth) || len(idx) < b.minSplit {
		return node
	}
	feature, threshold, ok := b.bestSplit(idx, sum)
	if !ok {
		return node
	}

	// partition in place: left block then right block
	l := 0
	r := len(idx) - 1
	for l <= r {
		if b.X[idx[l]][feature] <= threshold {
			l++
			continue
		}
		idx[l], idx[r] = idx[r], idx[l]
		r--
	}
	if l == 0 || l == len(idx) {
		return node
	}

	left := b.build(idx[:l], depth+1)
	right := b.build(idx[l:], depth+1)
	b.nodes[node].Feature = feature
	b.nodes[node].Threshold = threshold
	b.nodes[node].Left = left
	b.nodes[node].Right = right
	return node
}

// bestSplit maximizes sumL²/nL + sumR²/nR, which minimizes the children's
// squared error. Ties keep the first feature and the first position found.
func (b *treeBuilder) bestSplit(idx []int, total float64) (int, float64, bool) {
	n := len(idx)
	parent := total * total / float64(n)
	best := parent
	bestFeature := -1
	bestThreshold := 0.0

	sorted := b.scratch[:n]
	for f := 0; f < len(b.X[idx[0]]); f++ {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool {
			return b.X[sorted[a]][f] < b.X[sorted[c]][f]
		})
		if b.X[sorted[0]][f] == b.X[sorted[n-1]][f] {
			continue
		}
		sumL := 0.0
		for k := 0; k < n-1; k++ {
			sumL += b.y[sorted[k]]
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nL := float64(k + 1)
			sumR := total - sumL
			score := sumL*sumL/nL + sumR*sumR/(float64(n)-nL)
			if score > best+1e-9*(1+abs(best)) {
				best = score
				bestFeature = f
				bestThreshold = midpoint(lo, hi)
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m >= hi {
		return lo
	}
	return m
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
