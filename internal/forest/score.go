package forest

import (
	"math"
	"math/rand"
)

// MeanAbsoluteError average |y - yhat|.
func MeanAbsoluteError(y, yhat []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		s += abs(y[i] - yhat[i])
	}
	return s / float64(len(y))
}

// R2Score coefficient of determination; 0 when y is constant.
func R2Score(y, yhat []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	mean, _ := MeanStd(y)
	var res, tot float64
	for i := range y {
		d := y[i] - yhat[i]
		res += d * d
		m := y[i] - mean
		tot += m * m
	}
	if tot == 0 {
		return 0
	}
	return 1 - res/tot
}

// TrainTestSplit shuffles 0..n-1 with seed and holds out testFraction of it.
// At least one row stays in the training side.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return perm[nTest:], perm[:nTest]
}
