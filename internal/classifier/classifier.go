package classifier

import (
	"context"
)

type ProvideFn func() (Classifier, error)

type PointsDistanceFn func(vec, vec1 []float64) (float64, error)

type Vector interface {
	Dim(idx int) float64
	Dimensions() int
	Points() []float64
}

type DataPoint interface {
	Vector() Vector
	Label() string
}

// Classifier assigns a label to a query point given a labeled training set.
// Implementations hold no training state: the set is passed on every call,
// which keeps concurrent use safe.
type Classifier interface {
	NearestNeighbors(train []DataPoint, query Vector, k int) ([]DataPoint, error)
	Predict(train []DataPoint, query Vector, k int) (*Conclusion, error)
	Evaluate(ctx context.Context, train []DataPoint, queries []Vector, labels []string, k int) (float64, error)
}

// Conclusion is a single prediction: the winning label and how many of the
// consulted neighbors voted for it.
type Conclusion struct {
	Label string
	Votes int
	K     int
}

// Share returns the winning vote share in (0, 1].
func (c *Conclusion) Share() float64 {
	if c.K == 0 {
		return 0
	}
	return float64(c.Votes) / float64(c.K)
}
