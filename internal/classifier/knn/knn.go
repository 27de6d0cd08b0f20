package knn

import (
	"context"
	"fmt"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/pkg/pqueue"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownMetric    = fmt.Errorf("unknown distance metric")
	ErrNonPositiveK     = fmt.Errorf("k must be a positive integer")
	ErrEmptyNeighborSet = fmt.Errorf("empty neighbor set, nothing to vote on")
	ErrLengthMismatch   = fmt.Errorf("test points and test labels length mismatch")
	ErrEmptyTestSet     = fmt.Errorf("empty test set")
)

var _ classifier.Classifier = (*knn)(nil)

type Option func(*knn)

func WithMetric(m Metric) Option {
	return func(k *knn) {
		k.opts.metric = m
	}
}

func WithDistance(f classifier.PointsDistanceFn) Option {
	return func(k *knn) {
		k.distFunc = f
	}
}

var defaultOptions = Options{metric: MetricEuclidean}

type Options struct {
	metric Metric
}

// New returns a brute-force k-nearest-neighbors classifier. The instance
// carries only the metric configuration; the training set is an argument of
// every call and is never mutated.
func New(opts ...Option) (*knn, error) {
	k := &knn{opts: defaultOptions}
	for _, f := range opts {
		f(k)
	}
	if k.distFunc == nil {
		distFunc, err := DistanceFuncFor(k.opts.metric)
		if err != nil {
			return nil, fmt.Errorf("unable creating knn instance, %w", err)
		}
		k.distFunc = distFunc
	}
	return k, nil
}

type knn struct {
	opts     Options
	distFunc classifier.PointsDistanceFn
}

func (c *knn) Metric() Metric {
	return c.opts.metric
}

func (c *knn) DistanceFunc() classifier.PointsDistanceFn {
	return c.distFunc
}

// Distance computes the configured metric between a training point and a
// query. The training point's label takes no part in the computation.
func (c *knn) Distance(point classifier.DataPoint, query classifier.Vector) (float64, error) {
	return c.distFunc(point.Vector().Points(), query.Points())
}

// NearestNeighbors returns the min(k, len(train)) training points closest
// to query, ascending by distance. Points at equal distance keep their
// training set order, so repeated calls break ties the same way.
func (c *knn) NearestNeighbors(train []classifier.DataPoint, query classifier.Vector, k int) ([]classifier.DataPoint, error) {
	if k < MinKNum {
		return nil, ErrNonPositiveK
	}
	pq := pqueue.New(pqueue.WithCap(uint(k)))
	for _, point := range train {
		distance, err := c.distFunc(point.Vector().Points(), query.Points())
		if err != nil {
			return nil, fmt.Errorf(
				"unable to compute distance between %v and %v: %w",
				point.Vector().Points(), query.Points(),
				err,
			)
		}
		pq.Push(point, distance)
	}
	nn := make([]classifier.DataPoint, pq.Len())
	for i, pData := range pq.PopAll() {
		nn[i] = pData.(classifier.DataPoint)
	}
	return nn, nil
}

// Predict votes among the k nearest neighbors. The winner is the most
// frequent label; when several labels share the maximum frequency the one
// closest to the query wins.
func (c *knn) Predict(train []classifier.DataPoint, query classifier.Vector, k int) (*classifier.Conclusion, error) {
	nn, err := c.NearestNeighbors(train, query, k)
	if err != nil {
		return nil, fmt.Errorf("unable compute nearest neighbors: %w", err)
	}
	return c.vote(nn)
}

// vote counts label frequencies over the ascending-distance neighbor list
// and returns the first label in that order whose frequency equals the
// maximum. With a unique mode this is the mode; on a tie it is the label of
// the nearest neighbor among the tied set.
func (c *knn) vote(nn []classifier.DataPoint) (*classifier.Conclusion, error) {
	if len(nn) == 0 {
		return nil, ErrEmptyNeighborSet
	}
	votes := make(map[string]int, len(nn))
	for _, point := range nn {
		votes[point.Label()]++
	}
	max := 0
	for _, n := range votes {
		if n > max {
			max = n
		}
	}
	for _, point := range nn {
		if votes[point.Label()] == max {
			return &classifier.Conclusion{Label: point.Label(), Votes: max, K: len(nn)}, nil
		}
	}
	return nil, ErrEmptyNeighborSet
}

// Evaluate predicts every test point and returns the share of predictions
// matching the expected labels. Predictions run concurrently, each worker
// writing only its own result slot.
func (c *knn) Evaluate(ctx context.Context, train []classifier.DataPoint, queries []classifier.Vector, labels []string, k int) (float64, error) {
	if len(queries) != len(labels) {
		return 0.0, ErrLengthMismatch
	}
	if len(queries) == 0 {
		return 0.0, ErrEmptyTestSet
	}

	correct := make([]bool, len(queries))
	grp, _ := errgroup.WithContext(ctx)
	for i := range queries {
		i := i
		grp.Go(func() error {
			conclusion, err := c.Predict(train, queries[i], k)
			if err != nil {
				return fmt.Errorf("unable predict test point %d: %w", i, err)
			}
			correct[i] = conclusion.Label == labels[i]
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return 0.0, err
	}

	hits := 0
	for _, ok := range correct {
		if ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queries)), nil
}
