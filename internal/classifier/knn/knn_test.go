package knn

import (
	"context"
	"errors"
	"testing"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/geom"
)

type labeledPoint struct {
	vec   geom.Point
	label string
}

func (p labeledPoint) Vector() classifier.Vector { return p.vec }

func (p labeledPoint) Label() string { return p.label }

func trainSet(rows [][]float64, labels []string) []classifier.DataPoint {
	set := make([]classifier.DataPoint, len(rows))
	for i := range rows {
		set[i] = labeledPoint{vec: geom.NewPoint(rows[i]), label: labels[i]}
	}
	return set
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		expectedErr error
	}{
		{name: "default_euclidean"},
		{name: "manhattan", opts: []Option{WithMetric(MetricManhattan)}},
		{name: "unknown_metric", opts: []Option{WithMetric("COSINE")}, expectedErr: ErrUnknownMetric},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.opts...)
			if !errors.Is(err, test.expectedErr) {
				t.Errorf("creating knn instance, got error: %v, expected: %v", err, test.expectedErr)
			}
		})
	}
}

func TestDistanceFuncFor(t *testing.T) {
	for _, m := range []Metric{MetricEuclidean, MetricManhattan} {
		if _, err := DistanceFuncFor(m); err != nil {
			t.Errorf("metric %s must resolve to a distance function, got: %v", m, err)
		}
	}
	if _, err := DistanceFuncFor("CHEBYSHEV"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("unsupported metric must return ErrUnknownMetric, got: %v", err)
	}
}

func TestKnn_Distance(t *testing.T) {
	tests := []struct {
		name        string
		metric      Metric
		point       labeledPoint
		query       geom.Point
		expected    float64
		expectedErr error
	}{
		{
			name:     "euclidean_ignores_label",
			metric:   MetricEuclidean,
			point:    labeledPoint{vec: geom.Point{0, 3}, label: "a"},
			query:    geom.Point{4, 0},
			expected: 5,
		},
		{
			name:     "manhattan",
			metric:   MetricManhattan,
			point:    labeledPoint{vec: geom.Point{1, 1}, label: "a"},
			query:    geom.Point{4, 5},
			expected: 7,
		},
		{
			name:        "dim_mismatch",
			metric:      MetricEuclidean,
			point:       labeledPoint{vec: geom.Point{1, 1, 1}, label: "a"},
			query:       geom.Point{4, 5},
			expectedErr: geom.ErrDimNotEqual,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c, err := New(WithMetric(test.metric))
			if err != nil {
				t.Fatalf("unable create knn instance: %v", err)
			}
			got, err := c.Distance(test.point, test.query)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("distance error got: %v, expected: %v", err, test.expectedErr)
			}
			if err == nil && got != test.expected {
				t.Errorf("distance got: %f, expected: %f", got, test.expected)
			}
		})
	}
}

func TestKnn_NearestNeighbors(t *testing.T) {
	train := trainSet(
		[][]float64{{0, 0}, {0, 1}, {5, 5}, {5, 6}},
		[]string{"a", "a", "b", "b"},
	)
	c, err := New()
	if err != nil {
		t.Fatalf("unable create knn instance: %v", err)
	}

	tests := []struct {
		name        string
		query       geom.Point
		k           int
		expected    []string
		expectedErr error
	}{
		{name: "k_one", query: geom.Point{0, 0.5}, k: 1, expected: []string{"a"}},
		{name: "k_three", query: geom.Point{0, 0.5}, k: 3, expected: []string{"a", "a", "b"}},
		{name: "k_clamped_to_set_size", query: geom.Point{0, 0.5}, k: 10, expected: []string{"a", "a", "b", "b"}},
		{name: "k_zero", query: geom.Point{0, 0.5}, k: 0, expectedErr: ErrNonPositiveK},
		{name: "k_negative", query: geom.Point{0, 0.5}, k: -2, expectedErr: ErrNonPositiveK},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			nn, err := c.NearestNeighbors(train, test.query, test.k)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("nearest neighbors error got: %v, expected: %v", err, test.expectedErr)
			}
			if err != nil {
				return
			}
			if len(nn) != len(test.expected) {
				t.Fatalf("neighbor list length got: %d, expected: %d", len(nn), len(test.expected))
			}
			for i := range nn {
				if nn[i].Label() != test.expected[i] {
					t.Errorf("neighbor %d label got: %s, expected: %s", i, nn[i].Label(), test.expected[i])
				}
			}
		})
	}
}

func TestKnn_NearestNeighborsPrefix(t *testing.T) {
	train := trainSet(
		[][]float64{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}},
		[]string{"a", "b", "c", "d", "e", "f"},
	)
	c, err := New()
	if err != nil {
		t.Fatalf("unable create knn instance: %v", err)
	}
	query := geom.Point{0.1, 0}
	for k := 1; k < len(train); k++ {
		nn, err := c.NearestNeighbors(train, query, k)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		nn1, err := c.NearestNeighbors(train, query, k+1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range nn {
			if nn[i].Label() != nn1[i].Label() {
				t.Errorf("k=%d result must be a prefix of k=%d result, position %d differs", k, k+1, i)
			}
		}
	}
}

func TestKnn_NearestNeighborsStableTies(t *testing.T) {
	// all four points are equidistant from the query
	train := trainSet(
		[][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		[]string{"p0", "p1", "p2", "p3"},
	)
	c, err := New()
	if err != nil {
		t.Fatalf("unable create knn instance: %v", err)
	}
	for i := 0; i < 10; i++ {
		nn, err := c.NearestNeighbors(train, geom.Point{0.5, 0.5}, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for j := range nn {
			if expected := train[j].Label(); nn[j].Label() != expected {
				t.Fatalf("equidistant points must keep training set order, position %d got: %s, expected: %s",
					j, nn[j].Label(), expected)
			}
		}
	}
}

func TestKnn_Predict(t *testing.T) {
	tests := []struct {
		name        string
		metric      Metric
		rows        [][]float64
		labels      []string
		query       geom.Point
		k           int
		expected    string
		votes       int
		expectedErr error
	}{
		{
			name:     "majority_two_of_three",
			metric:   MetricEuclidean,
			rows:     [][]float64{{0, 0}, {0, 1}, {5, 5}, {5, 6}},
			labels:   []string{"a", "a", "b", "b"},
			query:    geom.Point{0, 0.5},
			k:        3,
			expected: "a",
			votes:    2,
		},
		{
			name:     "tie_falls_back_to_nearest",
			metric:   MetricEuclidean,
			rows:     [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
			labels:   []string{"a", "b", "a", "b"},
			query:    geom.Point{0.5, 0.5},
			k:        4,
			expected: "a",
			votes:    2,
		},
		{
			name:     "nearest_label_not_in_tied_set",
			metric:   MetricEuclidean,
			rows:     [][]float64{{0, 0}, {2, 0}, {0, 2}, {3, 0}, {0, 3}},
			labels:   []string{"c", "a", "a", "b", "b"},
			query:    geom.Point{0, 0},
			k:        5,
			expected: "a",
			votes:    2,
		},
		{
			name:     "manhattan_majority",
			metric:   MetricManhattan,
			rows:     [][]float64{{0, 0}, {0, 1}, {5, 5}, {5, 6}},
			labels:   []string{"a", "a", "b", "b"},
			query:    geom.Point{0, 0.5},
			k:        3,
			expected: "a",
			votes:    2,
		},
		{
			name:     "self_prediction",
			metric:   MetricEuclidean,
			rows:     [][]float64{{0, 0}, {0, 1}, {5, 5}},
			labels:   []string{"a", "a", "b"},
			query:    geom.Point{5, 5},
			k:        1,
			expected: "b",
			votes:    1,
		},
		{
			name:        "empty_training_set",
			metric:      MetricEuclidean,
			rows:        nil,
			labels:      nil,
			query:       geom.Point{0, 0},
			k:           3,
			expectedErr: ErrEmptyNeighborSet,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			c, err := New(WithMetric(test.metric))
			if err != nil {
				t.Fatalf("unable create knn instance: %v", err)
			}
			conclusion, err := c.Predict(trainSet(test.rows, test.labels), test.query, test.k)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("predict error got: %v, expected: %v", err, test.expectedErr)
			}
			if err != nil {
				return
			}
			if conclusion.Label != test.expected {
				t.Errorf("predicted label got: %s, expected: %s", conclusion.Label, test.expected)
			}
			if conclusion.Votes != test.votes {
				t.Errorf("votes got: %d, expected: %d", conclusion.Votes, test.votes)
			}
		})
	}
}

func TestKnn_PredictDeterminism(t *testing.T) {
	train := trainSet(
		[][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {4, 4}},
		[]string{"a", "b", "a", "b", "b"},
	)
	c, err := New()
	if err != nil {
		t.Fatalf("unable create knn instance: %v", err)
	}
	first, err := c.Predict(train, geom.Point{0.5, 0.5}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		next, err := c.Predict(train, geom.Point{0.5, 0.5}, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next.Label != first.Label || next.Votes != first.Votes {
			t.Fatalf("repeated predictions differ: got %v, expected %v", next, first)
		}
	}
}

func TestKnn_Evaluate(t *testing.T) {
	train := trainSet(
		[][]float64{{0, 0}, {0, 1}, {1, 0}, {10, 10}, {10, 11}, {11, 10}},
		[]string{"a", "a", "a", "b", "b", "b"},
	)
	c, err := New()
	if err != nil {
		t.Fatalf("unable create knn instance: %v", err)
	}

	tests := []struct {
		name        string
		queries     []classifier.Vector
		labels      []string
		k           int
		expected    float64
		expectedErr error
	}{
		{
			name: "three_of_four_correct",
			queries: []classifier.Vector{
				geom.Point{0.2, 0.2},
				geom.Point{0.5, 0.5},
				geom.Point{10.5, 10.5},
				geom.Point{10, 10.5},
			},
			labels:   []string{"a", "a", "b", "a"},
			k:        3,
			expected: 0.75,
		},
		{
			name: "all_correct",
			queries: []classifier.Vector{
				geom.Point{0.1, 0},
				geom.Point{10.1, 10},
			},
			labels:   []string{"a", "b"},
			k:        3,
			expected: 1.0,
		},
		{
			name: "none_correct",
			queries: []classifier.Vector{
				geom.Point{0.1, 0},
				geom.Point{10.1, 10},
			},
			labels:   []string{"b", "a"},
			k:        3,
			expected: 0.0,
		},
		{
			name:        "length_mismatch",
			queries:     []classifier.Vector{geom.Point{0, 0}},
			labels:      []string{"a", "b"},
			k:           3,
			expectedErr: ErrLengthMismatch,
		},
		{
			name:        "empty_test_set",
			queries:     nil,
			labels:      nil,
			k:           3,
			expectedErr: ErrEmptyTestSet,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			accuracy, err := c.Evaluate(context.Background(), train, test.queries, test.labels, test.k)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("evaluate error got: %v, expected: %v", err, test.expectedErr)
			}
			if err != nil {
				return
			}
			if accuracy != test.expected {
				t.Errorf("accuracy got: %f, expected: %f", accuracy, test.expected)
			}
			if accuracy < 0 || accuracy > 1 {
				t.Errorf("accuracy must stay in [0, 1], got: %f", accuracy)
			}
		})
	}
}
