package geom

import (
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		p1       []float64
		expected float64
	}{
		{name: "positive", p: []float64{1.2, 2.0}, p1: []float64{2.0, 3.0}, expected: 1.2806248474865698},
		{name: "positive", p: []float64{10, 2.0}, p1: []float64{5, 3.0}, expected: 5.0990195135927845},
		{name: "positive", p: []float64{0, 0}, p1: []float64{0, 0}, expected: 0},
		{name: "err", p: []float64{5, 2.0}, p1: []float64{3}, expected: 0},
		{name: "err", p: []float64{2.0}, p1: []float64{3, 4.0}, expected: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := EuclideanDistance(test.p, test.p1)
			if test.name == "positive" {
				if err != nil {
					t.Errorf("the error should not be returned")
				}
				if got != test.expected {
					t.Errorf(
						"the distance obtained does not correspond to the expected distance, got %f, expected %f",
						got, test.expected)
				}
			}
			if test.name == "err" {
				if err == nil {
					t.Errorf("the dimension of the vectors is different, an error must be output %v", ErrDimNotEqual)
				}
			}
		})
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		p1       []float64
		expected float64
	}{
		{name: "positive", p: []float64{1.2, 2.0}, p1: []float64{2.0, 3.0}, expected: 1.8},
		{name: "positive", p: []float64{10, 2.0}, p1: []float64{5, 3.0}, expected: 6},
		{name: "positive", p: []float64{7, 7}, p1: []float64{7, 7}, expected: 0},
		{name: "err", p: []float64{5, 2.0}, p1: []float64{3}, expected: 0},
		{name: "err", p: []float64{2.0}, p1: []float64{3, 4.0}, expected: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ManhattanDistance(test.p, test.p1)
			if test.name == "positive" {
				if err != nil {
					t.Errorf("the error should not be returned")
				}
				if got != test.expected {
					t.Errorf(
						"the distance obtained does not correspond to the expected distance, got %f, expected %f",
						got, test.expected)
				}
			}
			if test.name == "err" {
				if err == nil {
					t.Errorf("the dimension of the vectors is different, an error must be output %v", ErrDimNotEqual)
				}
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	fns := map[string]func(vec, vec1 []float64) (float64, error){
		"euclidean": EuclideanDistance,
		"manhattan": ManhattanDistance,
	}
	pairs := [][2][]float64{
		{{1.2, 2.0}, {2.0, 3.0}},
		{{10, 2.0, -4}, {5, 3.0, 8}},
		{{0, 0}, {0, 0}},
		{{-1.5, 0.25}, {3.75, -2}},
	}
	for name, fn := range fns {
		fn := fn
		t.Run(name, func(t *testing.T) {
			for _, pair := range pairs {
				d, err := fn(pair[0], pair[1])
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				d1, err := fn(pair[1], pair[0])
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if d != d1 {
					t.Errorf("distance is not symmetric, got %f and %f", d, d1)
				}
				if d < 0 {
					t.Errorf("distance must be non negative, got %f", d)
				}
			}
		})
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	fns := map[string]func(vec, vec1 []float64) (float64, error){
		"euclidean": EuclideanDistance,
		"manhattan": ManhattanDistance,
	}
	triples := [][3][]float64{
		{{0, 0}, {1, 1}, {2, 0}},
		{{-3, 4}, {0, 0}, {5, -12}},
		{{1.5, 2.5, 3.5}, {-1, 0, 1}, {4, 4, 4}},
	}
	const eps = 1e-12
	for name, fn := range fns {
		fn := fn
		t.Run(name, func(t *testing.T) {
			for _, tr := range triples {
				ab, _ := fn(tr[0], tr[1])
				bc, _ := fn(tr[1], tr[2])
				ac, _ := fn(tr[0], tr[2])
				if ac > ab+bc+eps {
					t.Errorf("triangle inequality violated: d(a,c)=%f > d(a,b)+d(b,c)=%f", ac, ab+bc)
				}
			}
		})
	}
}

func TestDistanceZeroOnlyOnEqual(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2, 3.0001}
	for name, fn := range map[string]func(vec, vec1 []float64) (float64, error){
		"euclidean": EuclideanDistance,
		"manhattan": ManhattanDistance,
	} {
		d, err := fn(a, a)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if d != 0 {
			t.Errorf("%s: distance to itself must be 0, got %f", name, d)
		}
		d, err = fn(a, b)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if math.Abs(d) == 0 {
			t.Errorf("%s: distance of different points must not be 0", name)
		}
	}
}
