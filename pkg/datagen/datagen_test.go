package datagen

import "testing"

func TestBlobs(t *testing.T) {
	points, labels := Blobs(50, []Blob{
		{Center: []float64{0, 0}, StdDev: 0.5, Label: "a"},
		{Center: []float64{10, 10}, StdDev: 0.5, Label: "b"},
	})
	if len(points) != 100 || len(labels) != 100 {
		t.Fatalf("blobs size got: %d points, %d labels, expected: 100 and 100", len(points), len(labels))
	}
	counts := map[string]int{}
	for i := range points {
		if len(points[i]) != 2 {
			t.Fatalf("point dimension got: %d, expected: 2", len(points[i]))
		}
		counts[labels[i]]++
	}
	if counts["a"] != 50 || counts["b"] != 50 {
		t.Errorf("labels per blob got: %v, expected: 50 each", counts)
	}
}

func TestSplit(t *testing.T) {
	points, labels := Blobs(40, []Blob{
		{Center: []float64{0, 0}, StdDev: 1, Label: "a"},
		{Center: []float64{5, 5}, StdDev: 1, Label: "b"},
	})
	trainP, trainL, testP, testL := Split(points, labels, 0.75)
	if len(trainP) != 60 || len(testP) != 20 {
		t.Fatalf("split sizes got: %d/%d, expected: 60/20", len(trainP), len(testP))
	}
	if len(trainP) != len(trainL) || len(testP) != len(testL) {
		t.Fatalf("points and labels must have the same length after split")
	}
	counts := map[string]int{}
	for _, l := range trainL {
		counts[l]++
	}
	for _, l := range testL {
		counts[l]++
	}
	if counts["a"] != 40 || counts["b"] != 40 {
		t.Errorf("split must not lose labels, got: %v", counts)
	}
}
