package datagen

import (
	"math"

	"github.com/valyala/fastrand"
)

// Blob describes a gaussian cluster of labeled points around a center.
type Blob struct {
	Center []float64
	StdDev float64
	Label  string
}

// Blobs samples n points per blob. Points and labels share indexes.
func Blobs(n int, blobs []Blob) ([][]float64, []string) {
	points := make([][]float64, 0, n*len(blobs))
	labels := make([]string, 0, n*len(blobs))
	for _, blob := range blobs {
		for i := 0; i < n; i++ {
			vec := make([]float64, len(blob.Center))
			for j := range blob.Center {
				vec[j] = blob.Center[j] + gauss()*blob.StdDev
			}
			points = append(points, vec)
			labels = append(labels, blob.Label)
		}
	}
	return points, labels
}

// Split shuffles points and labels together and cuts them into a train and
// a test part, ratio being the train share in (0, 1).
func Split(points [][]float64, labels []string, ratio float64) ([][]float64, []string, [][]float64, []string) {
	shuffled := make([]int, len(points))
	for i := range shuffled {
		shuffled[i] = i
	}
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(fastrand.Uint32n(uint32(i + 1)))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	cut := int(float64(len(points)) * ratio)
	trainPoints := make([][]float64, 0, cut)
	trainLabels := make([]string, 0, cut)
	testPoints := make([][]float64, 0, len(points)-cut)
	testLabels := make([]string, 0, len(points)-cut)
	for n, idx := range shuffled {
		if n < cut {
			trainPoints = append(trainPoints, points[idx])
			trainLabels = append(trainLabels, labels[idx])
			continue
		}
		testPoints = append(testPoints, points[idx])
		testLabels = append(testLabels, labels[idx])
	}
	return trainPoints, trainLabels, testPoints, testLabels
}

// gauss draws a standard normal value via the Box-Muller transform.
func gauss() float64 {
	u := (float64(fastrand.Uint32()) + 1) / (1 << 32)
	u1 := (float64(fastrand.Uint32()) + 1) / (1 << 32)
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*u1)
}
