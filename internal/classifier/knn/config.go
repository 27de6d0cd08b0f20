package knn

import (
	"fmt"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/geom"
)

const MinKNum = 1

type Metric string

const (
	MetricEuclidean Metric = "EUCLIDEAN"
	MetricManhattan Metric = "MANHATTAN"
)

type Config struct {
	KNum       int    `envconfig:"KNC_KNN_K_NUM" default:"3"`
	MetricType Metric `envconfig:"KNC_KNN_METRIC" default:"EUCLIDEAN"`
}

// DistanceFuncFor maps a configured metric to its distance function. The
// metric set is closed: only euclidean and manhattan are supported.
func DistanceFuncFor(m Metric) (classifier.PointsDistanceFn, error) {
	switch m {
	case MetricEuclidean:
		return geom.EuclideanDistance, nil
	case MetricManhattan:
		return geom.ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, m)
	}
}
