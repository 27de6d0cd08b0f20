package model

import (
	"time"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/geom"
	"github.com/google/uuid"
)

type Status uint8

const (
	StatusNew Status = iota
	StatusProcessed
)

func NewSample(dataset string, vec geom.Point, class string, createdAt time.Time, extra interface{}) Sample {
	return Sample{
		ID:        uuid.New(),
		Dataset:   dataset,
		Vec:       vec,
		Class:     class,
		Status:    StatusNew,
		CreatedAt: createdAt,
		Extra:     extra,
	}
}

var _ classifier.DataPoint = (*Sample)(nil)

// Sample is a labeled training point of a dataset. The label lives beside
// the feature vector and never takes part in distance computations.
type Sample struct {
	ID        uuid.UUID   `json:"id"`
	Dataset   string      `json:"dataset"`
	Vec       geom.Point  `json:"vec"`
	Class     string      `json:"class"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Extra     interface{} `json:"extra"`
}

func (s Sample) IsProcessed() bool {
	return s.Status == StatusProcessed
}

func (s Sample) IsNew() bool {
	return s.Status == StatusNew
}

func (s Sample) Vector() classifier.Vector {
	return s.Vec
}

func (s Sample) Label() string {
	return s.Class
}

func (s Sample) Time() time.Time {
	return s.CreatedAt
}
