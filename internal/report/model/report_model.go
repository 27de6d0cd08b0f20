package model

import (
	"encoding/hex"
	"time"

	"github.com/go-knc/knc/internal/geom"
	"github.com/go-knc/knc/internal/util"
	"github.com/google/uuid"
)

func NewReport(dataset string, query geom.Point, label string, share float64, k int, extra interface{}) Report {
	key := util.HashVector(query.Points())
	return Report{
		ID:        uuid.New(),
		Dataset:   dataset,
		Query:     query,
		Label:     label,
		Share:     share,
		K:         k,
		Key:       hex.EncodeToString(key[:]),
		CreatedAt: time.Now(),
		Extra:     extra,
	}
}

// Report describes a prediction whose winning vote share fell below the
// configured confidence threshold. Key is a stable hash of the query
// vector, used to drop duplicate reports for the same point.
type Report struct {
	ID        uuid.UUID   `json:"id"`
	Dataset   string      `json:"dataset"`
	Query     geom.Point  `json:"query"`
	Label     string      `json:"label"`
	Share     float64     `json:"share"`
	K         int         `json:"k"`
	Key       string      `json:"key"`
	CreatedAt time.Time   `json:"createdAt"`
	Extra     interface{} `json:"extra"`
}
