package integration

import "time"

type Item struct {
	Vec       []float64   `json:"vector"`
	Label     string      `json:"label,omitempty"`
	Extra     interface{} `json:"extra,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Request struct {
	Dataset string `json:"dataset"`
	K       int    `json:"k,omitempty"`
	Data    []Item `json:"data"`
}

type PredictItem struct {
	Label     string      `json:"label"`
	Share     float64     `json:"share"`
	Votes     int         `json:"votes"`
	K         int         `json:"k"`
	Vec       []float64   `json:"vector"`
	Extra     interface{} `json:"extra"`
	CreatedAt time.Time   `json:"createdAt"`
}

type PredictResponse struct {
	Dataset string        `json:"dataset"`
	Data    []PredictItem `json:"data"`
}

type EvaluateResponse struct {
	Dataset  string  `json:"dataset"`
	Accuracy float64 `json:"accuracy"`
	Size     int     `json:"size"`
	K        int     `json:"k"`
}
