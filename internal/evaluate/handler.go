package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/classify"
	"github.com/go-knc/knc/internal/geom"
	"github.com/go-knc/knc/internal/httputil"
	"github.com/go-knc/knc/internal/logging"
	"github.com/go-knc/knc/internal/stats"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Dataset string `json:"dataset"`
	K       int    `json:"k"`
	Data    []struct {
		Vec   []float64 `json:"vector"`
		Label string    `json:"label"`
	} `json:"data"`
}

type response struct {
	Dataset  string  `json:"dataset"`
	Accuracy float64 `json:"accuracy"`
	Size     int     `json:"size"`
	K        int     `json:"k"`
}

func NewHandler(cfg *Config, evaluator classify.Evaluator) (http.Handler, error) {
	return &handler{
		cfg:       cfg,
		evaluator: evaluator,
	}, nil
}

type handler struct {
	evaluator classify.Evaluator
	cfg       *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		logger.Debug(fmt.Sprintf(`{"error": "method %v is not allowed"}`, r.Method))
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		logger.Debug(fmt.Sprintf(`{"error": "%v"}`, "content-type is not application/json"))
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if req.K < 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "k must not be negative"}`)
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	queries := make([]classifier.Vector, 0, len(req.Data))
	labels := make([]string, 0, len(req.Data))
	for _, dat := range req.Data {
		queries = append(queries, geom.NewPoint(dat.Vec))
		labels = append(labels, dat.Label)
	}

	began := time.Now()
	accuracy, err := h.evaluator.Evaluate(ctx, req.Dataset, queries, labels, req.K)
	if err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "evaluate error, %v"}`, err)
		return
	}
	stats.RecordEvaluate(r.Context(), req.Dataset, float64(time.Since(began).Milliseconds()))

	logger.Infof("Evaluated dataset %s on %d samples, accuracy %.4f", req.Dataset, len(req.Data), accuracy)

	bytes, err := json.Marshal(response{
		Dataset:  req.Dataset,
		Accuracy: accuracy,
		Size:     len(req.Data),
		K:        req.K,
	})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}
