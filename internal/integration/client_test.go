package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/evaluate"
	"github.com/go-knc/knc/internal/predict"
	"github.com/go-knc/knc/internal/server"
)

type stubService struct {
	conclusion classifier.Conclusion
	accuracy   float64
}

func (s *stubService) Predict(string, classifier.Vector, int) (*classifier.Conclusion, error) {
	c := s.conclusion
	return &c, nil
}

func (s *stubService) Evaluate(context.Context, string, []classifier.Vector, []string, int) (float64, error) {
	return s.accuracy, nil
}

func newTestServer(t *testing.T) (*Client, *stubService) {
	t.Helper()
	svc := &stubService{
		conclusion: classifier.Conclusion{Label: "a", Votes: 2, K: 3},
		accuracy:   0.75,
	}

	predictHandler, err := predict.NewHandler(&predict.Config{RequestTimeout: 5 * time.Second, MaxDataItemsLen: 10}, svc)
	if err != nil {
		t.Fatalf("predict.NewHandler: %v", err)
	}
	evaluateHandler, err := evaluate.NewHandler(&evaluate.Config{RequestTimeout: 5 * time.Second, MaxDataItemsLen: 100}, svc)
	if err != nil {
		t.Fatalf("evaluate.NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/predict", predictHandler)
	mux.Handle("/evaluate", evaluateHandler)
	mux.Handle("/health", server.HandleHealth(context.Background()))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return NewClient(strings.TrimPrefix(ts.URL, "http://")), svc
}

func TestClientHealth(t *testing.T) {
	client, _ := newTestServer(t)

	resp, err := client.Health()
	if err != nil {
		t.Fatalf("health request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status got: %v, expected: %v", resp.StatusCode, http.StatusOK)
	}
}

func TestClientPredict(t *testing.T) {
	client, _ := newTestServer(t)

	predictResp, resp, err := client.Predict(Request{
		Dataset: "test-data",
		K:       3,
		Data: []Item{
			{Vec: []float64{1, 1}, CreatedAt: time.Now()},
		},
	})
	if err != nil {
		t.Fatalf("predict request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("predict status got: %v, expected: %v", resp.StatusCode, http.StatusOK)
	}
	if len(predictResp.Data) != 1 {
		t.Fatalf("predict items got: %v, expected: 1", len(predictResp.Data))
	}
	if predictResp.Data[0].Label != "a" {
		t.Errorf("predict label got: %v, expected: a", predictResp.Data[0].Label)
	}
}

func TestClientEvaluate(t *testing.T) {
	client, _ := newTestServer(t)

	evaluateResp, resp, err := client.Evaluate(Request{
		Dataset: "test-data",
		K:       3,
		Data: []Item{
			{Vec: []float64{1, 1}, Label: "a"},
			{Vec: []float64{2, 2}, Label: "b"},
		},
	})
	if err != nil {
		t.Fatalf("evaluate request error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate status got: %v, expected: %v", resp.StatusCode, http.StatusOK)
	}
	if evaluateResp.Accuracy != 0.75 {
		t.Errorf("evaluate accuracy got: %v, expected: 0.75", evaluateResp.Accuracy)
	}
}
