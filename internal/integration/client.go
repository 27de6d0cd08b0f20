package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type prefixRoundTripper struct {
	addr string
	rt   http.RoundTripper
}

func (p *prefixRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	u := r.URL
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		u.Host = p.addr
	}

	return p.rt.RoundTrip(r)
}

func NewClient(addr string) *Client {
	return &Client{client: &http.Client{Transport: &prefixRoundTripper{addr: addr, rt: http.DefaultTransport}}}
}

type Client struct {
	client *http.Client
}

func (c *Client) post(path string, r Request) (*http.Response, error) {
	b, err := json.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("unable marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error with sending request: %w", err)
	}
	return resp, nil
}

func (c *Client) Train(r Request) (*http.Response, error) {
	return c.post("/train", r)
}

func (c *Client) Predict(r Request) (*PredictResponse, *http.Response, error) {
	resp, err := c.post("/predict", r)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var predictResp PredictResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
			return nil, resp, fmt.Errorf("unable decode predict response: %w", err)
		}
	}
	return &predictResp, resp, nil
}

func (c *Client) Evaluate(r Request) (*EvaluateResponse, *http.Response, error) {
	resp, err := c.post("/evaluate", r)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var evaluateResp EvaluateResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&evaluateResp); err != nil {
			return nil, resp, fmt.Errorf("unable decode evaluate response: %w", err)
		}
	}
	return &evaluateResp, resp, nil
}

func (c *Client) Health() (*http.Response, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil)
	if err != nil {
		return nil, fmt.Errorf("create new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}
