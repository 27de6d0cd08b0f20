package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-knc/knc/internal/database"
	"github.com/go-knc/knc/internal/httputil"
	"github.com/go-knc/knc/internal/logging"
	reportDb "github.com/go-knc/knc/internal/report/database"
	"github.com/go-knc/knc/internal/report/model"
	"github.com/go-knc/knc/pkg/rworker"
)

type ProvideFn = func(chan<- error) (Manager, error)

const UserAgent = "KNC/0.1"

type Options struct {
	maxConcurrentRequest int
	requestTimeout       time.Duration
	reportInterval       time.Duration
}

type Option func(*manager)

func WithMaxConcurrentRequest(n int) Option {
	return func(o *manager) {
		o.opts.maxConcurrentRequest = n
	}
}

func WithInterval(t time.Duration) Option {
	return func(o *manager) {
		o.opts.reportInterval = t
	}
}

func WithRequestTimeout(t time.Duration) Option {
	return func(o *manager) {
		o.opts.requestTimeout = t
	}
}

func WithTargets(m Targets) Option {
	return func(o *manager) {
		o.targets = m
	}
}

type data struct {
	Query     []float64   `json:"query"`
	Label     string      `json:"label"`
	Share     float64     `json:"share"`
	K         int         `json:"k"`
	CreatedAt time.Time   `json:"createdAt"`
	Extra     interface{} `json:"extra"`
}

type request struct {
	Dataset string `json:"dataset"`
	Data    []data `json:"data"`
}

func New(db *database.DB, shutdownCh chan<- error, opts ...Option) (*manager, error) {
	m := &manager{
		reportDb:   reportDb.New(db),
		shutdownCh: shutdownCh,
		targets:    Targets{},
		clients:    map[string]*http.Client{},
		reports:    map[string][]model.Report{},
	}
	m.opts.requestTimeout = 10 * time.Second
	for _, f := range opts {
		f(m)
	}
	for _, target := range m.targets {
		if _, ok := m.clients[target.Dataset]; !ok {
			client, err := httputil.NewClientFromConfig(target.HTTPConfig, true)
			if err != nil {
				return nil, fmt.Errorf("unable create client for dataset %s: %v", target.Dataset, err)
			}
			m.clients[target.Dataset] = client
		}
	}
	return m, nil
}

type Notifier interface {
	Notify(reports ...model.Report)
}

type Manager interface {
	Notifier
	Run(context.Context) error
	Stop()
}

// manager accumulates low-confidence prediction reports per dataset and
// pushes them to the configured targets on an interval. Pending reports
// survive restarts through the report db.
type manager struct {
	mtx        sync.RWMutex
	opts       Options
	reportDb   *reportDb.DB
	shutdownCh chan<- error
	targets    Targets
	clients    map[string]*http.Client
	reports    map[string][]model.Report
	cancel     func()
}

func (m *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.notifier(ctx)
	if err := m.initialize(ctx); err != nil {
		return fmt.Errorf("can not start report manager: %v", err)
	}
	return nil
}

func (m *manager) Stop() {
	m.cancel()
}

// Notify queues reports for delivery. A report with the same query hash as
// an already pending one for the dataset is dropped.
func (m *manager) Notify(reports ...model.Report) {
	m.mtx.Lock()
OuterLoop:
	for i := range reports {
		if _, ok := m.reports[reports[i].Dataset]; !ok {
			m.reports[reports[i].Dataset] = []model.Report{}
		}
		for _, pending := range m.reports[reports[i].Dataset] {
			if pending.Key == reports[i].Key {
				continue OuterLoop
			}
		}
		m.reports[reports[i].Dataset] = append(m.reports[reports[i].Dataset], reports[i])
	}
	m.mtx.Unlock()
}

func (m *manager) initialize(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	reports, err := m.reportDb.FindAll(ctx, nil)
	if err != nil {
		logger.Errorf("Error with fetching data from db, %v", err)
	}
	for i := range reports {
		m.Notify(reports[i])
		if err := m.reportDb.Delete(context.Background(), reports[i]); err != nil {
			return fmt.Errorf("unable delete report on initialize: %v", err)
		}
	}
	return nil
}

func (m *manager) shutdown() error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, reports := range m.reports {
		for i := range reports {
			if err := m.reportDb.Store(context.Background(), reports[i]); err != nil {
				return fmt.Errorf("report shutdown: unable store report: %v", err)
			}
		}
	}
	return nil
}

type makeRequestFn func() request

func (m *manager) notifier(ctx context.Context) {
	logger := logging.FromContext(ctx)
	errCh := make(chan error, 1)
	rateCh := make(chan struct{}, m.opts.maxConcurrentRequest)
	defer close(errCh)
	defer close(rateCh)
	go func() {
		for err := range errCh {
			logger.Errorf("report error: %v", err)
		}
	}()
	defer func() {
		m.shutdownCh <- m.shutdown()
	}()
	wg := sync.WaitGroup{}
	ticker := time.NewTicker(m.opts.reportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		OuterLoop:
			for _, target := range m.targets {
				target := target
				m.mtx.RLock()
				reports := m.reports[target.Dataset]
				m.mtx.RUnlock()
				if len(reports) == 0 {
					continue OuterLoop
				}
				rworker.Job(&wg, func() error {
					if err := m.do(context.Background(), target, func() request {
						items := make([]data, len(reports))
						for i := range reports {
							items[i] = data{
								Query:     reports[i].Query,
								Label:     reports[i].Label,
								Share:     reports[i].Share,
								K:         reports[i].K,
								CreatedAt: reports[i].CreatedAt,
								Extra:     reports[i].Extra,
							}
						}
						return request{
							Dataset: target.Dataset,
							Data:    items,
						}
					}); err != nil {
						return fmt.Errorf("report do request error: %v", err)
					}
					m.mtx.Lock()
					m.reports[target.Dataset] = m.reports[target.Dataset][:0]
					m.mtx.Unlock()
					return nil
				}, rateCh, errCh)
			}
			wg.Wait()
		case <-ctx.Done():
			return
		}
	}
}

func (m *manager) do(ctx context.Context, target Target, fn makeRequestFn) error {
	ctx, cancel := context.WithTimeout(ctx, m.opts.requestTimeout)
	defer cancel()
	request := fn()
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("unable encode json data: %w", err)
	}
	link, err := url.Parse(target.URL)
	if err != nil {
		return fmt.Errorf("url parsing error: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", link.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Add("User-Agent", UserAgent)
	client, ok := m.clients[target.Dataset]
	if !ok {
		return fmt.Errorf("client for dataset %s not defined", target.Dataset)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request error: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("response was not 200 OK: %s", respBody)
	}
	return nil
}
