package classify

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/database"
	"github.com/go-knc/knc/internal/geom"
	"github.com/go-knc/knc/internal/logging"
	"github.com/go-knc/knc/internal/report"
	reportModel "github.com/go-knc/knc/internal/report/model"
	sampleDb "github.com/go-knc/knc/internal/sample/database"
	"github.com/go-knc/knc/internal/sample/model"
	"github.com/go-knc/knc/pkg/iqueue"
)

// Contract for returning the Manager instance
type ProvideFn func(report.Manager, chan<- error) (Manager, error)

// The interface defines the behavior of the background classification service
// with all available methods.
type Manager interface {
	TrainPredictor
	Run(context.Context) error
	Stop()
}

// Trainer accepts labeled samples from outside and feeds them to the queue
type Trainer interface {
	Train(in ...model.Sample) error
}

// Predictor assigns a label to the query point against the named dataset
type Predictor interface {
	Predict(dataset string, query classifier.Vector, k int) (*classifier.Conclusion, error)
}

// Evaluator measures classification accuracy of the named dataset
// against a labeled test set
type Evaluator interface {
	Evaluate(ctx context.Context, dataset string, queries []classifier.Vector, labels []string, k int) (float64, error)
}

// Aggregation interface for Trainer, Predictor and Evaluator
type TrainPredictor interface {
	Trainer
	Predictor
	Evaluator
}

type Options struct {
	minSamples          int
	maxItemsStored      int
	maxStorageTime      time.Duration
	dbFlushTime         time.Duration
	dbFlushSize         int
	rebuildDBTime       time.Duration
	kNum                int
	confidenceThreshold float64
	allowReports        bool
}

type Option func(*manager)

func WithDBFlushTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.dbFlushTime = t
	}
}

func WithDBFlushSize(n int) Option {
	return func(o *manager) {
		o.opts.dbFlushSize = n
	}
}

func WithRebuildDBTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.rebuildDBTime = t
	}
}

func WithMinSamples(n int) Option {
	return func(o *manager) {
		o.opts.minSamples = n
	}
}

func WithMaxItemsStored(n int) Option {
	return func(o *manager) {
		o.opts.maxItemsStored = n
	}
}

func WithMaxStorageTime(t time.Duration) Option {
	return func(o *manager) {
		o.opts.maxStorageTime = t
	}
}

func WithKNum(k int) Option {
	return func(o *manager) {
		o.opts.kNum = k
	}
}

func WithConfidenceThreshold(t float64) Option {
	return func(o *manager) {
		o.opts.confidenceThreshold = t
	}
}

func WithAllowReports(t bool) Option {
	return func(o *manager) {
		o.opts.allowReports = t
	}
}

// New returns manager
func New(
	db *database.DB,
	provideClassifierFn classifier.ProvideFn,
	reporter report.Manager,
	shutdownCh chan<- error,
	opts ...Option,
) (*manager, error) {
	if reporter == nil {
		return nil, fmt.Errorf("reporter instance is not created")
	}

	if provideClassifierFn == nil {
		return nil, fmt.Errorf("classifier instance is not created")
	}

	// The classifier holds no training state, a single instance serves
	// every dataset.
	clf, err := provideClassifierFn()
	if err != nil {
		return nil, fmt.Errorf("can not create classifier instance: %w", err)
	}

	d := &manager{
		sampleDB:     sampleDb.New(db),
		clf:          clf,
		trainCh:      make(chan model.Sample, 1),
		shutDownCh:   shutdownCh,
		trainingSets: map[string][]classifier.DataPoint{},
		queue:        map[string]*iqueue.Queue{},
		reporter:     reporter,
	}

	for _, f := range opts {
		f(d)
	}

	d.dbScheduler = newDBScheduler(dbSchedulerConfig{
		maxItemsStored: d.opts.maxItemsStored,
		maxStorageTime: d.opts.maxStorageTime,
		rebuildDBTime:  d.opts.rebuildDBTime,
	})

	d.dbTxExecutor = newDBTxExecutor(
		dbTxExecutorOptions{
			dbFlushTime: d.opts.dbFlushTime,
			dbFlushSize: d.opts.dbFlushSize,
		},
		shutdownCh,
	)

	return d, nil
}

// The main structure of KNC.
// Owns the per-dataset queues and in-memory training sets, calls the
// classifier and pushes low-confidence predictions to the report manager.
type manager struct {
	mtx sync.RWMutex

	opts Options
	// Main sample storage
	sampleDB *sampleDb.DB
	// The report manager
	reporter report.Manager
	// The transaction manager in the store
	dbTxExecutor *dbTxExecutor
	// Managing data in storage
	dbScheduler *dbScheduler

	// Queue for new samples to be processed
	queue map[string]*iqueue.Queue
	// New samples channel for processing
	trainCh chan model.Sample
	// Channel to shutdown the application
	shutDownCh chan<- error

	closed bool
	// Shared classifier instance
	clf classifier.Classifier
	// In-memory training sets by dataset
	trainingSets map[string][]classifier.DataPoint

	cancelReporter func()
	cancel         func()
}

// The Run method starts the main data collection and classification functions
func (d *manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	c, cancel := context.WithCancel(context.Background())
	d.cancelReporter = cancel

	go d.collector(ctx)
	go d.dbTxExecutor.flusher(ctx, d.sampleDB.AppendMany)
	go d.dbScheduler.schedule(ctx, d.sampleDB.Keys, d.sampleDB.CountByDataset, d.sampleDB.FindByDataset, d.sampleDB.DeleteMany)

	// Loading data from storage to memory
	if err := d.bulkLoad(ctx); err != nil {
		return fmt.Errorf("can not start classify manager: %w", err)
	}
	// Launching the report service
	if err := d.reporter.Run(c); err != nil {
		return fmt.Errorf("report.Run: %w", err)
	}

	return nil
}

// Stop the manager
func (d *manager) Stop() {
	d.cancel()
}

// Train adds labeled samples to the feed for processing
func (d *manager) Train(in ...model.Sample) error {
	d.mtx.RLock()
	if d.closed {
		d.mtx.RUnlock()
		return fmt.Errorf("error send to train, shutting down")
	}
	for i := range in {
		d.trainCh <- in[i]
	}
	d.mtx.RUnlock()
	return nil
}

// Predict returns the winning label for the query point among its k nearest
// neighbors in the dataset's training set
func (d *manager) Predict(dataset string, query classifier.Vector, k int) (*classifier.Conclusion, error) {
	d.mtx.RLock()
	if d.closed {
		d.mtx.RUnlock()
		return nil, fmt.Errorf("error to predict, shutting down")
	}
	set := d.trainingSets[dataset]
	d.mtx.RUnlock()

	if len(set) == 0 {
		return nil, fmt.Errorf("dataset %s is not trained", dataset)
	}

	if len(set) < d.opts.minSamples {
		return nil, fmt.Errorf("dataset %s has %d samples, need at least %d", dataset, len(set), d.opts.minSamples)
	}

	if k == 0 {
		k = d.opts.kNum
	}

	result, err := d.clf.Predict(set, query, k)
	if err != nil {
		return nil, err
	}

	if d.opts.allowReports && result.Share() < d.opts.confidenceThreshold {
		d.report(reportModel.NewReport(dataset, geom.NewPoint(query.Points()), result.Label, result.Share(), result.K, nil))
	}

	return result, nil
}

// Evaluate measures the accuracy of the dataset's training set against the
// labeled queries
func (d *manager) Evaluate(ctx context.Context, dataset string, queries []classifier.Vector, labels []string, k int) (float64, error) {
	d.mtx.RLock()
	if d.closed {
		d.mtx.RUnlock()
		return 0, fmt.Errorf("error to evaluate, shutting down")
	}
	set := d.trainingSets[dataset]
	d.mtx.RUnlock()

	if len(set) == 0 {
		return 0, fmt.Errorf("dataset %s is not trained", dataset)
	}

	if k == 0 {
		k = d.opts.kNum
	}

	return d.clf.Evaluate(ctx, set, queries, labels, k)
}

// bulkLoad loading samples from storage to memory
func (d *manager) bulkLoad(ctx context.Context) error {
	var newSamples []model.Sample

	data, err := d.sampleDB.FindAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("error fetching all samples: %w", err)
	}

	d.mtx.Lock()
	for _, dat := range data {
		if _, ok := d.trainingSets[dat.Dataset]; !ok {
			d.trainingSets[dat.Dataset] = []classifier.DataPoint{}
		}
		if dat.IsProcessed() {
			d.trainingSets[dat.Dataset] = append(d.trainingSets[dat.Dataset], dat)
		}
		if dat.IsNew() {
			newSamples = append(newSamples, dat)
		}
	}
	d.mtx.Unlock()

	// samples with the "new" status are sent to the queue for processing
	for i := range newSamples {
		d.trainCh <- newSamples[i]
	}

	return nil
}

func (d *manager) process(ctx context.Context, sample model.Sample) error {
	sample.Status = model.StatusProcessed

	d.mtx.Lock()
	d.trainingSets[sample.Dataset] = append(d.trainingSets[sample.Dataset], sample)
	d.mtx.Unlock()

	d.dbTxExecutor.write(ctx, sample, d.sampleDB.AppendMany)

	return nil
}

func (d *manager) report(in ...reportModel.Report) {
	d.mtx.RLock()
	if !d.closed {
		d.mtx.RUnlock()
		d.reporter.Notify(in...)
		return
	}
	d.mtx.RUnlock()
}

func (d *manager) shutdown(ctx context.Context, q *iqueue.Queue) error {
	for {
		front := q.Queue().Front()
		if front == nil {
			if !d.recvShutdown() {
				return fmt.Errorf("classify shutdown: closed num receivers not equal created")
			}
			d.cancelReporter()
			break
		}

		if err := d.process(ctx, front.Value.(model.Sample)); err != nil {
			return fmt.Errorf("classify shutdown: unable processed data: %w", err)
		}

		q.Queue().Remove(front)
	}
	return nil
}

func (d *manager) recvShutdown() bool {
	finishedNum, queuesNum := 0, len(d.queue)
	for _, q := range d.queue {
		if q.Queue().Len() == 0 {
			finishedNum += 1
		}
	}

	return finishedNum == queuesNum
}

func (d *manager) receive(ctx context.Context, q *iqueue.Queue) {
	logger := logging.FromContext(ctx)
	defer func() {
		d.shutDownCh <- d.shutdown(ctx, q)
	}()

	for {
		select {
		case recv := <-q.Receive():
			if err := d.process(ctx, recv.(model.Sample)); err != nil {
				logger.Errorf("unable processed data: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

const workerMul = 2

func (d *manager) worker(ctx context.Context, queue *iqueue.Queue, num int) {
	for i := 0; i < num; i++ {
		go d.receive(ctx, queue)
	}
}

func (d *manager) collector(ctx context.Context) {
	defer close(d.trainCh)
	for {
		select {
		case in := <-d.trainCh:
			q, ok := d.queue[in.Dataset]
			if !ok {
				queue := iqueue.New()
				go queue.Loop()
				d.worker(ctx, queue, runtime.NumCPU()*workerMul)
				d.queue[in.Dataset] = queue
				q = queue
			}
			q.Send(in)
		case <-ctx.Done():
			d.mtx.Lock()
			d.closed = true
			d.mtx.Unlock()
			return
		}
	}
}
