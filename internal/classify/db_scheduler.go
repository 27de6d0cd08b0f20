package classify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-knc/knc/internal/logging"
	sampleDb "github.com/go-knc/knc/internal/sample/database"
	"github.com/go-knc/knc/internal/sample/model"
)

// Scheduler options
type dbSchedulerConfig struct {
	maxItemsStored int
	maxStorageTime time.Duration
	rebuildDBTime  time.Duration
}

func newDBScheduler(config dbSchedulerConfig) *dbScheduler {
	return &dbScheduler{opts: config}
}

// The scheduler is responsible for deleting old samples from the DB.
// It can maintain the required amount of data per dataset or delete outdated
// samples depending on the configuration.
type dbScheduler struct {
	opts dbSchedulerConfig
}

// abstraction layer for deleting a group of samples
type deleteSamplesFn func(context.Context, []model.Sample) error

// abstraction layer for fetching samples by dataset
type fetchSamplesByDatasetFn func(string, sampleDb.FilterFn) ([]model.Sample, error)

type fetchKeysFn func() ([]string, error)

type countByDatasetFn func(string) (int, error)

// processOutdatedSamples retrieves processed samples of the dataset that are
// older than the retention period and performs bulk deletion.
func (s *dbScheduler) processOutdatedSamples(
	dataset string,
	fetchFn fetchSamplesByDatasetFn,
	deleteFn deleteSamplesFn,
) error {
	samples, err := fetchFn(dataset, func(sample model.Sample) bool {
		return sample.Status == model.StatusProcessed && time.Since(sample.CreatedAt) > s.opts.maxStorageTime
	})

	if err != nil {
		return fmt.Errorf("unable find samples by dataset %s: %v", dataset, err)
	}

	if err := deleteFn(context.Background(), samples); err != nil {
		return fmt.Errorf("unable delete outdated samples, dataset %s: %v", dataset, err)
	}
	return nil
}

// processOverSizeSamples retrieves all processed samples of the dataset, sorts
// them by creation date and deletes the oldest ones above the size limit.
func (s *dbScheduler) processOverSizeSamples(
	dataset string,
	fetchFn fetchSamplesByDatasetFn,
	deleteFn deleteSamplesFn,
) error {
	samples, err := fetchFn(dataset, func(sample model.Sample) bool {
		return sample.Status == model.StatusProcessed
	})

	if err != nil {
		return fmt.Errorf("unable find samples by dataset %s: %v", dataset, err)
	}

	if len(samples) <= s.opts.maxItemsStored {
		return nil
	}

	// This can be a costly operation for large datasets.
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].CreatedAt.UnixNano() < samples[j].CreatedAt.UnixNano()
	})

	if err := deleteFn(context.Background(), samples[:len(samples)-s.opts.maxItemsStored]); err != nil {
		return fmt.Errorf("unable delete oversize samples, dataset %s: %v", dataset, err)
	}
	return nil
}

// rebuildOutdated gets all dataset keys and checks each dataset for outdated samples
func (s *dbScheduler) rebuildOutdated(
	keysFn fetchKeysFn,
	fetchFn fetchSamplesByDatasetFn,
	deleteFn deleteSamplesFn,
) error {
	keys, err := keysFn()
	if err != nil {
		return fmt.Errorf("unable to fetch dataset keys: %v", err)
	}
	for i := range keys {
		if err := s.processOutdatedSamples(keys[i], fetchFn, deleteFn); err != nil {
			return fmt.Errorf("unable process samples: %v", err)
		}
	}
	return nil
}

// rebuildSize gets all dataset keys and checks the number of stored samples for each dataset
func (s *dbScheduler) rebuildSize(
	keysFn fetchKeysFn,
	countFn countByDatasetFn,
	fetchFn fetchSamplesByDatasetFn,
	deleteFn deleteSamplesFn,
) error {
	keys, err := keysFn()
	if err != nil {
		return fmt.Errorf("unable fetch keys: %v", err)
	}
	for i := range keys {
		length, err := countFn(keys[i])
		if err != nil {
			return fmt.Errorf("unable count by dataset %s: %v", keys[i], err)
		}
		if length > s.opts.maxItemsStored {
			if err := s.processOverSizeSamples(keys[i], fetchFn, deleteFn); err != nil {
				return fmt.Errorf("unable process samples: %v", err)
			}
		}
	}

	return nil
}

// Scheduler for running data cleanup functions in the DB
func (s *dbScheduler) schedule(
	ctx context.Context,
	keysFn fetchKeysFn,
	countFn countByDatasetFn,
	fetchFn fetchSamplesByDatasetFn,
	deleteFn deleteSamplesFn,
) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(s.opts.rebuildDBTime)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.opts.maxItemsStored > 0 {
				if err := s.rebuildSize(keysFn, countFn, fetchFn, deleteFn); err != nil {
					logger.Errorf("unable db rebuild size: %v", err)
				}
			}
			if s.opts.maxStorageTime > 0 {
				if err := s.rebuildOutdated(keysFn, fetchFn, deleteFn); err != nil {
					logger.Errorf("unable db rebuild outdated: %v", err)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
