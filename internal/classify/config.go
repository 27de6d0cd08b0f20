package classify

import (
	"time"
)

type Config struct {
	// Timer for performing data cleaning operations in the DB
	RebuildDBTime time.Duration `envconfig:"KNC_CLASSIFY_REBUILD_DB_TIME" default:"15s"`
	// Minimal number of samples a dataset needs before predictions are served
	MinSamples int `envconfig:"KNC_CLASSIFY_MIN_SAMPLES"`
	// maximum number of samples in the DB for each dataset
	MaxItemsStored int `envconfig:"KNC_CLASSIFY_MAX_ITEMS_STORED" default:"1000000"`
	// maximum retention period for samples in the DB for each dataset
	MaxStorageTime time.Duration `envconfig:"KNC_CLASSIFY_MAX_STORAGE_TIME" default:"0s"`
	// Critical buffer size in dbTxExecutor where data is flushed to disk
	DbFlushSize int `envconfig:"KNC_DB_FLUSH_SIZE" default:"10"`
	// Critical time of life in dbTxExecutor buffer in which data to be flushed to disk
	DbFlushTime time.Duration `envconfig:"KNC_DB_FLUSH_TIME" default:"5s"`
	// Winning vote share below which a prediction is reported
	ConfidenceThreshold float64 `envconfig:"KNC_CLASSIFY_CONFIDENCE_THRESHOLD" default:"0.5"`
}
