package evaluate

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"KNC_EVALUATE_REQUEST_TIMEOUT" default:"120s"`
	MaxDataItemsLen int           `envconfig:"KNC_EVALUATE_MAX_DATA_ITEMS_LEN" default:"10000"`
}
