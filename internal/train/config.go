package train

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"KNC_TRAIN_REQUEST_TIMEOUT" default:"60s"`
}
