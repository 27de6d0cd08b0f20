package report

import (
	"encoding/json"
	"time"

	"github.com/go-knc/knc/internal/httputil"
)

type Config struct {
	AllowReports         bool          `envconfig:"KNC_ALLOW_REPORTS" default:"true"`
	Targets              Targets       `envconfig:"KNC_REPORT_TARGETS"`
	Interval             time.Duration `envconfig:"KNC_REPORT_INTERVAL" default:"5s"`
	MaxConcurrentRequest int           `envconfig:"KNC_REPORT_MAX_CONCURRENT_REQUEST" default:"64"`
}

type Targets []Target

func (ts *Targets) Decode(value string) error {
	targets := []Target{}
	if err := json.Unmarshal([]byte(value), &targets); err != nil {
		return err
	}
	*ts = targets
	return nil
}

type Target struct {
	URL        string                    `json:"url"`
	Dataset    string                    `json:"dataset"`
	HTTPConfig httputil.HTTPClientConfig `json:"httpConfig"`
}
