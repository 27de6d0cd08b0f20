package config

import (
	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/classifier/knn"
	"github.com/go-knc/knc/internal/classify"
	"github.com/go-knc/knc/internal/database"
	"github.com/go-knc/knc/internal/evaluate"
	"github.com/go-knc/knc/internal/predict"
	"github.com/go-knc/knc/internal/report"
	"github.com/go-knc/knc/internal/scrape"
	"github.com/go-knc/knc/internal/setup"
	"github.com/go-knc/knc/internal/train"
)

var (
	_ setup.SvcModeConfigProvider    = (*Config)(nil)
	_ setup.DatabaseConfigProvider   = (*Config)(nil)
	_ setup.ClassifierConfigProvider = (*Config)(nil)
	_ setup.ClassifyConfigProvider   = (*Config)(nil)
	_ setup.ReporterConfigProvider   = (*Config)(nil)
	_ setup.ScrapeConfigProvider     = (*Config)(nil)
)

const (
	SvcModeTypeCollect = "COLLECT"
	SvcModeTypeScrape  = "SCRAPE"
)

type Config struct {
	SvcModeType string `envconfig:"KNC_SVC_MODE" default:"COLLECT"`
	SrvAddr     string `envconfig:"KNC_ADDR" default:":8787"`
	Classify    classify.Config
	Train       train.Config
	Predict     predict.Config
	Evaluate    evaluate.Config
	Database    database.Config
	Scrape      scrape.Config
	Classifier  classifier.Config
	Knn         knn.Config
	Report      report.Config
}

func (c Config) SvcMode() string {
	return c.SvcModeType
}

func (c *Config) ClassifyConfig() *classify.Config {
	return &c.Classify
}

func (c *Config) ReportConfig() *report.Config {
	return &c.Report
}

func (c *Config) ScrapeConfig() *scrape.Config {
	return &c.Scrape
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) ClassifierConfig() *classifier.Config {
	return &c.Classifier
}

func (c *Config) KnnConfig() *knn.Config {
	return &c.Knn
}

func (c *Config) TrainConfig() *train.Config {
	return &c.Train
}

func (c *Config) PredictConfig() *predict.Config {
	return &c.Predict
}

func (c *Config) EvaluateConfig() *evaluate.Config {
	return &c.Evaluate
}
