package setup

import (
	"context"
	"fmt"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/classifier/knn"
	"github.com/go-knc/knc/internal/classify"
	"github.com/go-knc/knc/internal/database"
	"github.com/go-knc/knc/internal/logging"
	"github.com/go-knc/knc/internal/report"
	"github.com/go-knc/knc/internal/scrape"
	"github.com/go-knc/knc/internal/srvenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	SvcModeScrape  string = "SCRAPE"
	SvcModeCollect string = "COLLECT"
)

type SvcModeConfigProvider interface {
	SvcMode() string
}

type ClassifyConfigProvider interface {
	ClassifyConfig() *classify.Config
}

type ReporterConfigProvider interface {
	ReportConfig() *report.Config
}

type ScrapeConfigProvider interface {
	ScrapeConfig() *scrape.Config
}

type ClassifierConfigProvider interface {
	ClassifierConfig() *classifier.Config
	KnnConfig() *knn.Config
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db                  *database.DB
		classifierProvideFn classifier.ProvideFn
		reporterProvideFn   report.ProvideFn
		classifyProvideFn   classify.ProvideFn
		scrapperProvideFn   scrape.ProvideFn
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %v", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if reportConfigProvider, ok := config.(ReporterConfigProvider); ok {
		logger.Info("Configuring reporter")

		provideFn, err := ProvideReporterFor(reportConfigProvider, db)
		if err != nil {
			return nil, fmt.Errorf("unable create reporter provide function: %v", err)
		}
		reporterProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithReporter(reporterProvideFn))
	}

	if classifierConfigProvider, ok := config.(ClassifierConfigProvider); ok {
		logger.Info("Configuring classifier")

		provideFn, err := ProvideClassifierFor(classifierConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create classifier provide function: %v", err)
		}
		classifierProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithClassifier(classifierProvideFn))
	}

	if classifyConfigProvider, ok := config.(ClassifyConfigProvider); ok {
		logger.Info("Configuring classify manager")
		classifierConfigProvider, ok := config.(ClassifierConfigProvider)
		if !ok {
			return nil, fmt.Errorf("unable read classifier config")
		}
		reportConfigProvider, ok := config.(ReporterConfigProvider)
		if !ok {
			return nil, fmt.Errorf("unable read report config")
		}
		provideFn, err := ProvideClassifyFor(
			classifyConfigProvider.ClassifyConfig(),
			classifierConfigProvider.KnnConfig(),
			reportConfigProvider.ReportConfig(),
			classifierProvideFn,
			db,
		)
		if err != nil {
			return nil, fmt.Errorf("unable create classify provide function: %v", err)
		}
		classifyProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithClassify(classifyProvideFn))
	}

	if svcModeConfigProvider, ok := config.(SvcModeConfigProvider); ok && svcModeConfigProvider.SvcMode() == SvcModeScrape {
		if scrapeConfigProvider, ok := config.(ScrapeConfigProvider); ok {
			logger.Info("Configuring scrapper")
			provideFn, err := ProvideScrapperFor(scrapeConfigProvider)
			if err != nil {
				return nil, fmt.Errorf("unable create scrapper provide function: %v", err)
			}
			scrapperProvideFn = provideFn
			serverEnvOpts = append(serverEnvOpts, srvenv.WithScrapper(scrapperProvideFn))
		}
	}
	return srvenv.New(serverEnvOpts...), nil
}

func ProvideScrapperFor(provider ScrapeConfigProvider) (scrape.ProvideFn, error) {
	cfg := provider.ScrapeConfig()
	return func(classifyManager classify.Manager, shutdownCh chan<- error) (scrape.Manager, error) {
		return scrape.New(
			classifyManager,
			shutdownCh,
			scrape.WithInterval(cfg.Interval),
			scrape.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			scrape.WithTargetUrls(cfg.Targets),
		)
	}, nil
}

func ProvideReporterFor(provider ReporterConfigProvider, db *database.DB) (report.ProvideFn, error) {
	cfg := provider.ReportConfig()
	return func(shutdownCh chan<- error) (report.Manager, error) {
		return report.New(
			db,
			shutdownCh,
			report.WithMaxConcurrentRequest(cfg.MaxConcurrentRequest),
			report.WithInterval(cfg.Interval),
			report.WithTargets(cfg.Targets),
		)
	}, nil
}

func ProvideClassifyFor(
	cfg *classify.Config,
	knnCfg *knn.Config,
	reportCfg *report.Config,
	provideClassifierFn classifier.ProvideFn,
	db *database.DB,
) (classify.ProvideFn, error) {
	return func(reporter report.Manager, shutdownCh chan<- error) (classify.Manager, error) {
		return classify.New(
			db,
			provideClassifierFn,
			reporter,
			shutdownCh,
			classify.WithRebuildDBTime(cfg.RebuildDBTime),
			classify.WithMinSamples(cfg.MinSamples),
			classify.WithMaxItemsStored(cfg.MaxItemsStored),
			classify.WithMaxStorageTime(cfg.MaxStorageTime),
			classify.WithDBFlushSize(cfg.DbFlushSize),
			classify.WithDBFlushTime(cfg.DbFlushTime),
			classify.WithKNum(knnCfg.KNum),
			classify.WithConfidenceThreshold(cfg.ConfidenceThreshold),
			classify.WithAllowReports(reportCfg.AllowReports),
		)
	}, nil
}

func ProvideClassifierFor(provider ClassifierConfigProvider) (classifier.ProvideFn, error) {
	cfg := provider.ClassifierConfig()
	switch cfg.ClassifierType() {
	case classifier.AlgTypeKNN:
		knnCfg := provider.KnnConfig()
		distFunc, err := knn.DistanceFuncFor(knnCfg.MetricType)
		if err != nil {
			return nil, fmt.Errorf("unable provide distance function: %v", err)
		}
		return func() (classifier.Classifier, error) {
			c, err := knn.New(
				knn.WithMetric(knnCfg.MetricType),
				knn.WithDistance(distFunc),
			)
			if err != nil {
				return nil, fmt.Errorf("unable create knn instance: %v", err)
			}
			return c, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown classifier type: %s", cfg.ClassifierType())
	}
}
