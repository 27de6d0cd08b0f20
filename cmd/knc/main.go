package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-knc/knc/internal/buildinfo"
	knc "github.com/go-knc/knc/internal/config"
	"github.com/go-knc/knc/internal/evaluate"
	"github.com/go-knc/knc/internal/logging"
	"github.com/go-knc/knc/internal/predict"
	"github.com/go-knc/knc/internal/server"
	"github.com/go-knc/knc/internal/setup"
	"github.com/go-knc/knc/internal/shutdown"
	"github.com/go-knc/knc/internal/stats"
	"github.com/go-knc/knc/internal/train"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}

	defer done()
}

func run(ctx context.Context, cancel func()) error {
	var (
		shutdownCh    chan error
		shutdownCount = 2
	)
	config := knc.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	if config.SvcModeType == knc.SvcModeTypeScrape {
		shutdownCount++
	}

	shutdownCh = make(chan error, shutdownCount)
	reporter, err := env.ProvideReporter()(shutdownCh)
	if err != nil {
		return fmt.Errorf("reporter provider function error: %w", err)
	}
	classify, err := env.ProvideClassify()(reporter, shutdownCh)
	if err != nil {
		return fmt.Errorf("classify provider function error: %w", err)
	}

	if config.SvcModeType == knc.SvcModeTypeScrape {
		scrapper, err := env.ProvideScrapper()(classify, shutdownCh)
		if err != nil {
			return fmt.Errorf("scrapperCaller: %w", err)
		}
		if err := scrapper.Run(ctx); err != nil {
			return fmt.Errorf("scrapperRun: %w", err)
		}
	} else if err := classify.Run(ctx); err != nil {
		return fmt.Errorf("classify.Run: %w", err)
	}

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("sever.New: %w", err)
	}

	mux := http.NewServeMux()

	predictHandler, err := predict.NewHandler(&config.Predict, classify)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}

	evaluateHandler, err := evaluate.NewHandler(&config.Evaluate, classify)
	if err != nil {
		return fmt.Errorf("evaluate.NewHandler: %w", err)
	}

	exporter, err := stats.NewExporter()
	if err != nil {
		return fmt.Errorf("stats.NewExporter: %w", err)
	}

	mux.Handle("/predict", predictHandler)
	mux.Handle("/evaluate", evaluateHandler)
	mux.Handle("/metrics", exporter)
	mux.Handle("/health", server.HandleHealth(ctx))

	if config.SvcModeType == knc.SvcModeTypeCollect {
		trainHandler, err := train.NewHandler(&config.Train, classify)
		if err != nil {
			return fmt.Errorf("train.NewHandler: %w", err)
		}
		mux.Handle("/train", trainHandler)
	}

	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			cancel()
		}
	}()

	go func() {
		if err := http.ListenAndServe("0.0.0.0:8080", nil); err != nil {
			cancel()
		}
	}()

	return <-shutdownCh
}
