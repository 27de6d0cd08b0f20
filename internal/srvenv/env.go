package srvenv

import (
	"context"

	"github.com/go-knc/knc/internal/classifier"
	"github.com/go-knc/knc/internal/classify"
	"github.com/go-knc/knc/internal/database"
	"github.com/go-knc/knc/internal/report"
	"github.com/go-knc/knc/internal/scrape"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database   *database.DB
	classifier classifier.ProvideFn
	classify   classify.ProvideFn
	reporter   report.ProvideFn
	scrapper   scrape.ProvideFn
}

func (s *SrvEnv) ProvideScrapper() scrape.ProvideFn {
	return s.scrapper
}

func (s *SrvEnv) ProvideReporter() report.ProvideFn {
	return s.reporter
}

func (s *SrvEnv) ProvideClassify() classify.ProvideFn {
	return s.classify
}

func (s *SrvEnv) ProvideClassifier() classifier.ProvideFn {
	return s.classifier
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func WithScrapper(fn scrape.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.scrapper = fn
		return s
	}
}

func WithReporter(fn report.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.reporter = fn
		return s
	}
}

func WithClassify(fn classify.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.classify = fn
		return s
	}
}

func WithClassifier(fn classifier.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.classifier = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
