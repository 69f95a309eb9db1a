package main

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/definitions"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/loader"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/observability"
)

// envPrefix namespaces environment overrides: STRATA_LOG_LEVEL,
// STRATA_TRACING_ENABLED and so on.
const envPrefix = "STRATA"

// flagKeys maps persistent flags to settings keys.
var flagKeys = map[string]string{
	"file":              "definitions_file",
	"output":            "output_format",
	"workers":           "workers",
	"log-level":         "log_level",
	"log-encoding":      "log_encoding",
	"tracing":           "tracing.enabled",
	"trace-sample-rate": "tracing.sample_rate",
	"metrics":           "metrics.enabled",
}

// app carries the state of one CLI invocation.
type app struct {
	errOut io.Writer
	v      *viper.Viper

	configFile string
	settings   *config.Settings
	runID      string
	log        *zap.Logger
	collector  *metrics.Collector
	shutdown   func(context.Context) error
}

func newApp(stderr io.Writer) *app {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &app{errOut: stderr, v: v}
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		// Lookup cannot fail: every name is registered by newRootCmd.
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}
}

// loadSettings layers changed flags over STRATA_* variables over the
// --config file over defaults.
func (a *app) loadSettings() (*config.Settings, error) {
	base := config.NewSettings()
	if a.configFile != "" {
		loaded, err := config.Load(a.configFile)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	a.v.SetDefault("definitions_file", base.DefinitionsFile)
	a.v.SetDefault("output_format", base.OutputFormat)
	a.v.SetDefault("workers", base.Workers)
	a.v.SetDefault("log_level", base.LogLevel)
	a.v.SetDefault("log_encoding", base.LogEncoding)
	a.v.SetDefault("tracing.enabled", base.Tracing.Enabled)
	a.v.SetDefault("tracing.sample_rate", base.Tracing.SampleRate)
	a.v.SetDefault("metrics.enabled", base.Metrics.Enabled)

	var s config.Settings
	if err := a.v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setup reads settings and starts logging, tracing and metrics.
func (a *app) setup() error {
	s, err := a.loadSettings()
	if err != nil {
		return err
	}
	a.settings = s

	l, err := logger.New(logger.Config{
		Level:    s.LogLevel,
		Encoding: s.LogEncoding,
		Writer:   a.errOut,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize logger")
	}
	logger.Set(l)
	a.runID = uuid.NewString()
	a.log = l.With(zap.String(string(logger.RunIDKey), a.runID))

	tc := observability.DefaultTracingConfig()
	tc.Enabled = s.Tracing.Enabled
	tc.SamplingRate = s.Tracing.SampleRate
	tc.ServiceVersion = version
	tc.Writer = a.errOut
	shutdown, err := observability.Initialize(tc)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to initialize tracing")
	}
	a.shutdown = shutdown

	if s.Metrics.Enabled {
		a.collector = metrics.NewCollector(prometheus.NewRegistry())
	}

	a.log.Debug("settings loaded",
		zap.String("definitions_file", s.DefinitionsFile),
		zap.String("output_format", s.OutputFormat),
		zap.Int("workers", s.GetWorkers()),
		zap.Bool("tracing", s.Tracing.Enabled),
		zap.Bool("metrics", s.Metrics.Enabled))
	return nil
}

// resolve loads and flattens the configured definitions file.
func (a *app) resolve(ctx context.Context) ([]definitions.Resolved, error) {
	ctx = logger.ContextWithRunID(ctx, a.runID)
	opts := []loader.Option{
		loader.WithLogger(a.log),
		loader.WithWorkers(a.settings.GetWorkers()),
	}
	if a.collector != nil {
		opts = append(opts, loader.WithMetrics(a.collector))
	}
	return loader.New(opts...).Resolve(ctx, a.settings.DefinitionsFile)
}

// logger returns the run logger, or the global one before setup.
func (a *app) logger() *zap.Logger {
	if a.log != nil {
		return a.log
	}
	return logger.Get()
}

// close flushes traces, metrics and logs.
func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger().Warn("failed to shut down tracing", zap.Error(err))
		}
	}
	if a.collector != nil {
		if err := a.collector.WriteText(a.errOut); err != nil {
			a.logger().Warn("failed to write metrics", zap.Error(err))
		}
	}
	_ = a.logger().Sync()
}
