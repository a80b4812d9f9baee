package main

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/vango-dev/usershell/internal/config"
	"github.com/vango-dev/usershell/internal/logging"
	"github.com/vango-dev/usershell/internal/telemetry"
	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/httpclient"
	"github.com/vango-dev/usershell/pkg/i18n"
	"github.com/vango-dev/usershell/pkg/storage"
	"github.com/vango-dev/usershell/pkg/stores"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	storage storage.Storage
	api     *api.Client
	root    *stores.Root
	tr      *i18n.Translator
	out     *printer
	metrics *prometheus.Registry

	stopSync func()
	shutdown telemetry.ShutdownFunc
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.driver != "" {
		cfg.Storage.Driver = flags.driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openApp(ctx context.Context, flags *globalFlags, w io.Writer) (_ *app, err error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	a.logger, err = logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	tp, shutdown, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		return nil, err
	}
	a.shutdown = shutdown

	a.storage, err = storage.Open(ctx, storage.Options{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		Bucket:   cfg.Storage.Bucket,
		Prefix:   cfg.Storage.Prefix,
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Logger:   logging.Named(a.logger, "storage"),
	})
	if err != nil {
		return nil, err
	}

	a.metrics = prometheus.NewRegistry()
	hc := httpclient.New(
		httpclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.TimeoutDuration()},
		httpclient.WithLogger(logging.Named(a.logger, "http")),
		httpclient.WithInterceptors(
			httpclient.Tracing(tp),
			httpclient.Metrics(httpclient.MetricsConfig{Registry: a.metrics}),
			httpclient.RequestID(),
			httpclient.Bearer(httpclient.StorageToken(a.storage, cfg.TokenKey)),
			httpclient.Logging(logging.Named(a.logger, "http")),
		),
	)
	a.api = api.New(hc)

	a.tr, err = i18n.New(language.SimplifiedChinese)
	if err != nil {
		return nil, err
	}
	a.out = newPrinter(w, a.tr)

	a.root, err = stores.NewRoot(ctx, stores.RootOptions{
		API:          a.api,
		Storage:      a.storage,
		ThemeApplier: a.out.applyTheme,
		Logger:       logging.Named(a.logger, "stores"),
	})
	if err != nil {
		return nil, err
	}
	a.stopSync = i18n.SyncLocale(a.root.Locale, a.tr)

	return a, nil
}

// close writes pending store changes and releases every resource.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.stopSync != nil {
		a.stopSync()
	}
	if a.root != nil {
		errs = append(errs, a.root.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	if a.logger != nil {
		a.logMetrics()
		_ = a.logger.Sync()
	}
	return stderrors.Join(errs...)
}

// withApp opens the app for cmd, runs fn and closes the app.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, flags, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		err = stderrors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	return fn(stores.WithRoot(ctx, a.root), a)
}

// logMetrics writes the request counters of this run at debug level.
func (a *app) logMetrics() {
	if a.metrics == nil || !a.logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	families, err := a.metrics.Gather()
	if err != nil {
		a.logger.Debug("gather http metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.Float64("count", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			a.logger.Debug(mf.GetName(), fields...)
		}
	}
}
