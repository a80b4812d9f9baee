package stores

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/persist"
	"github.com/vango-dev/usershell/pkg/reactive"
	"github.com/vango-dev/usershell/pkg/storage"
)

// Durable storage keys.
const (
	KeyCounter = "CounterStore"
	KeyTheme   = "ThemeStore"
	KeyLocale  = "LocaleStore"
	KeyToken   = "token"
)

// RootOptions configures NewRoot.
type RootOptions struct {
	// API is the user backend. Required for UserStore requests.
	API UserAPI

	// Storage persists theme, locale and counter. Nil disables persistence.
	Storage storage.Storage

	// ThemeApplier is called with the theme after hydration and every change.
	ThemeApplier ThemeApplier

	Logger *zap.Logger
}

// Root is the container of all domain stores.
type Root struct {
	User    *UserStore
	Theme   *ThemeStore
	Locale  *LocaleStore
	Counter *CounterStore

	persisters []*persist.Persister
}

// NewRoot builds every store and loads persisted state. Storage failures
// are logged and leave defaults in place.
func NewRoot(ctx context.Context, opts RootOptions) (*Root, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	storeOpts := []reactive.Option{reactive.WithLogger(logger)}

	r := &Root{
		User:    NewUserStore(opts.API, logger),
		Theme:   NewThemeStore(opts.ThemeApplier, storeOpts...),
		Locale:  NewLocaleStore(storeOpts...),
		Counter: NewCounterStore(storeOpts...),
	}

	if opts.Storage != nil {
		attachments := []func() (*persist.Persister, error){
			func() (*persist.Persister, error) {
				return persist.Attach(ctx, r.Theme.store, persistOptions(opts.Storage, logger, KeyTheme, "theme"))
			},
			func() (*persist.Persister, error) {
				return persist.Attach(ctx, r.Locale.store, persistOptions(opts.Storage, logger, KeyLocale, "locale"))
			},
			func() (*persist.Persister, error) {
				return persist.Attach(ctx, r.Counter.store, persistOptions(opts.Storage, logger, KeyCounter, "count", "history"))
			},
		}
		for _, attach := range attachments {
			p, err := attach()
			if err != nil {
				r.Close()
				return nil, err
			}
			r.persisters = append(r.persisters, p)
		}
	}

	r.Theme.Apply()
	return r, nil
}

func persistOptions(s storage.Storage, logger *zap.Logger, name string, fields ...string) persist.Options {
	return persist.Options{
		Name:    name,
		Fields:  fields,
		Storage: s,
		Logger:  logger,
	}
}

// Flush waits until every persisted change has been written.
func (r *Root) Flush(ctx context.Context) error {
	for _, p := range r.persisters {
		if err := p.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close writes pending changes and detaches persistence.
func (r *Root) Close() error {
	var errs []error
	for _, p := range r.persisters {
		errs = append(errs, p.Close())
	}
	r.persisters = nil
	return stderrors.Join(errs...)
}

type rootKey struct{}

// WithRoot returns a context carrying r.
func WithRoot(ctx context.Context, r *Root) context.Context {
	return context.WithValue(ctx, rootKey{}, r)
}

// FromContext returns the Root stored by WithRoot.
func FromContext(ctx context.Context) (*Root, bool) {
	r, ok := ctx.Value(rootKey{}).(*Root)
	return r, ok && r != nil
}

// MustFromContext returns the Root stored by WithRoot and panics with
// error E001 when there is none.
func MustFromContext(ctx context.Context) *Root {
	r, ok := FromContext(ctx)
	if !ok {
		panic(errors.New("E001"))
	}
	return r
}
