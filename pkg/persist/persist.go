package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/reactive"
	"github.com/vango-dev/usershell/pkg/storage"
)

// DefaultVersion is the snapshot version used when Options.Version is zero.
const DefaultVersion = 1

// DefaultWriteTimeout bounds each background write.
const DefaultWriteTimeout = 5 * time.Second

// Options configures Attach.
type Options struct {
	// Name is the storage key of the snapshot.
	Name string

	// Fields lists the JSON field names to persist. Fixed at attach time.
	Fields []string

	Storage storage.Storage

	// Version tags the snapshot. Records with a different version are
	// ignored on load. Default: DefaultVersion.
	Version int

	// WriteTimeout bounds each background write. Default: DefaultWriteTimeout.
	WriteTimeout time.Duration

	Logger *zap.Logger
}

// snapshot is the stored record.
type snapshot struct {
	Version int                        `json:"version"`
	State   map[string]json.RawMessage `json:"state"`
}

// Persister keeps one store's snapshot in sync with its state.
type Persister struct {
	name    string
	version int
	storage storage.Storage
	logger  *zap.Logger
	timeout time.Duration

	// ctx carries values from Attach but is never cancelled by it.
	ctx context.Context

	// apply decodes a snapshot into the store.
	apply func(raw []byte) bool

	unsubscribe func()
	stopWatch   func()

	mu sync.Mutex
	// last is the record most recently queued, written or loaded.
	last []byte
	// pending is the record waiting for the writer; nil when idle.
	pending []byte
	// written is the record this persister wrote most recently.
	written []byte
	closed  bool

	kick    chan struct{}
	flushes chan chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// Attach loads the snapshot for opts.Name into store and keeps it updated
// on every subsequent change. Storage failures never fail Attach; only
// invalid options do.
func Attach[S any](ctx context.Context, store *reactive.Store[S], opts Options) (*Persister, error) {
	if opts.Name == "" {
		return nil, errors.New("E004").WithDetail("persistence name is empty")
	}
	if opts.Storage == nil {
		return nil, errors.New("E081").WithDetail("no storage for " + opts.Name)
	}
	fields, err := resolveFields[S](opts.Fields)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := opts.Version
	if version == 0 {
		version = DefaultVersion
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}

	p := &Persister{
		name:    opts.Name,
		version: version,
		storage: opts.Storage,
		logger:  logger.With(zap.String("snapshot", opts.Name)),
		timeout: timeout,
		ctx:     context.WithoutCancel(ctx),
		kick:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
	}
	p.apply = func(raw []byte) bool {
		return hydrate(store, fields, raw, version, p.logger)
	}

	raw, err := opts.Storage.Get(ctx, opts.Name)
	if err != nil {
		p.logger.Warn("snapshot read failed, using defaults", zap.Error(err))
	} else if raw != nil {
		p.last = raw
		p.apply(raw)
	}

	p.wg.Add(1)
	go p.writeLoop()

	p.unsubscribe = store.Subscribe(func(state S) {
		fieldsState, err := encodeFields(state, fields)
		if err != nil {
			p.logger.Error("snapshot encode failed", zap.Error(err))
			return
		}
		data, err := json.Marshal(snapshot{Version: version, State: fieldsState})
		if err != nil {
			p.logger.Error("snapshot encode failed", zap.Error(err))
			return
		}
		p.enqueue(data)
	})

	if w, ok := opts.Storage.(storage.Watcher); ok {
		stop, err := w.Watch(opts.Name, p.reload)
		if err != nil {
			p.logger.Warn("snapshot watch unavailable", zap.Error(err))
		} else {
			p.stopWatch = stop
		}
	}

	return p, nil
}

// hydrate applies every decodable whitelisted field of raw to store.
func hydrate[S any](store *reactive.Store[S], fields []field, raw []byte, version int, logger *zap.Logger) bool {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Warn("snapshot malformed, using defaults", zap.Error(err))
		return false
	}
	if snap.Version != version {
		logger.Warn("snapshot version mismatch, using defaults",
			zap.Int("stored", snap.Version),
			zap.Int("expected", version),
		)
		return false
	}

	type decoded struct {
		field field
		value reflect.Value
	}
	var values []decoded
	for _, f := range fields {
		data, ok := snap.State[f.name]
		if !ok {
			continue
		}
		v, err := decodeField(f, data)
		if err != nil {
			logger.Warn("snapshot field invalid, keeping default",
				zap.String("field", f.name),
				zap.Error(err),
			)
			continue
		}
		values = append(values, decoded{field: f, value: v})
	}
	for key := range snap.State {
		if !hasField(fields, key) {
			logger.Debug("snapshot field ignored", zap.String("field", key))
		}
	}
	if len(values) == 0 {
		return false
	}

	return store.Update("hydrate", func(s *S) {
		target := reflect.ValueOf(s).Elem()
		for _, d := range values {
			target.FieldByIndex(d.field.index).Set(d.value)
		}
	})
}

func hasField(fields []field, name string) bool {
	for _, f := range fields {
		if f.name == name {
			return true
		}
	}
	return false
}

// enqueue hands data to the writer unless it is already stored or queued.
func (p *Persister) enqueue(data []byte) {
	p.mu.Lock()
	if p.closed || bytes.Equal(data, p.last) {
		p.mu.Unlock()
		return
	}
	p.last = data
	p.pending = data
	p.mu.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// reload re-reads the snapshot after an external change.
func (p *Persister) reload() {
	raw, err := p.storage.Get(p.ctx, p.name)
	if err != nil {
		p.logger.Warn("snapshot reload failed", zap.Error(err))
		return
	}
	if raw == nil {
		return
	}

	p.mu.Lock()
	if p.closed || bytes.Equal(raw, p.last) || bytes.Equal(raw, p.written) {
		p.mu.Unlock()
		return
	}
	// The external record is newer than anything still queued.
	p.last = raw
	p.pending = nil
	p.mu.Unlock()

	if p.apply(raw) {
		p.logger.Debug("snapshot reloaded after external change")
	}
}

// writeLoop is the single writer for this snapshot.
func (p *Persister) writeLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.done:
			p.writePending()
			return
		case <-p.kick:
			p.writePending()
		case reply := <-p.flushes:
			p.writePending()
			close(reply)
		}
	}
}

// writePending writes the latest queued record, if any.
func (p *Persister) writePending() {
	p.mu.Lock()
	data := p.pending
	p.pending = nil
	if data != nil {
		p.written = data
	}
	p.mu.Unlock()

	if data == nil {
		return
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	if err := p.storage.Set(ctx, p.name, data); err != nil {
		p.logger.Warn("snapshot write failed", zap.Error(err))
		return
	}
	p.logger.Debug("snapshot written", zap.Int("bytes", len(data)))
}

// Flush blocks until every change made before the call is written, or ctx
// is done.
func (p *Persister) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case p.flushes <- reply:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops observing the store, writes any pending change and stops the
// writer. Calling Close more than once is harmless.
func (p *Persister) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.unsubscribe()
	if p.stopWatch != nil {
		p.stopWatch()
	}

	close(p.done)
	p.wg.Wait()
	return nil
}

// Name returns the snapshot key.
func (p *Persister) Name() string {
	return p.name
}
