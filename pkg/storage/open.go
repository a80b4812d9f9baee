package storage

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vango-dev/usershell/internal/errors"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver string

	// Path is the directory (file) or database file (sqlite).
	Path string

	// Bucket, Prefix, Region and Endpoint configure the s3 driver.
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string

	Logger *zap.Logger
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		s, err := NewFile(opts.Path, WithFileLogger(logger))
		if err != nil {
			return nil, errors.New("E081").WithDetail("file storage at " + opts.Path).Wrap(err)
		}
		return s, nil
	case DriverSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "usershell.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.New("E081").WithDetail("sqlite storage at " + path).Wrap(err)
		}
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, errors.New("E081").WithDetail("sqlite storage at " + path).Wrap(err)
		}
		return s, nil
	case DriverS3:
		if opts.Bucket == "" {
			return nil, errors.New("E081").WithDetail("s3 storage requires a bucket")
		}
		return NewS3(NewS3Client(opts.Region, opts.Endpoint), opts.Bucket, opts.Prefix), nil
	default:
		return nil, errors.New("E080").WithDetail("unknown driver " + opts.Driver)
	}
}
