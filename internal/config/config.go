package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/usershell/internal/errors"
)

// ConfigFileNames are searched for, in order, in each directory.
var ConfigFileNames = []string{"usershell.json", "usershell.yaml", "usershell.yml"}

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = "10s"

	// DefaultTokenKey is the storage key of the auth token.
	DefaultTokenKey = "token"

	// DefaultStorageDriver is the default durable storage backend.
	DefaultStorageDriver = "file"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultServiceName is the default telemetry service name.
	DefaultServiceName = "usershell"

	// DefaultMockAddr is the default mock backend listen address.
	DefaultMockAddr = "127.0.0.1:8080"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL  = "USERSHELL_BASE_URL"
	EnvTokenKey = "USERSHELL_TOKEN_KEY"
)

// Config represents the complete usershell configuration.
type Config struct {
	// BaseURL is the REST API root. Empty means relative request paths.
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`

	// Timeout is the per-request timeout (e.g., "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// TokenKey is the storage key holding the auth token.
	TokenKey string `json:"tokenKey,omitempty" yaml:"tokenKey,omitempty"`

	// Storage selects the durable storage backend.
	Storage StorageConfig `json:"storage,omitempty" yaml:"storage,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Telemetry contains tracing configuration.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`

	// Mock contains mock backend configuration.
	Mock MockConfig `json:"mock,omitempty" yaml:"mock,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// StorageConfig contains durable storage settings.
type StorageConfig struct {
	// Driver is one of memory, file, sqlite or s3.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`

	// Path is the state directory (file) or database path (sqlite).
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the s3 driver.
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Development enables human-readable console output.
	Development bool `json:"development,omitempty" yaml:"development,omitempty"`
}

// TelemetryConfig contains tracing settings.
type TelemetryConfig struct {
	// OTLPEndpoint is the OTLP/HTTP collector host:port. Empty disables
	// export.
	OTLPEndpoint string `json:"otlpEndpoint,omitempty" yaml:"otlpEndpoint,omitempty"`

	// Insecure sends traces over plain HTTP.
	Insecure bool `json:"insecure,omitempty" yaml:"insecure,omitempty"`

	// ServiceName is reported on every span.
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
}

// MockConfig contains mock backend settings.
type MockConfig struct {
	// Addr is the listen address of "usershell mock-server".
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultStateDir returns the directory used for local state.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "usershell")
	}
	return ".usershell"
}

// Load reads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E141").
		WithDetail("No usershell.json or usershell.yaml found in " + dir)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No config file at " + path).
				WithSuggestion("Check the --config path")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	default:
		return nil, errors.New("E123").WithDetail("Unsupported extension " + ext)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML for
// .yaml/.yml files and JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
	if c.TokenKey == "" {
		c.TokenKey = DefaultTokenKey
	}

	// Storage
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Path == "" && (c.Storage.Driver == "file" || c.Storage.Driver == "sqlite") {
		c.Storage.Path = DefaultStateDir()
	}
	if c.Storage.Driver == "s3" && c.Storage.Prefix == "" {
		c.Storage.Prefix = "usershell/"
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.Mock.Addr == "" {
		c.Mock.Addr = DefaultMockAddr
	}
}

// ApplyEnv overrides fields from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvTokenKey); v != "" {
		c.TokenKey = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("E121").
				WithDetail("baseURL " + c.BaseURL + " is not an absolute http(s) URL")
		}
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return errors.New("E122").
			WithDetail("timeout " + c.Timeout + " is not a positive duration")
	}

	switch c.Storage.Driver {
	case "memory", "file", "sqlite":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("E081").WithDetail("storage.bucket is required for the s3 driver")
		}
	default:
		return errors.New("E080").WithDetail("storage.driver " + c.Storage.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E124").WithDetail("log.level " + c.Log.Level)
	}

	return nil
}

// TimeoutDuration returns the parsed request timeout, or the default when
// it does not parse.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultTimeout)
	return d
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find one holding a config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No usershell config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// Resolve loads the configuration for the CLI: from path when given,
// otherwise from the nearest config file above the working directory,
// otherwise defaults. Environment overrides are applied and the result is
// validated.
func Resolve(path string) (*Config, error) {
	cfg, err := resolveFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFile(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return New(), nil
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.HasCode(err, "E141") {
			return New(), nil
		}
		return nil, err
	}
	return Load(root)
}
