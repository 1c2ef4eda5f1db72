package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
)

const (
	// DefaultAddr is the listen address of `vtree serve`.
	DefaultAddr = "localhost:7070"

	// DefaultPath is the WebSocket endpoint.
	DefaultPath = "/ws"

	// DefaultMetricsPath is where Prometheus metrics are exposed.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace prefixes every metric name.
	DefaultNamespace = "vtree"

	// DefaultApp is the demo rendered when none is configured.
	DefaultApp = "counter"
)

// FileNames are the config files LoadFromDir looks for, in order.
var FileNames = []string{"vtree.json", "vtree.yaml", "vtree.yml", "vtree.toml"}

// Config is the complete vtree configuration. Durations are strings in
// time.ParseDuration form so that every file format spells them the same.
type Config struct {
	Log      LogConfig      `json:"log" yaml:"log" toml:"log"`
	Serve    ServeConfig    `json:"serve" yaml:"serve" toml:"serve"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics" toml:"metrics"`
	Tracing  TracingConfig  `json:"tracing" yaml:"tracing" toml:"tracing"`
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot" toml:"snapshot"`
	Demo     DemoConfig     `json:"demo" yaml:"demo" toml:"demo"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" yaml:"level" toml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" toml:"format"`
}

// ServeConfig configures the remote host server.
type ServeConfig struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	Path         string `json:"path" yaml:"path" toml:"path"`
	ReadTimeout  string `json:"readTimeout" yaml:"readTimeout" toml:"readTimeout"`
	WriteTimeout string `json:"writeTimeout" yaml:"writeTimeout" toml:"writeTimeout"`

	// ReadLimit caps a single inbound WebSocket message in bytes.
	ReadLimit int64 `json:"readLimit" yaml:"readLimit" toml:"readLimit"`
}

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Namespace string `json:"namespace" yaml:"namespace" toml:"namespace"`
	Path      string `json:"path" yaml:"path" toml:"path"`
}

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	TracerName string `json:"tracerName" yaml:"tracerName" toml:"tracerName"`
}

// SnapshotConfig selects where snapshots are written.
type SnapshotConfig struct {
	// Dir is used when S3.Bucket is empty.
	Dir string `json:"dir" yaml:"dir" toml:"dir"`

	// Format is json or yaml.
	Format string   `json:"format" yaml:"format" toml:"format"`
	S3     S3Config `json:"s3" yaml:"s3" toml:"s3"`
}

// S3Config configures the S3 snapshot store.
type S3Config struct {
	Bucket   string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Prefix   string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Region   string `json:"region" yaml:"region" toml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
}

// DemoConfig picks the app rendered by `demo` and `serve`.
type DemoConfig struct {
	App string `json:"app" yaml:"app" toml:"app"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr:         DefaultAddr,
			Path:         DefaultPath,
			ReadTimeout:  "60s",
			WriteTimeout: "10s",
			ReadLimit:    64 * 1024,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: "github.com/vango-dev/vtree",
		},
		Snapshot: SnapshotConfig{
			Dir:    "snapshots",
			Format: "json",
		},
		Demo: DemoConfig{
			App: DefaultApp,
		},
	}
}

// LoadFromDir loads the first of FileNames found in dir. When none exists
// it returns the defaults.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return New(), nil
}

// Load reads configuration from path. The format follows the extension.
// Keys absent from the file keep their defaults; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigNotFound).
				WithLocation(path, 0)
		}
		return nil, errors.New(errors.ConfigParse).WithLocation(path, 0).Wrap(err)
	}

	cfg := New()
	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return errors.New(errors.ConfigParse).WithLocation(path, 0).Wrap(err)
		}

	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return errors.New(errors.ConfigParse).WithLocation(path, 0).Wrap(err)
		}

	case ".toml":
		meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c)
		if err != nil {
			line := 0
			var perr toml.ParseError
			if stderrors.As(err, &perr) {
				line = perr.Position.Line
			}
			return errors.New(errors.ConfigParse).WithLocation(path, line).Wrap(err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ConfigInvalid).
				WithLocation(path, 0).
				WithDetailf("Unknown key %q.", undecoded[0].String())
		}

	default:
		return errors.New(errors.ConfigParse).
			WithLocation(path, 0).
			WithDetailf("Unsupported config extension %q.", ext)
	}
	return nil
}

// applyDefaults fills in values a file may have blanked out.
func (c *Config) applyDefaults() {
	d := New()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	if c.Serve.Path == "" {
		c.Serve.Path = d.Serve.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = d.Tracing.TracerName
	}
	if c.Snapshot.Format == "" {
		c.Snapshot.Format = d.Snapshot.Format
	}
	if c.Demo.App == "" {
		c.Demo.App = d.Demo.App
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		e := errors.New(errors.ConfigInvalid).WithDetailf(format, args...)
		if c.configPath != "" {
			e.WithLocation(c.configPath, 0)
		}
		return e
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q.", c.Log.Format)
	}
	for name, v := range map[string]string{
		"serve.readTimeout":  c.Serve.ReadTimeout,
		"serve.writeTimeout": c.Serve.WriteTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return invalid("%s must be a positive duration, got %q.", name, v)
		}
	}
	if !strings.HasPrefix(c.Serve.Path, "/") {
		return invalid("serve.path must start with /, got %q.", c.Serve.Path)
	}
	if c.Serve.ReadLimit <= 0 {
		return invalid("serve.readLimit must be positive.")
	}
	if c.Metrics.Path == c.Serve.Path {
		return invalid("metrics.path and serve.path must differ.")
	}
	if !slices.Contains([]string{"json", "yaml"}, c.Snapshot.Format) {
		return invalid("snapshot.format must be json or yaml, got %q.", c.Snapshot.Format)
	}
	if c.Snapshot.S3.Bucket == "" && c.Snapshot.Dir == "" {
		return invalid("snapshot.dir or snapshot.s3.bucket must be set.")
	}
	return nil
}

// Path returns the path where the config was loaded from, or "" for
// defaults.
func (c *Config) Path() string {
	return c.configPath
}

// ReadTimeout returns serve.readTimeout. Call Validate first.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Serve.ReadTimeout)
	return d
}

// WriteTimeout returns serve.writeTimeout. Call Validate first.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Serve.WriteTimeout)
	return d
}

// Encode renders the config in the given format: json, yaml or toml.
func (c *Config) Encode(format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(c)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("config: unknown format %q", format)
	}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return level, nil
}

// NewLogger builds the logger described by the log section, writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
