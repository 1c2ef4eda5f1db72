package config

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vtree/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Serve.Addr != DefaultAddr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, DefaultAddr)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.Demo.App != DefaultApp {
		t.Errorf("Demo.App = %q, want %q", cfg.Demo.App, DefaultApp)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.ReadTimeout() != time.Minute || cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.ReadTimeout(), cfg.WriteTimeout())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "vtree.json", `{
  "log": {"level": "debug"},
  "serve": {"addr": ":9000", "readTimeout": "5s"},
  "metrics": {"enabled": true},
  "demo": {"app": "todo"}
}`},
		{"yaml", "vtree.yaml", `
log:
  level: debug
serve:
  addr: ":9000"
  readTimeout: 5s
metrics:
  enabled: true
demo:
  app: todo
`},
		{"toml", "vtree.toml", `
[log]
level = "debug"

[serve]
addr = ":9000"
readTimeout = "5s"

[metrics]
enabled = true

[demo]
app = "todo"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Log.Level != "debug" || cfg.Serve.Addr != ":9000" || !cfg.Metrics.Enabled || cfg.Demo.App != "todo" {
				t.Errorf("cfg = %+v", cfg)
			}
			if cfg.ReadTimeout() != 5*time.Second {
				t.Errorf("ReadTimeout() = %v", cfg.ReadTimeout())
			}
			// Untouched keys keep their defaults.
			if cfg.Serve.Path != DefaultPath || cfg.Log.Format != "text" || cfg.Serve.WriteTimeout != "10s" {
				t.Errorf("defaults lost: %+v", cfg.Serve)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q", cfg.Path())
			}
		})
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil || cfg.Path() != "" {
		t.Fatalf("empty dir: cfg path %q, err %v", cfg.Path(), err)
	}

	writeFile(t, dir, "vtree.toml", "[demo]\napp = \"toml\"\n")
	writeFile(t, dir, "vtree.yaml", "demo:\n  app: yaml\n")
	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Demo.App != "yaml" {
		t.Errorf("Demo.App = %q, want yaml (yaml wins over toml)", cfg.Demo.App)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(dir, "nope.json"), errors.ConfigNotFound},
		{"bad_json", writeFile(t, dir, "bad.json", `{"log": `), errors.ConfigParse},
		{"unknown_json_key", writeFile(t, dir, "k.json", `{"colour": "red"}`), errors.ConfigParse},
		{"unknown_yaml_key", writeFile(t, dir, "k.yaml", "serve:\n  port: 1\n"), errors.ConfigParse},
		{"unknown_toml_key", writeFile(t, dir, "k.toml", "[serve]\nport = 1\n"), errors.ConfigInvalid},
		{"bad_toml", writeFile(t, dir, "bad.toml", "[serve\n"), errors.ConfigParse},
		{"bad_ext", writeFile(t, dir, "vtree.ini", "x=1"), errors.ConfigParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Code(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestTOMLParseErrorHasLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "vtree.toml", "[log]\nlevel = \"info\"\nformat = text\n")

	_, err := Load(path)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("err = %v", err)
	}
	if e.Location == nil || e.Location.Line != 3 {
		t.Errorf("Location = %v, want line 3", e.Location)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"timeout", func(c *Config) { c.Serve.WriteTimeout = "soon" }, "serve.writeTimeout"},
		{"zero_timeout", func(c *Config) { c.Serve.ReadTimeout = "0s" }, "serve.readTimeout"},
		{"path", func(c *Config) { c.Serve.Path = "ws" }, "serve.path"},
		{"read_limit", func(c *Config) { c.Serve.ReadLimit = 0 }, "serve.readLimit"},
		{"clash", func(c *Config) { c.Metrics.Path = c.Serve.Path }, "metrics.path"},
		{"snapshot_format", func(c *Config) { c.Snapshot.Format = "xml" }, "snapshot.format"},
		{"snapshot_target", func(c *Config) { c.Snapshot.Dir = "" }, "snapshot.dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if errors.Code(err) != errors.ConfigInvalid {
				t.Fatalf("Validate() = %v, want %s", err, errors.ConfigInvalid)
			}
			if !strings.Contains(err.(*errors.Error).Detail, tt.want) {
				t.Errorf("detail = %q, want mention of %s", err.(*errors.Error).Detail, tt.want)
			}
		})
	}

	cfg := New()
	cfg.Snapshot.Dir = ""
	cfg.Snapshot.S3.Bucket = "b"
	if err := cfg.Validate(); err != nil {
		t.Errorf("an S3 bucket alone is a valid snapshot target: %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := New()
	cfg.Demo.App = "todo"
	cfg.Snapshot.S3.Bucket = "snaps"

	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			data, err := cfg.Encode(format)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			ext := map[string]string{"json": ".json", "yaml": ".yaml", "toml": ".toml"}[format]
			path := writeFile(t, t.TempDir(), "vtree"+ext, string(data))
			back, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v\n%s", err, data)
			}
			if back.Demo.App != "todo" || back.Snapshot.S3.Bucket != "snaps" {
				t.Errorf("round trip lost values: %+v", back)
			}
		})
	}

	if _, err := cfg.Encode("ini"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("output = %q", out)
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be enabled")
	}
}
