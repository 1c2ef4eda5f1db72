package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/remote"
)

// execute runs the CLI in a fresh working directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil || out != "dev\n" {
		t.Errorf("version --short = %q, %v", out, err)
	}
	out, _ = execute(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version = %q", out)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"addr": "localhost:7070"`},
		{"yaml", "readLimit: 65536"},
		{"toml", `addr = "localhost:7070"`},
	}
	for _, tt := range tests {
		out, err := execute(t, "config", "--format", tt.format)
		if err != nil || !strings.Contains(out, tt.want) {
			t.Errorf("config --format %s = %v\n%s", tt.format, err, out)
		}
	}

	if _, err := execute(t, "config", "--format", "ini"); errors.Code(err) != errors.ConfigInvalid {
		t.Errorf("config --format ini = %v", err)
	}

	writeFile(t, "vtree.yaml", "demo:\n  app: todo\n")
	out, err := execute(t, "config", "--log-level", "debug")
	if err != nil || !strings.Contains(out, `"app": "todo"`) || !strings.Contains(out, `"level": "debug"`) {
		t.Errorf("config with vtree.yaml = %v\n%s", err, out)
	}

	if _, err := execute(t, "config", "--log-level", "loud"); errors.Code(err) != errors.ConfigInvalid {
		t.Errorf("invalid level = %v", err)
	}
	if _, err := execute(t, "config", "-c", "missing.toml"); errors.Code(err) != errors.ConfigNotFound {
		t.Errorf("missing config = %v", err)
	}
}

func TestDemoScript(t *testing.T) {
	t.Chdir(t.TempDir())
	script := writeFile(t, "keys.txt", "# two clicks\nenter\nenter\n")

	out, err := execute(t, "demo", "counter", "--script", script, "--save", "clicked")
	if err != nil {
		t.Fatalf("demo = %v", err)
	}
	for _, want := range []string{"Counter: 0", "# enter", "Counter: 2", "Saved snapshot clicked"} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join("snapshots", "clicked.json")); err != nil {
		t.Errorf("snapshot file: %v", err)
	}

	out, err = execute(t, "snapshot", "show", "clicked")
	if err != nil || !strings.Contains(out, `"Counter: 2"`) || !strings.Contains(out, "<button> onclick") {
		t.Errorf("snapshot show = %v\n%s", err, out)
	}
}

func TestDemoErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	orig := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	if _, err := execute(t, "demo", "nope", "--script", "-"); errors.Code(err) != errors.CLIUnknownApp {
		t.Errorf("unknown app = %v", err)
	}
	if _, err := execute(t, "demo", "counter"); errors.Code(err) != errors.CLINotTerminal {
		t.Errorf("no terminal = %v", err)
	}
	bad := writeFile(t, "bad.txt", "tab\nwiggle\n")
	if _, err := execute(t, "demo", "counter", "--script", bad); errors.Code(err) != errors.CLIInvalidInput {
		t.Errorf("bad script = %v", err)
	}

	out, err := execute(t, "demo", "--list")
	if err != nil || !strings.Contains(out, "counter") || !strings.Contains(out, "todo") {
		t.Errorf("demo --list = %v\n%s", err, out)
	}
}

func TestSnapshotCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, "vtree.toml", "[snapshot]\nformat = \"yaml\"\n")
	click := writeFile(t, "click.txt", "enter\n")

	for _, args := range [][]string{
		{"snapshot", "take", "before"},
		{"snapshot", "take", "after", "--script", click},
		{"snapshot", "take", "todo", "--app", "todo"},
	} {
		if _, err := execute(t, args...); err != nil {
			t.Fatalf("%v = %v", args, err)
		}
	}

	out, err := execute(t, "snapshot", "list")
	if err != nil || out != "after\nbefore\ntodo\n" {
		t.Errorf("snapshot list = %q, %v", out, err)
	}

	out, err = execute(t, "snapshot", "diff", "before", "after")
	if err != nil || !strings.Contains(out, "Counter: 0") || !strings.Contains(out, "Counter: 1") {
		t.Errorf("snapshot diff = %v\n%s", err, out)
	}
	if _, err := execute(t, "snapshot", "diff", "before", "after", "--fail"); err == nil {
		t.Error("diff --fail should fail for different snapshots")
	}
	out, err = execute(t, "snapshot", "diff", "before", "before", "--fail")
	if err != nil || !strings.Contains(out, "identical") {
		t.Errorf("diff of the same snapshot = %v\n%s", err, out)
	}

	out, err = execute(t, "snapshot", "show", "after", "--as", "yaml")
	if err != nil || !strings.Contains(out, "name: after") {
		t.Errorf("snapshot show --as yaml = %v\n%s", err, out)
	}
	if _, err := execute(t, "snapshot", "show", "missing"); errors.Code(err) != errors.SnapshotNotFound {
		t.Errorf("show missing = %v", err)
	}
	if _, err := execute(t, "snapshot", "take", "../escape"); errors.Code(err) != errors.SnapshotStorage {
		t.Errorf("take ../escape = %v", err)
	}
}

func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	srv, err := newServer(cfg, cfg.Log.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestServeMetrics(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = true
	cfg.Tracing.Enabled = true
	ts := startServer(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := remote.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws")
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()
	if _, err := c.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{"vtree_active_sessions 1", "vtree_renders_total 1", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}

	cfg.Demo.App = "nope"
	if _, err := newServer(cfg, cfg.Log.NewLogger(io.Discard)); errors.Code(err) != errors.CLIUnknownApp {
		t.Errorf("newServer(nope) = %v", err)
	}
}

func TestWatch(t *testing.T) {
	t.Chdir(t.TempDir())
	ts := startServer(t, config.New())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	out, err := execute(t, "watch", url, "--count", "2", "--click", "button", "--format", "text")
	if err != nil {
		t.Fatalf("watch = %v", err)
	}
	for _, want := range []string{"# batch 1", "Hello World!Counter: 0Click Me!", "# batch 2", "Counter: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("watch output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "watch", url, "--format", "xml"); errors.Code(err) != errors.ConfigInvalid {
		t.Errorf("watch --format xml = %v", err)
	}
	if _, err := execute(t, "watch", url, "--count", "1", "--click", "marquee"); errors.Code(err) != errors.ProtocolUnknownNode {
		t.Errorf("watch --click marquee = %v", err)
	}
}
