package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/termhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// isTerminal reports whether both stdin and stdout are terminals.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// mounted is a demo app rendered into a fresh memhost document.
type mounted struct {
	app       demo.App
	doc       *memhost.Document
	container *memhost.Node
	root      *vdom.Root
}

func mountApp(name string, logger *slog.Logger) (*mounted, error) {
	app, err := demo.Lookup(name)
	if err != nil {
		return nil, err
	}

	opts := []vdom.Option{vdom.WithLogger(logger)}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		opts = append(opts, vdom.WithObserver(vdom.NewLogObserver(logger)))
	}

	doc := memhost.New()
	m := &mounted{
		app:       app,
		doc:       doc,
		container: doc.NewContainer("root"),
		root:      vdom.NewRoot(doc, opts...),
	}
	m.root.Render(app.New(logger), m.container)
	return m, nil
}

func (m *mounted) model(logger *slog.Logger) *termhost.Model {
	return termhost.NewModel(m.doc, m.container,
		termhost.WithTitle("vtree · "+m.app.Name),
		termhost.WithLogger(logger))
}

// readScript loads a key script from path, or from stdin for "-".
func readScript(cmd *cobra.Command, path string) ([]tea.KeyMsg, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return termhost.ReadScript(r)
}

// openStore returns the S3 store when a bucket is configured and the file
// store otherwise.
func openStore(cfg *config.Config) (snapshot.Store, error) {
	format, err := snapshot.ParseFormat(cfg.Snapshot.Format)
	if err != nil {
		return nil, err
	}
	if s3cfg := cfg.Snapshot.S3; s3cfg.Bucket != "" {
		client := snapshot.NewS3Client(s3cfg.Region, s3cfg.Endpoint, os.Getenv)
		return snapshot.NewS3Store(client, s3cfg.Bucket, s3cfg.Prefix, format), nil
	}
	store, err := snapshot.NewFileStore(cfg.Snapshot.Dir, format)
	if err != nil {
		return nil, err
	}
	return store, nil
}
