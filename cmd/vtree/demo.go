package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/demo"
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/termhost"
)

func demoCmd(g *globalFlags) *cobra.Command {
	var (
		script   string
		list     bool
		logFile  string
		saveName string
	)

	cmd := &cobra.Command{
		Use:   "demo [app]",
		Short: "Run a demo app in the terminal",
		Long: `Run a demo app as a full-screen terminal program.

Tab moves the focus between elements with listeners and enter clicks the
focused one. Inside a text input, typing edits the value.

Without a terminal, pass --script with one key per line (tab, enter,
backspace, ...) or "type <text>". The tree is printed after every key.

Examples:
  vtree demo
  vtree demo todo
  vtree demo counter --script keys.txt --save after-clicks
  printf 'enter\nenter\n' | vtree demo counter --script -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, app := range demo.Apps() {
					fmt.Fprintf(out, "  %-10s %s\n", app.Name, app.Description)
				}
				return nil
			}

			cfg, err := g.load()
			if err != nil {
				return err
			}
			name := cfg.Demo.App
			if len(args) == 1 {
				name = args[0]
			}
			if _, err := demo.Lookup(name); err != nil {
				return err
			}
			if script == "" && !isTerminal() {
				return errors.New(errors.CLINotTerminal)
			}

			logger, closeLog, err := demoLogger(cmd, cfg, logFile, script == "")
			if err != nil {
				return err
			}
			defer closeLog()

			m, err := mountApp(name, logger)
			if err != nil {
				return err
			}
			model := m.model(logger)

			if script == "" {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				if err := termhost.Run(ctx, model); err != nil {
					return err
				}
			} else {
				keys, err := readScript(cmd, script)
				if err != nil {
					return err
				}
				if err := termhost.Play(model, keys, out); err != nil {
					return err
				}
			}

			if saveName == "" {
				return nil
			}
			return saveSnapshot(cmd.Context(), cmd, cfg, snapshot.Take(saveName, m.container))
		},
	}

	cmd.Flags().StringVar(&script, "script", "", "Play keys from a file (- for stdin) instead of running interactively")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the available apps")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to a file (interactive mode discards them otherwise)")
	cmd.Flags().StringVar(&saveName, "save", "", "Save a snapshot of the final tree under this name")

	return cmd
}

// demoLogger logs to stderr in script mode. A full-screen program owns the
// terminal, so interactive mode logs only to --log-file.
func demoLogger(cmd *cobra.Command, cfg *config.Config, path string, interactive bool) (*slog.Logger, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Log.NewLogger(f), func() { f.Close() }, nil
	}
	if interactive {
		return cfg.Log.NewLogger(io.Discard), func() {}, nil
	}
	return cfg.Log.NewLogger(cmd.ErrOrStderr()), func() {}, nil
}

func saveSnapshot(ctx context.Context, cmd *cobra.Command, cfg *config.Config, snap *snapshot.Snapshot) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, snap); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Saved snapshot %s", snap.Name)
	return nil
}
