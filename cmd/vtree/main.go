package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	"github.com/vango-dev/vtree/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌┬┐┬─┐┌─┐┌─┐
  ╚╗╔╝ │ ├┬┘├┤ ├┤
   ╚╝  ┴ ┴└─└─┘└─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

// load reads the config file, applies flag overrides and validates.
func (g *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vtree",
		Short: "A virtual-tree reconciler with terminal and remote hosts",
		Long: `vtree renders component trees into a host tree and keeps them in sync.

Components hold state; calling SetState re-renders only that component's
subtree and patches the host in place. This CLI runs the bundled demo apps:

  • in the terminal, as a bubbletea program
  • on a WebSocket server, mirrored into remote replicas
  • as snapshots, saved to disk or S3 and compared`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				errors.DisableColors()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Config file (default: vtree.json, vtree.yaml or vtree.toml in the working directory)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		demoCmd(g),
		serveCmd(g),
		watchCmd(g),
		snapshotCmd(g),
		configCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the vtree ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
