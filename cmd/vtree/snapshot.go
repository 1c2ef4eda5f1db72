package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/snapshot"
	"github.com/vango-dev/vtree/pkg/termhost"
)

func snapshotCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Take, list, show and compare tree snapshots",
		Long: `Snapshots are copies of a rendered tree, stored as JSON or YAML in
snapshot.dir or, when snapshot.s3.bucket is set, in S3.

Examples:
  vtree snapshot take initial --app counter
  printf 'enter\n' | vtree snapshot take clicked --script -
  vtree snapshot diff initial clicked
  vtree snapshot show clicked --as yaml`,
	}

	cmd.AddCommand(
		snapshotTakeCmd(g),
		snapshotListCmd(g),
		snapshotShowCmd(g),
		snapshotDiffCmd(g),
	)
	return cmd
}

func snapshotTakeCmd(g *globalFlags) *cobra.Command {
	var (
		app    string
		script string
	)

	cmd := &cobra.Command{
		Use:   "take <name>",
		Short: "Render a demo app, optionally play keys, and save the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if err := snapshot.ValidateName(args[0]); err != nil {
				return err
			}
			if app == "" {
				app = cfg.Demo.App
			}

			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			m, err := mountApp(app, logger)
			if err != nil {
				return err
			}
			if script != "" {
				keys, err := readScript(cmd, script)
				if err != nil {
					return err
				}
				if err := termhost.Play(m.model(logger), keys, io.Discard); err != nil {
					return err
				}
			}
			return saveSnapshot(cmd.Context(), cmd, cfg, snapshot.Take(args[0], m.container))
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "Demo app to render (default from demo.app)")
	cmd.Flags().StringVar(&script, "script", "", "Keys to play before saving (- for stdin)")

	return cmd
}

func snapshotListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func snapshotShowCmd(g *globalFlags) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if as == "outline" {
				fmt.Fprintf(out, "# %s, taken %s\n", snap.Name, snap.Taken.Format("2006-01-02 15:04:05 MST"))
				fmt.Fprint(out, snap.Outline())
				return nil
			}
			format, err := snapshot.ParseFormat(as)
			if err != nil {
				return err
			}
			data, err := snap.Encode(format)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&as, "as", "outline", "Output: outline, json or yaml")

	return cmd
}

func snapshotDiffCmd(g *globalFlags) *cobra.Command {
	var failOnDiff bool

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two stored snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			a, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b, err := store.Load(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			diffs := snapshot.Diff(a.Root, b.Root)
			if len(diffs) == 0 {
				success(out, "%s and %s are identical", a.Name, b.Name)
				return nil
			}
			for _, d := range diffs {
				fmt.Fprintln(out, d)
			}
			if failOnDiff {
				return errors.Newf(errors.CategoryStorage, "%d difference(s) between %s and %s", len(diffs), a.Name, b.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnDiff, "fail", false, "Exit with an error when the snapshots differ")

	return cmd
}
