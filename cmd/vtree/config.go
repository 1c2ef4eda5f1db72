package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
)

func configCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and flags are
applied. The output can be saved as a starting config file.

Examples:
  vtree config
  vtree config --format toml > vtree.toml
  vtree config -c vtree.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			data, err := cfg.Encode(format)
			if err != nil {
				return errors.New(errors.ConfigInvalid).
					WithDetailf("--format must be json, yaml or toml, got %q.", format)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml or toml")

	return cmd
}
