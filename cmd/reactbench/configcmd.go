package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactor/internal/errors"
)

func configCmd(a *app) *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration reactbench would use, as YAML.

Defaults are filled in, so the output is a complete config file.

Examples:
  reactbench config
  reactbench config --config bench.yaml
  reactbench config --write bench.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := a.cfg.SaveTo(write); err != nil {
					return errors.New("R101").WithDetailf("write %s", write).Wrap(err)
				}
				a.logger.Info("config written", "path", write)
				return nil
			}

			data, err := a.cfg.Marshal()
			if err != nil {
				return errors.New("R101").Wrap(err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVarP(&write, "write", "w", "", "write the config to this file instead of stdout")

	return cmd
}
