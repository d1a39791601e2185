/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"github.com/fulmenhq/scriptcat/pkg/config"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging built-in defaults, the config file
and SCRIPTCAT_* environment variables. With --defaults, print only the
built-in defaults, ignoring the config file and environment.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
	c.Flags().String("format", "yaml", "Output format (yaml|json|toml)")
	c.Flags().Bool("defaults", false, "Print the built-in defaults instead of the effective configuration")
	return c
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	format, _ := cmd.Flags().GetString("format")
	data, err := cfg.Encode(format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
