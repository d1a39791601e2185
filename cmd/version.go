/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/scriptcat/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Show scriptcat version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	c.Flags().Bool("extended", false, "Show detailed build information")
	c.Flags().String("format", "text", "Output format (text|json)")
	return c
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	info := buildinfo.Collect()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if !extended {
			return enc.Encode(map[string]string{"version": info.Version})
		}
		return enc.Encode(info)
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	_, _ = fmt.Fprintf(out, "scriptcat %s\n", info.Version)
	if !extended {
		return nil
	}
	if info.ModuleVersion != "" {
		_, _ = fmt.Fprintf(out, "Module Version: %s\n", info.ModuleVersion)
	}
	_, _ = fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	_, _ = fmt.Fprintf(out, "OS/Arch: %s/%s\n", info.Platform, info.Arch)
	return nil
}
