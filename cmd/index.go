/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/scriptcat/pkg/exitcode"
	"github.com/fulmenhq/scriptcat/pkg/index"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/spf13/cobra"
)

func newIndexCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "index [manifest]",
		Short: "Regenerate the markdown index from the manifest",
		Long: `Render the markdown index (one "fname: title / === / description" block per
entry) next to the manifest. With --check nothing is written; the command
fails if the index on disk differs and prints a unified diff.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIndex,
	}
	c.Flags().StringP("output", "o", "", "Index path (default: index_file next to the manifest)")
	c.Flags().Bool("check", false, "Only compare; exit 1 when the index is out of sync")
	return c
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := manifestArg(args, cfg)
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = index.PathFor(path, cfg.IndexFile)
	}

	check, _ := cmd.Flags().GetBool("check")
	if check {
		err := index.Check(out, path, m.Entries)
		if err == nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s is in sync\n", out)
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] %s\n", err)
		var drift *index.DriftError
		if errors.As(err, &drift) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), drift.Diff)
		}
		return exitWith(exitcode.Failure)
	}

	if err := index.Write(out, m.Entries); err != nil {
		return err
	}
	logger.Info("Index written", logger.String("path", out), logger.Int("entries", len(m.Entries)))
	return nil
}
