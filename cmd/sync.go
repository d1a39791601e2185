/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/scriptcat/internal/report"
	"github.com/fulmenhq/scriptcat/pkg/catalog"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "sync [manifest]",
		Short: "Synchronize the manifest with scripts on disk",
		Long: `Find every script under the manifest's directory and reconcile the manifest:
new scripts get placeholder entries (or metadata extracted from their comments),
existing entries are kept untouched, and entries whose file is gone are kept
unless --remove-missing is given. Entries without an fname are dropped with a
warning. The manifest is rewritten sorted by fname.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSync,
	}
	f := c.Flags()
	f.Bool("dry-run", false, "Show what would be done without making changes")
	f.Bool("remove-missing", false, "Remove manifest entries for files that no longer exist")
	f.Bool("extract-metadata", false, "Extract title/description from file comments for new entries")
	f.StringArray("exclude", nil, "Glob of paths to skip (repeatable, doublestar syntax)")
	f.String("format", "text", "Summary format (text|json)")
	return c
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	removeMissing, _ := flags.GetBool("remove-missing")
	extract, _ := flags.GetBool("extract-metadata")
	excludes, _ := flags.GetStringArray("exclude")
	format, _ := flags.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format: %s", format)
	}
	logger.SetDryRun(dryRun)

	res, err := catalog.Sync(manifestArg(args, cfg), catalog.SyncOptions{
		DryRun:          dryRun,
		RemoveMissing:   removeMissing,
		ExtractMetadata: extract,
		Discover:        discoverOptions(cfg, excludes),
	})
	if err != nil {
		return err
	}

	logSyncWarnings(res)
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprint(out, report.SyncText(res))
	return err
}

// logSyncWarnings surfaces dropped and missing entries on stderr at the
// default log level.
func logSyncWarnings(res *catalog.SyncResult) {
	for _, w := range res.Warnings {
		logger.Warn(w.Message, logger.String("kind", string(w.Kind)))
	}
}
