/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fulmenhq/scriptcat/internal/report"
	"github.com/fulmenhq/scriptcat/pkg/catalog"
	"github.com/fulmenhq/scriptcat/pkg/config"
	"github.com/fulmenhq/scriptcat/pkg/discover"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/fulmenhq/scriptcat/pkg/manifest"
	"github.com/fulmenhq/scriptcat/pkg/safeio"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Check manifest integrity",
		Long: `Check that every manifest entry names an existing script with a title and
description. Optional sections verify doc files, the markdown index, standard
headers and two-space indentation, and can rewrite headers and tabs in place.

With --ci every check runs and every discrepancy is an error: scripts need a
full header with a valid @status and @link, listed scripts must be tagged
production, and production scripts must be listed.

Exit code is 0 on success or warnings only, 1 on any error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	f := c.Flags()
	f.String("base-dir", "", "Base directory for script files (default: directory containing manifest)")
	f.Bool("check-docs", false, "Also verify doc files exist")
	f.Bool("check-index", false, "Also verify the markdown index is in sync")
	f.Bool("check-headers", false, "Check scripts for standard headers")
	f.Bool("update-headers", false, "Update scripts with standard headers from manifest")
	f.Bool("check-indent", false, "Check scripts for 2-space indentation")
	f.Bool("fix-indent", false, "Fix indentation to use 2 spaces")
	f.Bool("dry-run", false, "Show what would be done without making changes")
	f.Bool("ci", false, "Strict mode for CI: all checks, all discrepancies are errors")
	f.String("format", string(report.FormatText), "Report format ("+formatList()+")")
	f.StringP("output", "o", "", "Write the report to a file instead of stdout")
	f.BoolP("verbose", "v", false, "Show per-line indentation issues and the index diff")
	return c
}

func formatList() string {
	names := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	formatStr, _ := flags.GetString("format")
	format, err := report.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	opts := checkOptions(cmd, cfg)
	ci, _ := flags.GetBool("ci")
	logger.SetDryRun(opts.DryRun)

	path := manifestArg(args, cfg)
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	var res *catalog.Result
	if ci {
		res = catalog.CheckCI(m, opts)
	} else {
		res = catalog.Check(m, opts)
	}

	verbose, _ := flags.GetBool("verbose")
	if err := emitReport(cmd, res, format, report.Options{Verbose: verbose}); err != nil {
		return err
	}
	return exitWith(res.ExitCode())
}

func checkOptions(cmd *cobra.Command, cfg *config.Config) catalog.Options {
	flags := cmd.Flags()
	get := func(name string) bool {
		v, _ := flags.GetBool(name)
		return v
	}
	baseDir, _ := flags.GetString("base-dir")

	return catalog.Options{
		BaseDir:       baseDir,
		CheckDocs:     get("check-docs"),
		CheckIndex:    get("check-index"),
		CheckHeaders:  get("check-headers"),
		UpdateHeaders: get("update-headers"),
		CheckIndent:   get("check-indent"),
		FixIndent:     get("fix-indent"),
		DryRun:        get("dry-run"),
		IndexFile:     cfg.IndexFile,
		WrapWidth:     cfg.Header.WrapWidth,
		LinkBase:      cfg.Header.LinkBase,
		Discover:      discoverOptions(cfg, nil),
	}
}

func discoverOptions(cfg *config.Config, extraExcludes []string) discover.Options {
	return discover.Options{
		Suffix:          cfg.ScriptSuffix,
		ExcludeDirs:     cfg.ExcludeDirs,
		ExcludePatterns: append(append([]string(nil), cfg.Exclude...), extraExcludes...),
		UseIgnoreFiles:  true,
	}
}

func emitReport(cmd *cobra.Command, res *catalog.Result, format report.Format, opts report.Options) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return report.Write(cmd.OutOrStdout(), res, format, opts)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, res, format, opts); err != nil {
		return err
	}
	if err := safeio.WriteFileAtomic(output, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.Info("Report written", logger.String("path", output), logger.String("status", res.Status()))
	return nil
}
