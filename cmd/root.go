/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"os"

	"github.com/fulmenhq/scriptcat/internal/ops"
	"github.com/fulmenhq/scriptcat/pkg/buildinfo"
	"github.com/fulmenhq/scriptcat/pkg/config"
	"github.com/fulmenhq/scriptcat/pkg/exitcode"
	"github.com/fulmenhq/scriptcat/pkg/logger"
	"github.com/spf13/cobra"
)

// exitError carries a non-zero exit code for a run whose report has already
// been printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return exitcode.String(e.code) }

func exitWith(code int) error {
	if code == exitcode.Success {
		return nil
	}
	return &exitError{code: code}
}

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scriptcat",
		Short: "Maintenance tool for a catalogue of device scripts",
		Long: `Scriptcat keeps a script catalogue consistent: the JSON manifest, the
scripts it lists, their header comments, their indentation and the derived
markdown index. It also uploads a script to a device over HTTP RPC.

Examples:
   scriptcat check --check-headers --check-indent
   scriptcat check --ci --format junit --output report.xml
   scriptcat sync --remove-missing
   scriptcat index
   scriptcat put 192.168.33.1 1 my_script.shelly.js`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: scriptcat.yaml in ., $XDG_CONFIG_HOME/scriptcat or $HOME)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("scriptcat {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command and wires
// grouped help from their classification.
func registerSubcommands(root *cobra.Command) {
	reg := ops.NewRegistry()
	add := func(group ops.CommandGroup, c *cobra.Command) {
		root.AddCommand(c)
		_ = reg.Register(c.Name(), group, c, c.Short)
	}
	add(ops.GroupCatalogue, newCheckCommand())
	add(ops.GroupCatalogue, newSyncCommand())
	add(ops.GroupCatalogue, newIndexCommand())
	add(ops.GroupDevice, newPutCommand())
	add(ops.GroupSupport, newConfigCommand())
	add(ops.GroupSupport, newVersionCommand())

	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			cmd.Println(cmd.Long)
			cmd.Println()
			cmd.Print(cmd.UsageString())
			return
		}
		cmd.Println(cmd.Long)
		for _, g := range ops.Groups {
			cmds := reg.GetCommandsByGroup(g)
			if len(cmds) == 0 {
				continue
			}
			cmd.Println()
			cmd.Println(ops.GroupTitle(g) + ":")
			for _, c := range cmds {
				cmd.Printf("  %-10s %s\n", c.Name, c.Description)
			}
		}
		cmd.Println()
		cmd.Println("Flags:")
		cmd.Print(cmd.LocalFlags().FlagUsages())
	})
}

// NewRootCommand builds the complete command tree.
func NewRootCommand() *cobra.Command {
	root := newRootCommand()
	registerSubcommands(root)
	return root
}

// Execute runs the command tree and exits with the resulting code.
// This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.Failure)
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "scriptcat",
	}
	if err := logger.Initialize(cfg); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.Failure)
	}
}

// loadConfig resolves the effective configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProjectConfig(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded", logger.String("manifest", cfg.Manifest))
	return cfg, nil
}

// manifestArg returns the manifest path from args or the configuration.
func manifestArg(args []string, cfg *config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Manifest
}
