// Command collect is the CLI front-end for the collection engine (spec
// §6), built with spf13/cobra per SPEC_FULL.md §2, matching the
// teacher's cmd/main/main.go "flags -> config -> logger -> run" shape.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"collector/internal/cliapp"
	"collector/internal/logging"
	"collector/internal/utils"
)

var opts cliapp.Options
var noLogs bool
var logDir string

var rootCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect files from one or more source trees into a target directory",
	Long: `collect walks one or more source directory trees, filters files by
name pattern, and transfers the matches (copy, move, or move+remove) into
a target directory, preserving their relative layout.`,
	RunE: runCollect,
}

func init() {
	root, err := utils.ExeDir()
	if err != nil {
		root, _ = os.Getwd()
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&noLogs, "no-logs", true, "print progress to stdout instead of a log file")
	flags.StringVar(&logDir, "log-dir", filepath.Join(root, "logs"), "log directory (used unless --no-logs)")
	flags.StringSliceVar(&opts.SourcePaths, "source-paths", nil, "source directories to collect from")
	flags.StringVar(&opts.TargetPath, "target-path", "", "target directory to collect into")
	flags.StringSliceVar(&opts.Patterns, "patterns", nil, "name patterns to match (glob or regex, see --pattern-type)")
	flags.StringVar(&opts.PatternType, "pattern-type", "glob", "pattern syntax: regex or glob")
	flags.StringVar(&opts.OperationMode, "operation-mode", "copy", "transfer mode: copy, move, or move_remove")
	flags.BoolVar(&opts.CreateArchive, "create-archive", false, "archive the target directory after collection")
	flags.StringVar(&opts.ArchiveFormat, "archive-format", "zip", "archive container format: zip, tar, or 7z")
	flags.StringVar(&opts.ArchiveCompression, "archive-compression", "none", "tar compression: gzip, bzip2, or xz")
	flags.BoolVar(&opts.CollectSystemInfo, "collect-system-info", false, "write a pc_info.json snapshot into the target directory")
	flags.BoolVar(&opts.EnableAuditLogging, "enable-audit-logging", false, "append an audit record for every file operation")
	flags.StringVar(&opts.AuditLogFile, "audit-log-file", "", "path for the audit log (required with --enable-audit-logging)")
	flags.StringVar(&opts.Locale, "locale", "en", "CLI message language: en or ru")

	rootCmd.RegisterFlagCompletionFunc("pattern-type", completeChoices("regex", "glob"))
	rootCmd.RegisterFlagCompletionFunc("operation-mode", completeChoices("copy", "move", "move_remove"))
	rootCmd.RegisterFlagCompletionFunc("archive-format", completeChoices("zip", "tar", "7z"))
	rootCmd.RegisterFlagCompletionFunc("archive-compression", completeChoices("gzip", "bzip2", "xz"))
	rootCmd.RegisterFlagCompletionFunc("locale", completeChoices("en", "ru"))
}

func completeChoices(choices ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return choices, cobra.ShellCompDirectiveNoFileComp
	}
}

func runCollect(cmd *cobra.Command, _ []string) error {
	// A string flag left at its built-in default is not an explicit
	// choice, so the defaults file may fill it. Left empty, it still means
	// glob / copy / en downstream.
	for name, value := range map[string]*string{
		"pattern-type":   &opts.PatternType,
		"operation-mode": &opts.OperationMode,
		"locale":         &opts.Locale,
	} {
		if !cmd.Flags().Changed(name) {
			*value = ""
		}
	}

	defaultsPath, err := cliapp.DefaultsPath()
	if err == nil {
		if d, err := cliapp.LoadDefaults(defaultsPath); err == nil {
			opts = cliapp.MergeDefaults(opts, d)
		}
	}

	log, err := logging.New(".", logging.LogSettings{NoLogs: noLogs, LogDir: logDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(cliapp.ExitUnexpected)
	}

	code := cliapp.Run(cmd.Context(), opts, log)
	if code != cliapp.ExitSuccess {
		os.Exit(code)
	}
	return nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unexpected error: %v\n", r)
			os.Exit(cliapp.ExitUnexpected)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliapp.ExitUnexpected)
	}
}
