package cliapp

import (
	"context"

	"collector/internal/collector"
	"collector/internal/logging"
	"collector/internal/progress"
	"collector/internal/types"
)

// ExitSuccess, ExitFailure, and ExitUnexpected are the process exit codes
// named in spec §6: 0 on success, 1 on a validation/path/operation
// failure, and any other non-zero code for an uncaught fault.
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUnexpected = 2
)

// Options holds one invocation's flag values, already merged with any
// applicable entries from ~/.collector/cli-defaults.toml.
type Options struct {
	SourcePaths        []string
	TargetPath         string
	Patterns           []string
	PatternType        string
	OperationMode      string
	CreateArchive      bool
	ArchiveFormat      string
	ArchiveCompression string
	CollectSystemInfo  bool
	EnableAuditLogging bool
	AuditLogFile       string
	Locale             string
}

// MergeDefaults fills any zero-valued field in opts from d, leaving
// non-zero values untouched. A bool that is false counts as zero, so a
// flag set to false does not override a true value from d.
func MergeDefaults(opts Options, d Defaults) Options {
	if opts.TargetPath == "" {
		opts.TargetPath = d.TargetPath
	}
	if opts.OperationMode == "" {
		opts.OperationMode = d.OperationMode
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = d.Patterns
	}
	if opts.PatternType == "" {
		opts.PatternType = d.PatternType
	}
	if !opts.CollectSystemInfo {
		opts.CollectSystemInfo = d.CollectSystemInfo
	}
	if !opts.EnableAuditLogging {
		opts.EnableAuditLogging = d.EnableAuditLogging
	}
	if opts.Locale == "" {
		opts.Locale = d.Locale
	}
	return opts
}

// toConfig translates Options into the Collection Service's immutable
// config type.
func (o Options) toConfig() types.CollectionConfig {
	kind := types.Glob
	if o.PatternType == "regex" {
		kind = types.Regex
	}
	patterns := make([]types.PatternSpec, len(o.Patterns))
	for i, p := range o.Patterns {
		patterns[i] = types.PatternSpec{Pattern: p, Kind: kind}
	}

	return types.CollectionConfig{
		SourcePaths:        o.SourcePaths,
		TargetPath:         o.TargetPath,
		Patterns:           patterns,
		OperationMode:      types.OperationMode(o.OperationMode),
		CreateArchive:      o.CreateArchive,
		ArchiveFormat:      types.ArchiveFormat(o.ArchiveFormat),
		ArchiveCompression: types.ArchiveCompression(o.ArchiveCompression),
		CollectSystemInfo:  o.CollectSystemInfo,
		EnableAuditLogging: o.EnableAuditLogging,
		AuditLogFile:       o.AuditLogFile,
	}
}

// Run builds a Service, executes one collection job for opts, and prints
// console progress plus a final summary through log. It returns the
// process exit code per spec §6.
func Run(ctx context.Context, opts Options, log *logging.Logger) int {
	locale := Locale(opts.Locale)
	if locale == "" {
		locale = LocaleEN
	}

	svc := collector.New()
	svc.Subscribe(func(s progress.Snapshot) {
		log.Infof("progress: %d/%d (%.1f%%) %s", s.Current, s.Total, s.Percentage(), s.CurrentFile)
	})

	result, err := svc.Collect(ctx, opts.toConfig())
	if err != nil {
		log.Errorf("%s: %v", Message(locale, err), err)
		return ExitFailure
	}

	log.Successf("collected %d files (%d succeeded, %d failed) into %s",
		result.TotalFiles, result.ProcessedFiles, result.FailedFiles, result.TargetPath)

	if result.PCInfoCollected {
		log.Infof("system info written to %s", result.PCInfoPath)
	}
	if result.ArchiveCreated {
		log.Infof("archive written to %s", result.ArchivePath)
	} else if result.ArchiveError != "" {
		log.Warnf("archive not created: %s", result.ArchiveError)
	}

	return ExitSuccess
}
