// Package collector implements the Collection Service (spec §4.8): the
// orchestrator that wires the sanitizer, filter, worker pool, and
// progress tracker together into one Collect() call. Grounded on
// original_source/src/core/collection_service.py.
package collector

import (
	"context"
	"os"
	"path/filepath"

	"collector/internal/apperrors"
	"collector/internal/archive"
	"collector/internal/audit"
	"collector/internal/fileops"
	"collector/internal/filefilter"
	"collector/internal/pcinfo"
	"collector/internal/progress"
	"collector/internal/types"
	"collector/internal/validate"
	"collector/internal/workerpool"
)

// commonBaseSampleSize bounds how many kept files the common-base
// computation inspects, matching original_source's "first ten files"
// heuristic in §4.8.
const commonBaseSampleSize = 10

// Service is the single entry point for running one collection job. It
// exclusively owns the Filter, Tracker, and Pool for the duration of one
// Collect() call, matching the ownership rules in spec §3.
type Service struct {
	Filter  *filefilter.Filter
	Tracker *progress.Tracker
	Pool    *workerpool.Pool
}

// New returns a ready-to-use Service with fresh Filter, Tracker, and Pool
// instances.
func New() *Service {
	return &Service{
		Filter:  filefilter.New(),
		Tracker: progress.New(),
		Pool:    workerpool.New(),
	}
}

// Subscribe registers callback for progress notifications on this
// Service's Tracker, forwarded here so callers (CLI, HTTP layer) don't
// need to reach into Service.Tracker directly. The returned Subscription
// can be passed to Unsubscribe to stop notifications early.
func (s *Service) Subscribe(callback progress.Callback) progress.Subscription {
	return s.Tracker.Subscribe(callback)
}

// Unsubscribe removes a callback previously registered through Subscribe.
func (s *Service) Unsubscribe(sub progress.Subscription) {
	s.Tracker.Unsubscribe(sub)
}

// Collect runs one full collection job per spec §4.8's sequence:
// validate, discover, filter, compute common base, dispatch to the
// worker pool, assemble the result, then run the optional PC-info and
// archive collaborators.
func (s *Service) Collect(ctx context.Context, cfg types.CollectionConfig) (types.CollectionResult, error) {
	if err := validate.Config(cfg); err != nil {
		return types.CollectionResult{}, err
	}

	auditSink, closeAudit, err := buildAuditSink(cfg)
	if err != nil {
		return types.CollectionResult{}, err
	}
	defer closeAudit()

	candidates, err := discoverFiles(cfg.SourcePaths)
	if err != nil {
		return types.CollectionResult{}, apperrors.Wrap(apperrors.PathError, "enumerate source files", err)
	}

	kept, err := s.Filter.FilterFiles(candidates, cfg.Patterns)
	if err != nil {
		return types.CollectionResult{}, err
	}

	result := types.CollectionResult{TargetPath: cfg.TargetPath}
	if len(kept) == 0 {
		return result, nil
	}

	base, err := findCommonBase(firstN(kept, commonBaseSampleSize), cfg.SourcePaths)
	if err != nil {
		return types.CollectionResult{}, apperrors.Wrap(apperrors.PathError, "compute common base", err)
	}

	tasks := make([]types.FileTask, len(kept))
	for i, file := range kept {
		tasks[i] = types.FileTask{SourcePath: file, RelativeSubpath: relativeSubpath(file, base)}
	}

	if err := os.MkdirAll(cfg.TargetPath, 0o755); err != nil {
		return types.CollectionResult{}, apperrors.Wrap(apperrors.PathError, "create target directory", err)
	}

	ops := fileops.NewOperations(cfg.OperationMode)
	if auditSink != nil {
		ops.SetAuditSink(auditSink)
	}

	failed, err := s.Pool.Execute(ctx, tasks, cfg.TargetPath, ops, s.Tracker)
	if err != nil && ctx.Err() == nil {
		return types.CollectionResult{}, apperrors.Wrap(apperrors.WorkerPool, "execute worker pool", err)
	}

	total := len(tasks)
	result.TotalFiles = total
	result.FailedFiles = int(failed)
	result.ProcessedFiles = total - result.FailedFiles

	if cfg.CollectSystemInfo {
		collectSystemInfo(&result, cfg.TargetPath)
	}

	if cfg.CreateArchive {
		runArchive(&result, cfg)
	}

	return result, nil
}

// buildAuditSink constructs the audit logger for one Collect() call, if
// audit logging is enabled. The returned close func is always safe to
// call and is a no-op when logging was disabled.
func buildAuditSink(cfg types.CollectionConfig) (fileops.AuditSink, func(), error) {
	if !cfg.EnableAuditLogging {
		return nil, func() {}, nil
	}
	logger, err := audit.New(cfg.AuditLogFile)
	if err != nil {
		return nil, func() {}, apperrors.Wrap(apperrors.Configuration, "open audit log", err)
	}
	return logger, func() { _ = logger.Close() }, nil
}

// collectSystemInfo runs the PC-info collaborator, writing
// target/pc_info.json. Failures are captured into the result rather than
// raised, per spec §4.8/§7.
func collectSystemInfo(result *types.CollectionResult, targetPath string) {
	info := pcinfo.CollectAll(pcinfo.Options{})
	path := filepath.Join(targetPath, "pc_info.json")
	if err := pcinfo.Save(info, path, "json"); err != nil {
		result.PCInfoCollected = false
		return
	}
	result.PCInfoCollected = true
	result.PCInfoPath = path
}

// runArchive runs the Archive collaborator, writing the archive next to
// the target directory. Failures are captured into the result rather
// than raised, per spec §4.8/§7.
func runArchive(result *types.CollectionResult, cfg types.CollectionConfig) {
	name := archive.SuggestedName(cfg.ArchiveFormat, cfg.ArchiveCompression)
	archivePath := filepath.Join(filepath.Dir(cfg.TargetPath), name)

	err := archive.Write(cfg.TargetPath, archivePath, cfg.ArchiveFormat, cfg.ArchiveCompression, nil)
	if err != nil {
		result.ArchiveCreated = false
		result.ArchiveError = err.Error()
		return
	}
	result.ArchiveCreated = true
	result.ArchivePath = archivePath
}

func firstN(files []string, n int) []string {
	if len(files) <= n {
		return files
	}
	return files[:n]
}
