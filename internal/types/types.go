// Package types holds the collection engine's data model: the config a
// caller builds before starting a job, and the result it gets back.
package types

// PatternKind selects how PatternSpec.Pattern is interpreted.
type PatternKind string

const (
	Glob  PatternKind = "glob"
	Regex PatternKind = "regex"
)

// MaxPatternLength caps PatternSpec.Pattern, per spec §3.
const MaxPatternLength = 1000

// PatternSpec is one name filter: either a shell glob matched against a
// file's basename, or a regex searched over the full path string.
type PatternSpec struct {
	Pattern string
	Kind    PatternKind
}

// OperationMode selects the file-transfer strategy applied to every kept
// file.
type OperationMode string

const (
	Copy       OperationMode = "copy"
	Move       OperationMode = "move"
	MoveRemove OperationMode = "move_remove"
)

// ArchiveFormat names the container format for the optional post-collection
// archive.
type ArchiveFormat string

const (
	ArchiveZip ArchiveFormat = "zip"
	ArchiveTar ArchiveFormat = "tar"
	Archive7z  ArchiveFormat = "7z"
)

// ArchiveCompression names the compression applied inside a tar archive.
type ArchiveCompression string

const (
	CompressionNone  ArchiveCompression = "none"
	CompressionGzip  ArchiveCompression = "gzip"
	CompressionBzip2 ArchiveCompression = "bzip2"
	CompressionXz    ArchiveCompression = "xz"
)

// MaxSourcePaths and MaxPathLength bound CollectionConfig, per spec §3/§4.2.
const (
	MaxSourcePaths = 1000
	MaxPathLength  = 4096
)

// CollectionConfig is immutable once built; every field is read-only for
// the lifetime of one Collect() call.
type CollectionConfig struct {
	SourcePaths []string
	TargetPath  string
	Patterns    []PatternSpec

	OperationMode OperationMode

	CreateArchive      bool
	ArchiveFormat      ArchiveFormat
	ArchiveCompression ArchiveCompression

	CollectSystemInfo bool

	EnableAuditLogging bool
	AuditLogFile       string
}

// FileTask is one candidate file paired with the relative path it should
// land at under the target, computed by the Collection Service once the
// common base is known.
type FileTask struct {
	SourcePath      string
	RelativeSubpath string
}

// CollectionResult is the structured summary returned by one Collect()
// call.
type CollectionResult struct {
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	TargetPath     string

	PCInfoCollected bool
	PCInfoPath      string

	ArchiveCreated bool
	ArchivePath    string
	ArchiveError   string
}

// Invariant (spec §3): ProcessedFiles + FailedFiles == TotalFiles whenever
// TotalFiles > 0. Checked by tests, not enforced at construction time —
// CollectionResult is a plain data carrier.
