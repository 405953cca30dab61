package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"collector/internal/types"
)

func baseConfig(t *testing.T) types.CollectionConfig {
	t.Helper()
	src := t.TempDir()
	target := filepath.Join(t.TempDir(), "out")
	return types.CollectionConfig{
		SourcePaths:   []string{src},
		TargetPath:    target,
		OperationMode: types.Copy,
	}
}

func TestConfig_Valid(t *testing.T) {
	if err := Config(baseConfig(t)); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfig_EmptySourcePaths(t *testing.T) {
	cfg := baseConfig(t)
	cfg.SourcePaths = nil
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for empty source_paths")
	}
}

func TestConfig_TooManySourcePaths(t *testing.T) {
	cfg := baseConfig(t)
	dir := cfg.SourcePaths[0]
	paths := make([]string, types.MaxSourcePaths+1)
	for i := range paths {
		paths[i] = dir
	}
	cfg.SourcePaths = paths
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for too many source paths")
	}
}

func TestConfig_SourcePathDoesNotExist(t *testing.T) {
	cfg := baseConfig(t)
	cfg.SourcePaths = []string{filepath.Join(cfg.SourcePaths[0], "missing")}
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for nonexistent source path")
	}
}

func TestConfig_SourcePathNotDirectory(t *testing.T) {
	cfg := baseConfig(t)
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.SourcePaths = []string{file}
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for source path that is a file")
	}
}

func TestConfig_TargetParentMissing(t *testing.T) {
	cfg := baseConfig(t)
	cfg.TargetPath = "/nonexistent-parent-dir/out"
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for missing target parent")
	}
}

func TestConfig_PatternTooLong(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Patterns = []types.PatternSpec{
		{Pattern: strings.Repeat("a", types.MaxPatternLength+1), Kind: types.Glob},
	}
	if err := Config(cfg); err == nil {
		t.Fatalf("expected error for overlong pattern")
	}
}

func TestConfig_ReDoSPatternRejected(t *testing.T) {
	dangerous := []string{
		`(a+)+`,
		`(a*)*`,
		`(a?)?`,
		`(a{1,3})+`,
		`(a{1,3})*`,
	}
	for _, p := range dangerous {
		cfg := baseConfig(t)
		cfg.Patterns = []types.PatternSpec{{Pattern: p, Kind: types.Regex}}
		if err := Config(cfg); err == nil {
			t.Fatalf("expected ReDoS rejection for pattern %q", p)
		}
	}
}

func TestConfig_SafeRegexAccepted(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Patterns = []types.PatternSpec{{Pattern: `^report-\d+\.csv$`, Kind: types.Regex}}
	if err := Config(cfg); err != nil {
		t.Fatalf("expected safe regex to be accepted, got %v", err)
	}
}

func TestPathExists(t *testing.T) {
	if PathExists("") || PathExists(".") {
		t.Fatalf("expected empty and '.' to be rejected")
	}
	if !PathExists(t.TempDir()) {
		t.Fatalf("expected existing tempdir to be reported present")
	}
}
