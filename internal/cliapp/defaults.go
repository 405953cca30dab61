package cliapp

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Defaults is the optional ~/.collector/cli-defaults.toml schema (spec.md
// §6's persisted-state note, SPEC_FULL §2): values a user wants applied
// to every invocation unless overridden by an explicit flag.
type Defaults struct {
	TargetPath         string   `toml:"target_path"`
	OperationMode      string   `toml:"operation_mode"`
	Patterns           []string `toml:"patterns"`
	PatternType        string   `toml:"pattern_type"`
	CollectSystemInfo  bool     `toml:"collect_system_info"`
	EnableAuditLogging bool     `toml:"enable_audit_logging"`
	Locale             string   `toml:"locale"`
}

// DefaultsPath returns the conventional location of the CLI defaults
// file, ~/.collector/cli-defaults.toml.
func DefaultsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".collector", "cli-defaults.toml"), nil
}

// LoadDefaults reads and decodes path. A missing file is not an error —
// it simply yields a zero-value Defaults, since the defaults file is
// entirely optional.
func LoadDefaults(path string) (Defaults, error) {
	var d Defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}, err
	}
	return d, nil
}
