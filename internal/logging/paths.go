package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.rmkgen/logs, or a temp directory without a home.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".rmkgen", "logs")
	}
	return filepath.Join(home, ".rmkgen", "logs")
}

// DefaultLogPath returns the debug log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "rmkgen.log")
}
