package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds the resolved directories used at runtime.
type Paths struct {
	DataDir  string
	LogsDir  string
	StoreDir string
}

// ResolvePaths resolves the configured directories to absolute paths. Relative
// entries are taken from the current working directory.
func (c *Config) ResolvePaths() (*Paths, error) {
	data, err := filepath.Abs(c.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	logs, err := filepath.Abs(c.Paths.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}
	p := &Paths{DataDir: data, LogsDir: logs}
	if !c.Store.InMemory {
		store, err := filepath.Abs(c.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store dir: %w", err)
		}
		p.StoreDir = store
	}
	return p, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir, p.StoreDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// ResolveWorkbook maps a workbook path from a request onto the file system.
// Relative paths are joined to the data directory and may not escape it.
func (p *Paths) ResolveWorkbook(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("workbook path is empty")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	joined := filepath.Join(p.DataDir, path)
	rel, err := filepath.Rel(p.DataDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("workbook path %q escapes the data directory", path)
	}
	return joined, nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
