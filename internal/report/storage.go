package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sanitizeFilenameComponent keeps only characters safe in a filename,
// collapsing everything else to an underscore. Mirrors the whitelist this
// codebase already uses for report filenames.
func sanitizeFilenameComponent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	out := strings.Trim(b.String(), "._-")
	if out == "" {
		return "unknown"
	}
	return out
}

// Save writes content to outputDir/filename, creating the directory if
// needed and writing via a temp file + rename so a crash mid-write never
// leaves a half-written report behind.
func Save(outputDir, filename, content string) (string, error) {
	if outputDir == "" {
		outputDir = "reports"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create report output directory: %w", err)
	}

	filename = sanitizeFilenameComponent(filename)
	reportPath := filepath.Join(outputDir, filename)

	tmpFile, err := os.CreateTemp(outputDir, filename+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp report file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.WriteString(content); err != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("write temp report file: %w", err)
	}
	if err := tmpFile.Chmod(0644); err != nil {
		_ = tmpFile.Close()
		return "", fmt.Errorf("chmod temp report file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp report file: %w", err)
	}

	if err := os.Rename(tmpPath, reportPath); err != nil {
		return "", fmt.Errorf("finalize report file: %w", err)
	}

	return reportPath, nil
}
