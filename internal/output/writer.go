/**
 * Output persistence
 *
 * Writes reconciled markdown and metadata sidecars next to the input.
 * Writes go through a temp file in the target directory followed by a
 * rename, so an interrupted run never leaves a truncated document behind.
 */

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/ocrmd/ocrmd/internal/errors"
)

// MarkdownPath returns the default output path for an input: its basename
// with a .md extension inside dir
func MarkdownPath(dir, input string) string {
	return filepath.Join(dir, Basename(input)+".md")
}

// ImagesDir returns the default images directory for a markdown output
// path: <basename>-images alongside the file
func ImagesDir(markdownPath string) string {
	base := strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath))
	return base + "-images"
}

// MetadataPath returns the sidecar path for a markdown output path
func MetadataPath(markdownPath string) string {
	return strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath)) + ".json"
}

// Basename strips the directory and extension from an input path or URL
func Basename(input string) string {
	name := filepath.Base(strings.TrimRight(input, "/"))
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		name = "document"
	}
	return name
}

// EnsureDir creates dir and any missing parents
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewOutputWriteError(dir, err)
	}
	return nil
}

// WriteMarkdown persists a document to path, creating parent directories
// as needed
func WriteMarkdown(path, markdown string) error {
	return writeAtomic(path, []byte(markdown))
}

// WriteMetadata persists a metadata sidecar as indented JSON
func WriteMetadata(path string, meta interface{}) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to marshal metadata: %w", err))
	}
	return writeAtomic(path, append(data, '\n'))
}

// writeAtomic writes data to a temp file in path's directory and renames it
// into place
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to create temp file: %w", err))
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to write temp file: %w", err))
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to close temp file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to rename into place: %w", err))
	}
	return nil
}
