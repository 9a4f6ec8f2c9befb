// =============================================================================
// SAP Scripts Generator - File Management Utilities
// =============================================================================
//
// This module provides utilities for file system operations of a batch run:
//   - Discovering input workbooks
//   - Generating output file names
//   - Writing scripts and zip bundles
//   - Archiving processed files
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScriptExtension is appended to generated script names that lack it.
const ScriptExtension = ".vbs"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// InputDir is the directory containing input files.
	InputDir string

	// OutputDir is the directory where generated scripts are written.
	OutputDir string

	// InputArchiveDir is where processed input files are moved.
	InputArchiveDir string

	// OutputArchiveDir is where copies of generated scripts are stored.
	OutputArchiveDir string

	// UseTimestampSubdirs creates YYYY/MM/DD subdirectories in archives.
	UseTimestampSubdirs bool

	// Now is the clock used for archive subdirectories; defaults to time.Now.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		Now:              time.Now,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files of InputDir with one of the
// given extensions (case-insensitive), sorted by name. Office lock files
// ("~$name.xlsx") are ignored.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			continue
		}
		if !hasExtension(entry.Name(), extensions) {
			continue
		}
		files = append(files, filepath.Join(fm.InputDir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteScript writes command lines to OutputDir/name with CRLF line endings,
// the convention of the Windows script host.
//
// RETURNS:
//   - The path of the written file.
func (fm *FileManager) WriteScript(name string, lines []string) (string, error) {
	path := filepath.Join(fm.OutputDir, name)
	content := strings.Join(lines, "\r\n") + "\r\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write script %s: %w", name, err)
	}
	return path, nil
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed input file to InputArchiveDir.
//
// RETURNS:
//   - The path to the archived file.
//
// If a rename fails (e.g. across devices) the file is copied then removed.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies a generated file to OutputArchiveDir.
// The original is left in place.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath returns the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// FILE NAMING
// =============================================================================

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// GenerateOutputFileName builds a script file name from a format.
//
// PARAMETERS:
//   - format: The name format, e.g. "{kind}_{script}_{timestamp}_{uuid}.vbs".
//   - params: Values for custom placeholders such as {kind}, {script}, {input}.
//
// BUILT-IN PLACEHOLDERS:
//   - {uuid}: A random UUID
//   - {timestamp}: YYYYMMDD_HHMMSS
//   - {date}: YYYYMMDD
//   - {time}: HHMMSS
//
// Parameter values are reduced to file-name safe characters, and the
// ".vbs" extension is added when missing.
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = unsafeNameChars.ReplaceAllString(value, "-")
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ScriptExtension) {
		result += ScriptExtension
	}

	return result
}

// BaseName returns a file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
