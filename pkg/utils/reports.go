// =============================================================================
// SAP Scripts Generator - Bundles and Run Reports
// =============================================================================
//
// Zip bundles group the scripts of one input file for download or transfer.
// Error and summary logs describe a batch run in plain text.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// ZIP BUNDLES
// =============================================================================

// BundleEntry is one file of a zip bundle.
type BundleEntry struct {
	Name  string
	Lines []string
}

// WriteZipBundle writes entries, in order, into a zip archive at path.
// Lines are joined with CRLF like WriteScript does.
func WriteZipBundle(path string, entries []BundleEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     filepath.Base(entry.Name),
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("failed to add %s to bundle: %w", entry.Name, err)
		}
		if _, err := w.Write([]byte(strings.Join(entry.Lines, "\r\n") + "\r\n")); err != nil {
			zw.Close()
			return fmt.Errorf("failed to write %s to bundle: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize bundle: %w", err)
	}
	return nil
}

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLogEntry represents a single problem found while processing a file.
type ErrorLogEntry struct {
	// Row is the 1-based sheet row, 0 when the problem is file level.
	Row int

	// Key is the transaction key, reservation or position concerned.
	Key string

	// Message describes the problem.
	Message string
}

// WriteErrorLog writes entries to a text log in the output directory.
//
// RETURNS:
//   - The path to the error log.
func WriteErrorLog(outputDir, inputFileName string, entries []ErrorLogEntry) (string, error) {
	logFileName := fmt.Sprintf("%s_errors_%s.log", BaseName(inputFileName), time.Now().Format("20060102_150405"))
	logPath := filepath.Join(outputDir, logFileName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "SAP Scripts Generator - Error Log\n")
	fmt.Fprintf(writer, "==================================\n")
	fmt.Fprintf(writer, "Input File: %s\n", inputFileName)
	fmt.Fprintf(writer, "Generated:  %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Problems:   %d\n", len(entries))
	fmt.Fprintf(writer, "\n")

	for _, entry := range entries {
		switch {
		case entry.Row > 0:
			fmt.Fprintf(writer, "[Row %d] %s: %s\n", entry.Row, entry.Key, entry.Message)
		case entry.Key != "":
			fmt.Fprintf(writer, "[%s] %s\n", entry.Key, entry.Message)
		default:
			fmt.Fprintf(writer, "%s\n", entry.Message)
		}
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to write error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary contains the summary of a batch run.
type ProcessingSummary struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalFiles     int
	SuccessFiles   int
	FailedFiles    int
	ProcessedFiles []ProcessedFileInfo
	FailedFileList []FailedFileInfo
}

// ProcessedFileInfo describes a converted input file.
type ProcessedFileInfo struct {
	InputFile    string
	Kind         string
	Records      int
	Scripts      []string
	Skipped      int
	Unclassified int

	// LogLines are the reservation log entries the scripts will append.
	LogLines []string

	ProcessingTime time.Duration
}

// FailedFileInfo describes an input file that could not be converted.
type FailedFileInfo struct {
	InputFile string
	Error     string
}

// WriteSummaryLog writes the batch summary to LogDir.
//
// RETURNS:
//   - The path to the summary log.
func WriteSummaryLog(logDir string, summary *ProcessingSummary) (string, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("summary_%s.log", summary.StartTime.Format("20060102_150405"))
	logPath := filepath.Join(logDir, logFileName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "SAP Scripts Generator - Processing Summary\n")
	fmt.Fprintf(writer, "==========================================\n")
	fmt.Fprintf(writer, "Start Time:    %s\n", summary.StartTime.Format(time.RFC3339))
	fmt.Fprintf(writer, "End Time:      %s\n", summary.EndTime.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration:      %s\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(writer, "\n")
	fmt.Fprintf(writer, "Total Files:   %d\n", summary.TotalFiles)
	fmt.Fprintf(writer, "Successful:    %d\n", summary.SuccessFiles)
	fmt.Fprintf(writer, "Failed:        %d\n", summary.FailedFiles)
	fmt.Fprintf(writer, "\n")

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintf(writer, "PROCESSED FILES\n")
		fmt.Fprintf(writer, "---------------\n")
		for _, f := range summary.ProcessedFiles {
			scripts := "none"
			if len(f.Scripts) > 0 {
				scripts = strings.Join(f.Scripts, ", ")
			}
			fmt.Fprintf(writer, "%s [%s]\n", f.InputFile, f.Kind)
			fmt.Fprintf(writer, "  records=%d scripts=%s skipped=%d unclassified=%d (%s)\n",
				f.Records, scripts, f.Skipped, f.Unclassified, f.ProcessingTime)
			for _, line := range f.LogLines {
				fmt.Fprintf(writer, "  log: %s\n", line)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(summary.FailedFileList) > 0 {
		fmt.Fprintf(writer, "FAILED FILES\n")
		fmt.Fprintf(writer, "------------\n")
		for _, f := range summary.FailedFileList {
			fmt.Fprintf(writer, "%s\n", f.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n", f.Error)
		}
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to write summary log: %w", err)
	}
	return logPath, nil
}

// CleanOldArchives removes archived files older than maxAge.
//
// RETURNS:
//   - The number of removed files.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.Walk(archiveDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return removed, err
}
