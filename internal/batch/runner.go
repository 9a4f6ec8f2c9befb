// =============================================================================
// SAP Scripts Generator - Batch Runner
// =============================================================================
//
// This module converts every input workbook of a directory (or one given
// file) and writes the generated scripts to disk.
//
// PROCESSING PIPELINE:
//   1. Discover .xlsx / .csv files in the input directory
//   2. Match each file to a file kind (schema, CSV settings, cleanup rules)
//   3. Convert files concurrently, bounded by max_concurrency
//   4. Write one .vbs per generated script, optionally a zip bundle
//   5. Write an error log for rejected files and skipped groups
//   6. Archive processed inputs and outputs
//   7. Write the summary log
//
// A failing file stops the batch unless continue_on_error is set.
//
// =============================================================================

package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/converter"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/synth"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/templates"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/validation"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/utils"
)

var (
	// ErrNoFileKind is returned for an input no file kind matches.
	ErrNoFileKind = errors.New("no matching file kind")

	// ErrNoUser is returned when neither flags nor configuration name the
	// SAP user written into the scripts.
	ErrNoUser = errors.New("SAP user is required (--user or sap_user)")
)

// Options selects what a run does beyond the configuration.
type Options struct {
	// File converts a single file instead of scanning InputDir.
	File string

	// Kind forces a file kind by name instead of matching file names.
	Kind string

	// DryRun converts without writing, archiving or logging to disk.
	DryRun bool

	// Zip writes a bundle per input in addition to the scripts.
	Zip bool

	// Today is the clock handed to the synthesizers. Default: time.Now.
	Today func() time.Time
}

// Runner executes batch runs for one configuration.
type Runner struct {
	cfg    *config.MainConfig
	opts   Options
	files  *utils.FileManager
	logger logger.Logger
}

// New creates a Runner.
func New(cfg *config.MainConfig, opts Options, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetDefault()
	}
	if opts.Today == nil {
		opts.Today = time.Now
	}
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.UseTimestampSubdirs = cfg.ArchiveByDate
	return &Runner{cfg: cfg, opts: opts, files: fm, logger: log}
}

// =============================================================================
// RUN
// =============================================================================

// Run processes the inputs and returns the run summary. The summary is
// returned even when the run fails part way.
func (r *Runner) Run(ctx context.Context) (*utils.ProcessingSummary, error) {
	summary := &utils.ProcessingSummary{StartTime: time.Now()}
	if r.cfg.SAPUser == "" {
		return summary, ErrNoUser
	}

	if !r.opts.DryRun {
		if err := r.cfg.EnsureDirectories(); err != nil {
			return summary, err
		}
		r.cleanArchives()
	}

	inputs, err := r.inputs()
	if err != nil {
		return summary, err
	}
	summary.TotalFiles = len(inputs)
	if len(inputs) == 0 {
		r.logger.Info("No input files found", "dir", r.cfg.InputDir)
		summary.EndTime = time.Now()
		return summary, nil
	}
	r.logger.Info("Processing files", "count", len(inputs), "concurrency", r.cfg.MaxConcurrency)

	processed := make([]*utils.ProcessedFileInfo, len(inputs))
	failed := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrency)
	for i, path := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failed[i] = err
				return err
			}
			info, err := r.processFile(path)
			if err != nil {
				failed[i] = err
				r.logger.Error("Failed to process file", "file", filepath.Base(path), "error", err)
				if !r.cfg.ContinueOnError {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				return nil
			}
			processed[i] = info
			return nil
		})
	}
	runErr := g.Wait()

	for i, path := range inputs {
		switch {
		case processed[i] != nil:
			summary.SuccessFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, *processed[i])
		case failed[i] != nil:
			summary.FailedFiles++
			summary.FailedFileList = append(summary.FailedFileList, utils.FailedFileInfo{
				InputFile: filepath.Base(path),
				Error:     failed[i].Error(),
			})
		}
	}
	summary.EndTime = time.Now()

	if !r.opts.DryRun {
		logPath, err := utils.WriteSummaryLog(r.cfg.LogDir, summary)
		if err != nil {
			r.logger.Warn("Failed to write summary log", "error", err)
		} else {
			r.logger.Debug("Wrote summary log", "path", logPath)
		}
	}

	return summary, runErr
}

// inputs returns the files of this run.
func (r *Runner) inputs() ([]string, error) {
	if r.opts.File != "" {
		if _, err := os.Stat(r.opts.File); err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		return []string{r.opts.File}, nil
	}
	files, err := r.files.DiscoverInputFiles(".xlsx", ".csv")
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	return files, nil
}

// kindFor resolves the file kind of an input.
func (r *Runner) kindFor(path string) (*config.FileKind, error) {
	if r.opts.Kind != "" {
		kind, ok := r.cfg.FileKindByName(r.opts.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrNoFileKind, r.opts.Kind)
		}
		return kind, nil
	}
	kind, ok := r.cfg.MatchFileKind(path)
	if !ok {
		return nil, ErrNoFileKind
	}
	return kind, nil
}

// =============================================================================
// SINGLE FILE
// =============================================================================

// processFile converts one input and writes its outputs.
func (r *Runner) processFile(path string) (*utils.ProcessedFileInfo, error) {
	base := filepath.Base(path)
	log := r.logger.With("file", base)

	kind, err := r.kindFor(path)
	if err != nil {
		return nil, err
	}

	result, err := r.convert(path, kind, log)
	if err != nil {
		r.writeErrorLog(base, schemaProblems(err))
		return nil, err
	}

	info := &utils.ProcessedFileInfo{
		InputFile:      base,
		Kind:           kind.Name,
		Records:        result.Stats.Records,
		Skipped:        result.Stats.Skipped,
		Unclassified:   len(result.Unclassified),
		ProcessingTime: result.Stats.ProcessingTime,
	}

	var bundle []utils.BundleEntry
	for _, script := range result.Generated() {
		name := utils.GenerateOutputFileName(r.cfg.FileNameFormat, map[string]string{
			"kind":   kind.Name,
			"script": script.Name,
			"input":  utils.BaseName(base),
		})
		info.Scripts = append(info.Scripts, script.Name)
		info.LogLines = append(info.LogLines, script.LogLines()...)
		bundle = append(bundle, utils.BundleEntry{Name: name, Lines: script.Lines})

		if r.opts.DryRun {
			log.Info("Would write script", "script", script.Name, "name", name, "lines", len(script.Lines))
			continue
		}
		written, err := r.files.WriteScript(name, script.Lines)
		if err != nil {
			return nil, err
		}
		log.Info("Wrote script", "script", script.Name, "path", written)
		if r.cfg.ArchiveInputs {
			if _, err := r.files.ArchiveOutputFile(written); err != nil {
				log.Warn("Failed to archive script", "path", written, "error", err)
			}
		}
	}

	if r.opts.DryRun {
		return info, nil
	}

	if r.opts.Zip || r.cfg.BundleZip {
		if len(bundle) > 0 {
			zipPath := filepath.Join(r.cfg.OutputDir,
				fmt.Sprintf("%s_%s.zip", utils.BaseName(base), time.Now().Format("20060102_150405")))
			if err := utils.WriteZipBundle(zipPath, bundle); err != nil {
				return nil, err
			}
			log.Info("Wrote bundle", "path", zipPath, "scripts", len(bundle))
		}
	}

	r.writeErrorLog(base, resultProblems(result))

	if r.cfg.ArchiveInputs {
		archived, err := r.files.ArchiveInputFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug("Archived input", "path", archived)
	}

	return info, nil
}

// convert runs the converter on one file.
func (r *Runner) convert(path string, kind *config.FileKind, log logger.Logger) (*converter.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	conv := converter.New(converter.Options{
		Synth: synth.Options{
			User:        r.cfg.SAPUser,
			Plant:       r.cfg.Plant,
			LogPath:     r.cfg.ReservationLogPath,
			CostCenters: templates.NewCostCenters(r.cfg.CostCenters),
			Today:       r.opts.Today,
		},
		Format:  converter.FormatFromName(path),
		CSV:     kind.CSVSettings,
		Cleanup: kind.CleanupRules,
		Logger:  log,
	})
	return conv.Convert(f, kind.Schema)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (r *Runner) writeErrorLog(inputFile string, entries []utils.ErrorLogEntry) {
	if r.opts.DryRun || len(entries) == 0 {
		return
	}
	if _, err := utils.WriteErrorLog(r.cfg.LogDir, inputFile, entries); err != nil {
		r.logger.Warn("Failed to write error log", "file", inputFile, "error", err)
	}
}

// schemaProblems turns a conversion error into error log entries.
func schemaProblems(err error) []utils.ErrorLogEntry {
	var schemaErr *validation.SchemaError
	if !errors.As(err, &schemaErr) {
		return []utils.ErrorLogEntry{{Message: err.Error()}}
	}
	entries := make([]utils.ErrorLogEntry, 0, len(schemaErr.Problems))
	for _, p := range schemaErr.Problems {
		entries = append(entries, utils.ErrorLogEntry{Row: p.RowNumber, Key: p.Column, Message: p.Error()})
	}
	return entries
}

// resultProblems lists the skipped groups and unclassified records.
func resultProblems(result *converter.Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	for _, script := range result.Scripts {
		for _, skip := range script.Skipped {
			entries = append(entries, utils.ErrorLogEntry{
				Key:     skip.Key,
				Message: fmt.Sprintf("skipped in script %s: %s", script.Name, skip.Reason),
			})
		}
	}
	for _, rec := range result.Unclassified {
		entries = append(entries, utils.ErrorLogEntry{
			Row:     rec.Row,
			Key:     rec.TransactionKey,
			Message: fmt.Sprintf("movement code %q is not routed", rec.MovementCode),
		})
	}
	return entries
}

// cleanArchives removes archived files past the retention period.
func (r *Runner) cleanArchives() {
	if r.cfg.ArchiveRetentionDays <= 0 {
		return
	}
	maxAge := time.Duration(r.cfg.ArchiveRetentionDays) * 24 * time.Hour
	for _, dir := range []string{r.cfg.InputArchiveDir, r.cfg.OutputArchiveDir} {
		removed, err := utils.CleanOldArchives(dir, maxAge)
		if err != nil {
			r.logger.Warn("Failed to clean archive", "dir", dir, "error", err)
			continue
		}
		if removed > 0 {
			r.logger.Info("Cleaned archive", "dir", dir, "removed", removed)
		}
	}
}
