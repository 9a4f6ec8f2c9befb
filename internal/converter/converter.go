// =============================================================================
// SAP Scripts Generator - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline for one input file, from the
// uploaded workbook bytes to the ordered set of generated scripts.
//
// CONVERSION PIPELINE:
//   1. Read the schema's sheet (xlsx) or the CSV export
//   2. Apply the file kind's cleanup rules
//   3. Normalize: schema check, pending filter, coercion
//   4. Classify by operation and by movement bucket
//   5. Run one synthesizer per operation / movement combination
//
// ENTRY POINTS:
//   ConvertEmissions - emission file: scripts 221, 201
//   ConvertRequests  - request file: scripts 222, 202, add, mod, del, sfin,
//                      and 221, 201 for emission rows
//
// CONCURRENCY:
//   A Converter may be shared between goroutines. Every call builds its own
//   normalizer; the synthesizer and cleaner hold no mutable state.
//
// =============================================================================

package converter

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Martin-Flores-L/sap-scripts-generator/internal/classifier"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/config"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/csvparser"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/normalizer"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/synth"
	"github.com/Martin-Flores-L/sap-scripts-generator/internal/types"
	"github.com/Martin-Flores-L/sap-scripts-generator/pkg/logger"
)

// =============================================================================
// INPUT FORMAT
// =============================================================================

// Format is the container format of an input file.
type Format int

const (
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = iota
	// FormatCSV is a CSV export of the schema's sheet.
	FormatCSV
)

// FormatFromName infers the format from a file extension; anything that is
// not .csv is read as a workbook.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return FormatCSV
	}
	return FormatXLSX
}

func (f Format) String() string {
	if f == FormatCSV {
		return "csv"
	}
	return "xlsx"
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single file.
type Result struct {
	// Schema is the name of the schema the file was read with.
	Schema string

	// Scripts holds every script of the entry point in a fixed order,
	// including those with StatusNoInput.
	Scripts []*types.Script

	// Unclassified holds records whose movement code matched no bucket.
	Unclassified []types.Record

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Rows is the number of data rows read, header excluded.
	Rows int

	// Records is the number of pending records after normalization.
	Records int

	// ScriptsGenerated counts scripts with StatusGenerated.
	ScriptsGenerated int

	// Skipped counts groups and positions left out of scripts.
	Skipped int

	// ProcessingTime is the time taken to convert the file.
	ProcessingTime time.Duration
}

// Script returns the script with the given name, or nil.
func (r *Result) Script(name string) *types.Script {
	for _, s := range r.Scripts {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Generated returns the scripts that carry command lines.
func (r *Result) Generated() []*types.Script {
	var out []*types.Script
	for _, s := range r.Scripts {
		if s.Status == types.StatusGenerated {
			out = append(out, s)
		}
	}
	return out
}

// Empty reports whether the file had no pending records.
func (r *Result) Empty() bool {
	return r.Stats.Records == 0
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configures a Converter.
type Options struct {
	// Synth configures the script synthesizers (user, plant, log path...).
	Synth synth.Options

	// Format of the inputs. Default: FormatXLSX.
	Format Format

	// CSV settings used when Format is FormatCSV.
	CSV config.CSVSettings

	// Cleanup rules applied to raw cells before normalization.
	Cleanup []config.CleanupRule

	// Logger receives progress and diagnostics. Default: the package logger.
	Logger logger.Logger
}

// Converter converts input files into scripts.
type Converter struct {
	synth   *synth.Synthesizer
	format  Format
	csv     csvparser.Settings
	cleanup []config.CleanupRule
	logger  logger.Logger
}

// New creates a new Converter instance.
func New(opts Options) *Converter {
	log := opts.Logger
	if log == nil {
		log = logger.GetDefault()
	}
	return &Converter{
		synth:  synth.New(opts.Synth),
		format: opts.Format,
		csv: csvparser.Settings{
			Delimiter: opts.CSV.Delimiter,
			Encoding:  opts.CSV.Encoding,
		},
		cleanup: opts.Cleanup,
		logger:  log,
	}
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// ConvertEmissions converts an emission file (sheet "Sheet1", key PO).
// Every pending record is routed by movement code to the 221 or 201 script.
func (c *Converter) ConvertEmissions(r io.Reader) (*Result, error) {
	return c.Convert(r, normalizer.SchemaEmissions)
}

// ConvertRequests converts a request file (sheet "DETALLE", key SVR).
func (c *Converter) ConvertRequests(r io.Reader) (*Result, error) {
	return c.Convert(r, normalizer.SchemaRequests)
}

// Convert reads, normalizes and synthesizes one input.
//
// PARAMETERS:
//   - r: The input bytes (workbook or CSV export).
//   - schemaName: normalizer.SchemaEmissions or normalizer.SchemaRequests.
//
// RETURNS:
//   - The result with every script of the entry point.
//   - *validation.SchemaError when the input does not match the schema;
//     no partial result is returned.
func (c *Converter) Convert(r io.Reader, schemaName string) (*Result, error) {
	startTime := time.Now()

	schema, err := normalizer.SchemaByName(schemaName)
	if err != nil {
		return nil, err
	}
	log := c.logger.With("schema", schema.Name, "format", c.format.String())

	// =========================================================================
	// STEP 1: READ RAW TABLE
	// =========================================================================

	table, err := c.read(r, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s input: %w", schema.Name, err)
	}

	// =========================================================================
	// STEP 2: CLEANUP
	// =========================================================================

	cleaner, err := NewCleaner(c.cleanup, schema)
	if err != nil {
		return nil, err
	}
	table = cleaner.Apply(table, schema.HeaderRows)

	// =========================================================================
	// STEP 3: NORMALIZE
	// =========================================================================

	records, err := normalizer.New().Normalize(table, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s input: %w", schema.Name, err)
	}

	rows := len(table.Rows) - schema.HeaderRows
	if rows < 0 {
		rows = 0
	}
	log.Debug("Normalized input", "rows", rows, "pending", len(records))

	// =========================================================================
	// STEP 4-5: CLASSIFY AND SYNTHESIZE
	// =========================================================================

	result, err := c.ConvertRecords(schema.Name, records)
	if err != nil {
		return nil, err
	}
	result.Stats.Rows = rows
	result.Stats.ProcessingTime = time.Since(startTime)

	log.Info("Converted input",
		"pending", result.Stats.Records,
		"scripts", result.Stats.ScriptsGenerated,
		"skipped", result.Stats.Skipped,
		"unclassified", len(result.Unclassified),
		"duration", result.Stats.ProcessingTime,
	)
	return result, nil
}

// ConvertRecords classifies already normalized records and runs the
// synthesizers of the schema's entry point.
func (c *Converter) ConvertRecords(schemaName string, records []types.Record) (*Result, error) {
	result := &Result{Schema: schemaName}
	result.Stats.Records = len(records)

	var err error
	switch schemaName {
	case normalizer.SchemaEmissions:
		err = c.emissionScripts(result, records)
	case normalizer.SchemaRequests:
		err = c.requestScripts(result, records)
	default:
		return nil, fmt.Errorf("%w: %s", normalizer.ErrUnknownSchema, schemaName)
	}
	if err != nil {
		return nil, err
	}

	for _, s := range result.Scripts {
		if s.Status == types.StatusGenerated {
			result.Stats.ScriptsGenerated++
		}
		result.Stats.Skipped += len(s.Skipped)
		for _, skip := range s.Skipped {
			c.logger.Warn("Skipped group", "script", s.Name, "key", skip.Key, "reason", skip.Reason)
		}
	}
	for _, r := range result.Unclassified {
		c.logger.Warn("Unclassified movement code",
			"row", r.Row, "key", r.TransactionKey, "movement", r.MovementCode)
	}

	return result, nil
}

// =============================================================================
// SCRIPT SETS
// =============================================================================

// emissionScripts routes every record by movement code, whatever its
// request type.
func (c *Converter) emissionScripts(result *Result, records []types.Record) error {
	split := classifier.ByMovement(records)
	result.Unclassified = append(result.Unclassified, split.Unclassified...)

	for _, bucket := range classifier.Buckets() {
		script, err := c.synth.Emission(split.Buckets[bucket], bucket)
		if err != nil {
			return err
		}
		result.Scripts = append(result.Scripts, script)
	}
	return nil
}

// requestScripts splits by operation first. Returns and emissions are then
// routed by movement code; change operations go straight to MB22.
func (c *Converter) requestScripts(result *Result, records []types.Record) error {
	byOp := classifier.ByOperation(records)

	returns := classifier.ByMovement(byOp[types.OperationReturn])
	result.Unclassified = append(result.Unclassified, returns.Unclassified...)
	for _, bucket := range classifier.Buckets() {
		script, err := c.synth.Return(returns.Buckets[bucket], bucket)
		if err != nil {
			return err
		}
		result.Scripts = append(result.Scripts, script)
	}

	changes := []struct {
		op  types.OperationType
		run func([]types.Record) (*types.Script, error)
	}{
		{types.OperationAdd, c.synth.Add},
		{types.OperationModify, c.synth.Modify},
		{types.OperationDelete, c.synth.Delete},
		{types.OperationFinalize, c.synth.Finalize},
	}
	for _, change := range changes {
		script, err := change.run(byOp[change.op])
		if err != nil {
			return err
		}
		result.Scripts = append(result.Scripts, script)
	}

	return c.emissionScripts(result, byOp[types.OperationEmission])
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// read loads the raw table in the configured format.
func (c *Converter) read(r io.Reader, schema *types.Schema) (*types.RawTable, error) {
	if c.format == FormatCSV {
		return normalizer.ReadCSV(r, schema, c.csv)
	}
	return normalizer.ReadXLSX(r, schema)
}

// ConvertBytes is a convenience wrapper for in-memory inputs.
func (c *Converter) ConvertBytes(data []byte, schemaName string) (*Result, error) {
	return c.Convert(bytes.NewReader(data), schemaName)
}
