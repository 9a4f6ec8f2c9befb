// =============================================================================
// SAP Scripts Generator - Configuration Module
// =============================================================================
//
// This module handles loading and validating configuration from YAML files.
//
// CONFIGURATION FILE:
//   config.yaml - Global settings: SAP user and plant, directories, output
//                 naming, concurrency, cost-center table, file kinds and the
//                 HTTP server address.
//
// FILE KINDS:
//   A file kind binds file name patterns to one of the two sheet schemas
//   ("emisiones" or "solicitudes"), plus CSV settings and cell cleanup rules
//   for that kind of export.
//
// USAGE:
//   cfg, err := config.LoadMainConfig("config.yaml", false)
//   kind, ok := cfg.MatchFileKind("emisiones_octubre.xlsx")
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION
// =============================================================================

// MainConfig represents the global application configuration.
type MainConfig struct {
	// =========================================================================
	// SAP SETTINGS
	// =========================================================================

	// SAPUser is written as goods recipient in every reservation.
	// Can be overridden per run with --user or per HTTP request.
	SAPUser string `yaml:"sap_user"`

	// Plant is the SAP plant code entered in MB21 and the add-line dialog.
	// Default: "PE06"
	Plant string `yaml:"plant" validate:"required,len=4,alphanum"`

	// ReservationLogPath is the VR log file the generated scripts append
	// created reservation numbers to. It is a path on the machine running
	// the scripts, not on this one.
	ReservationLogPath string `yaml:"reservation_log_path"`

	// CostCenters maps cost-center codes to area-function codes for the
	// 201/202 movement family.
	// Default: the two cost centers of the original workbook.
	CostCenters map[string]string `yaml:"cost_centers" validate:"dive,keys,required,endkeys,required"`

	// =========================================================================
	// DIRECTORY PATHS
	// =========================================================================

	// InputDir is the directory where input workbooks are placed.
	// Default: "./input"
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir is the directory where generated scripts are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir is where processed input files are moved.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir is where copies of generated scripts are kept.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// LogDir receives the per-run summary and error logs.
	// Default: "./logs"
	LogDir string `yaml:"log_dir"`

	// =========================================================================
	// LOGGING
	// =========================================================================

	// LogLevel is the minimum level to log.
	// Valid values: "debug", "info", "warn", "error", "disabled". Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error disabled"`

	// LogJSON switches the console logger to JSON lines.
	LogJSON bool `yaml:"log_json"`

	// =========================================================================
	// OUTPUT
	// =========================================================================

	// FileNameFormat names each generated script.
	// Placeholders: {kind}, {script}, {timestamp}, {uuid}, {input}
	// Default: "{kind}_{script}_{timestamp}_{uuid}.vbs"
	FileNameFormat string `yaml:"file_name_format" validate:"required"`

	// BundleZip additionally writes every script of one input into a zip.
	BundleZip bool `yaml:"bundle_zip"`

	// =========================================================================
	// PROCESSING
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1,lte=64"`

	// ContinueOnError keeps a batch running after a file fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveInputs moves processed inputs to InputArchiveDir and copies
	// generated scripts to OutputArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveByDate stores archived files under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// ArchiveRetentionDays removes archived files older than this many days
	// at the start of a batch run. Zero keeps everything.
	ArchiveRetentionDays int `yaml:"archive_retention_days" validate:"gte=0"`

	// FileKinds select the sheet schema for a file by name.
	// Default: one kind per schema, matched on "*emision*" / "*solicitud*".
	FileKinds []FileKind `yaml:"file_kinds" validate:"dive"`

	// Server configures the HTTP shell.
	Server ServerConfig `yaml:"server"`
}

// =============================================================================
// FILE KIND CONFIGURATION
// =============================================================================

// FileKind binds input file names to a sheet schema.
type FileKind struct {
	// Name identifies the kind in output file names and logs.
	Name string `yaml:"name" validate:"required"`

	// Schema is "emisiones" or "solicitudes".
	Schema string `yaml:"schema" validate:"required,oneof=emisiones solicitudes"`

	// FileMatchingPatterns are glob patterns matched case-insensitively
	// against the input file name.
	// Example: ["*emision*.xlsx", "EMI_*.csv"]
	FileMatchingPatterns []string `yaml:"file_matching_patterns" validate:"min=1,dive,required"`

	// CSVSettings apply when the input is a CSV export.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// CleanupRules rewrite raw cells before normalization.
	CleanupRules []CleanupRule `yaml:"cleanup_rules" validate:"dive"`
}

// CSVSettings contains settings for reading CSV exports.
type CSVSettings struct {
	// Delimiter is the field separator. Empty means auto-detect "," or ";".
	Delimiter string `yaml:"delimiter"`

	// Encoding of the export.
	// Valid values: "UTF-8", "Windows-1252", "ISO-8859-1". Default: "UTF-8"
	Encoding string `yaml:"encoding" validate:"oneof=UTF-8 Windows-1252 ISO-8859-1"`
}

// CleanupRule applies a chain of actions to one named column.
type CleanupRule struct {
	// Column is the schema column name, e.g. "ESTADO".
	Column string `yaml:"column" validate:"required"`

	// Actions run in order; each receives the previous result.
	Actions []CleanupAction `yaml:"actions" validate:"min=1,dive"`
}

// CleanupAction is one cell rewrite.
//
// TYPES:
//   - trim, uppercase, lowercase, collapse_spaces
//   - prepend / append: add Value
//   - replace: replace Find with Value
//   - regex_replace: replace matches of Find with Value
//   - lookup: replace via LookupTable, unchanged when absent
//   - default: use Value when the cell is empty
type CleanupAction struct {
	Type string `yaml:"type" validate:"required,oneof=trim uppercase lowercase collapse_spaces prepend append replace regex_replace lookup default"`

	Value string `yaml:"value,omitempty"`

	Find string `yaml:"find,omitempty"`

	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	// Host to bind. Default: "127.0.0.1"
	Host string `yaml:"host" validate:"required"`

	// Port to listen on. Default: 8000
	Port int `yaml:"port" validate:"gte=1,lte=65535"`

	// MaxUploadMB limits the uploaded workbook size. Default: 20
	MaxUploadMB int64 `yaml:"max_upload_mb" validate:"gte=1"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the config.yaml file.
//   - explicit: Whether the path was given by the user. A missing default
//     file means "use defaults"; a missing explicit file is an error.
//
// RETURNS:
//   - A pointer to the loaded MainConfig.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, explicit bool) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults sets default values for any unspecified configuration.
func applyMainConfigDefaults(config *MainConfig) {
	if config.Plant == "" {
		config.Plant = "PE06"
	}
	if config.CostCenters == nil {
		config.CostCenters = map[string]string{
			"200000703": "90010010",
			"200000702": "92030040",
		}
	}
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = "{kind}_{script}_{timestamp}_{uuid}.vbs"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if len(config.FileKinds) == 0 {
		config.FileKinds = []FileKind{
			{Name: "emisiones", Schema: "emisiones", FileMatchingPatterns: []string{"*emision*"}},
			{Name: "solicitudes", Schema: "solicitudes", FileMatchingPatterns: []string{"*solicitud*"}},
		}
	}
	for i := range config.FileKinds {
		if config.FileKinds[i].CSVSettings.Encoding == "" {
			config.FileKinds[i].CSVSettings.Encoding = "UTF-8"
		}
	}
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 20
	}
}

// validateMainConfig validates struct tags and cross-field rules.
func validateMainConfig(config *MainConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return err
	}

	seen := make(map[string]bool, len(config.FileKinds))
	for _, kind := range config.FileKinds {
		if seen[kind.Name] {
			return fmt.Errorf("duplicate file kind %q", kind.Name)
		}
		seen[kind.Name] = true

		switch kind.CSVSettings.Delimiter {
		case "", ",", ";", "|", "tab", "\t", `\t`:
		default:
			return fmt.Errorf("file kind %q: unsupported delimiter %q", kind.Name, kind.CSVSettings.Delimiter)
		}

		for _, pattern := range kind.FileMatchingPatterns {
			if _, err := filepath.Match(pattern, ""); err != nil {
				return fmt.Errorf("file kind %q: bad pattern %q: %w", kind.Name, pattern, err)
			}
		}
	}

	return nil
}

// EnsureDirectories creates the working directories of a batch run.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.InputDir, c.OutputDir, c.LogDir}
	if c.ArchiveInputs {
		dirs = append(dirs, c.InputArchiveDir, c.OutputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE KIND MATCHING
// =============================================================================

// MatchFileKind returns the first file kind with a pattern matching the
// base name of fileName. Matching is case-insensitive.
func (c *MainConfig) MatchFileKind(fileName string) (*FileKind, bool) {
	name := strings.ToLower(filepath.Base(fileName))

	for i := range c.FileKinds {
		for _, pattern := range c.FileKinds[i].FileMatchingPatterns {
			if matched, _ := filepath.Match(strings.ToLower(pattern), name); matched {
				return &c.FileKinds[i], true
			}
		}
	}

	return nil, false
}

// FileKindByName returns the file kind with the given name.
func (c *MainConfig) FileKindByName(name string) (*FileKind, bool) {
	for i := range c.FileKinds {
		if c.FileKinds[i].Name == name {
			return &c.FileKinds[i], true
		}
	}
	return nil, false
}

// FileKindBySchema returns the first file kind using the given schema.
func (c *MainConfig) FileKindBySchema(schema string) (*FileKind, bool) {
	for i := range c.FileKinds {
		if c.FileKinds[i].Schema == schema {
			return &c.FileKinds[i], true
		}
	}
	return nil, false
}
