// =============================================================================
// Inventory Consolidator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration (config.yaml). Every setting has a default, so the program
// runs without a configuration file.
//
// EXAMPLE (config.yaml):
//
//   output_dir: ./output
//   input_dir: ./entrada
//   location_strategy: marker
//   marker:
//     keyword: Local
//     max_glyph_repeat: 2
//   number_format:
//     thousands_separator: "."
//     decimal_separator: ","
//   report:
//     title: "LOCASERV - LOCAÇÃO E SERVIÇOS LTDA"
//     include_total_quantity: false
//   validation:
//     strict: false
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
	"github.com/ginjaninja78/inventory-consolidator/internal/location"
	"github.com/ginjaninja78/inventory-consolidator/internal/logging"
	"github.com/ginjaninja78/inventory-consolidator/internal/numparse"
	"github.com/ginjaninja78/inventory-consolidator/internal/report"
	"github.com/ginjaninja78/inventory-consolidator/internal/tokenizer"
	"github.com/ginjaninja78/inventory-consolidator/internal/validation"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is where reports and logs are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputDir is scanned for branch documents. Empty disables scanning.
	InputDir string `yaml:"input_dir"`

	// InputPattern is the glob applied inside InputDir.
	// Default: "*.pdf"
	InputPattern string `yaml:"input_pattern"`

	// Inputs are documents always processed first, in the listed order.
	Inputs []string `yaml:"inputs"`

	// =========================================================================
	// EXTRACTION SETTINGS
	// =========================================================================

	// LocationStrategy selects how a document's branch is found.
	// Valid values: "marker", "filename"
	// Default: "filename"
	LocationStrategy string `yaml:"location_strategy"`

	Marker       MarkerConfig       `yaml:"marker"`
	Line         LineConfig         `yaml:"line"`
	NumberFormat NumberFormatConfig `yaml:"number_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	Report ReportConfig `yaml:"report"`

	Validation ValidationConfig `yaml:"validation"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file written in addition to stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// MarkerConfig configures the "marker" location strategy.
type MarkerConfig struct {
	// Keyword is printed before the branch ("Local: 3 - PETROLINA").
	// Default: "Local"
	Keyword string `yaml:"keyword"`

	// MaxGlyphRepeat tolerates keyword glyphs printed several times
	// ("LLooccaall::"). Default: 2
	MaxGlyphRepeat int `yaml:"max_glyph_repeat"`

	// Pattern overrides the keyword with a full regular expression. Its
	// first capture group must hold "<code> - <name>".
	Pattern string `yaml:"pattern"`

	// UndefinedLabel is the column for documents without a location.
	// Default: "UNDEFINED"
	UndefinedLabel string `yaml:"undefined_label"`
}

// LineConfig configures data row detection.
type LineConfig struct {
	// CodeDigits is the width of the item code. Default: 8
	CodeDigits int `yaml:"code_digits"`
}

// NumberFormatConfig describes the separators of the documents.
type NumberFormatConfig struct {
	// Default: "."
	ThousandsSeparator string `yaml:"thousands_separator"`

	// Default: ","
	DecimalSeparator string `yaml:"decimal_separator"`
}

// ReportConfig controls the XLSX report and the side files of a run.
type ReportConfig struct {
	// FileNameFormat names the report.
	// Placeholders: {timestamp} {date} {time} {uuid} {short_uuid}
	// Default: "relatorio_estoque_{timestamp}_{short_uuid}.xlsx"
	FileNameFormat string `yaml:"file_name_format"`

	// SheetName. Default: "Estoque"
	SheetName string `yaml:"sheet_name"`

	// Title is the first banner row, usually the company name.
	Title string `yaml:"title"`

	// Subtitle is the second banner row. "{date}" becomes dd/mm/yyyy.
	// An empty value omits the row.
	// Default: "RELATÓRIO GERAL DE ESTOQUE    DATA: {date}"
	Subtitle string `yaml:"subtitle"`

	// NumberFormat is the Excel format of numeric cells.
	// Default: "#,##0.00"
	NumberFormat string `yaml:"number_format"`

	// Labels overrides the column captions.
	Labels aggregation.Labels `yaml:"labels"`

	// IncludeTotalQuantity adds the total quantity column.
	IncludeTotalQuantity bool `yaml:"include_total_quantity"`

	// RawDump writes every extracted line to a CSV file next to the report.
	RawDump bool `yaml:"raw_dump"`

	// WriteSummary writes a processing summary file.
	WriteSummary bool `yaml:"write_summary"`

	// WriteErrorLog writes skipped lines to a diagnostics file.
	// Default: true
	WriteErrorLog bool `yaml:"write_error_log"`
}

// ValidationConfig controls the checks run on the consolidated table.
type ValidationConfig struct {
	// Strict fails the run, without writing a report, when the table breaks
	// any rule. Warnings count as errors.
	Strict bool `yaml:"strict"`

	// StopOnFirstError ends the checks at the first violation.
	StopOnFirstError bool `yaml:"stop_on_first_error"`

	// RequireDescription reports items printed without a description.
	RequireDescription bool `yaml:"require_description"`
}

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	config := &MainConfig{
		Report: ReportConfig{
			Subtitle:      report.DefaultSubtitle,
			WriteErrorLog: true,
		},
	}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - mustExist: When false, a missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, mustExist bool) (*MainConfig, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their default values.
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputPattern == "" {
		config.InputPattern = "*.pdf"
	}
	if config.LocationStrategy == "" {
		config.LocationStrategy = location.StrategyFilename
	}
	if config.Marker.Keyword == "" {
		config.Marker.Keyword = "Local"
	}
	if config.Marker.MaxGlyphRepeat == 0 {
		config.Marker.MaxGlyphRepeat = 2
	}
	if config.Marker.UndefinedLabel == "" {
		config.Marker.UndefinedLabel = "UNDEFINED"
	}
	if config.Line.CodeDigits == 0 {
		config.Line.CodeDigits = tokenizer.DefaultCodeDigits
	}
	if config.NumberFormat.ThousandsSeparator == "" && config.NumberFormat.DecimalSeparator == "" {
		def := numparse.DefaultFormat()
		config.NumberFormat.ThousandsSeparator = def.ThousandsSeparator
		config.NumberFormat.DecimalSeparator = def.DecimalSeparator
	}
	if config.Report.FileNameFormat == "" {
		config.Report.FileNameFormat = "relatorio_estoque_{timestamp}_{short_uuid}.xlsx"
	}
	if config.Report.SheetName == "" {
		config.Report.SheetName = "Estoque"
	}
	if config.Report.NumberFormat == "" {
		config.Report.NumberFormat = "#,##0.00"
	}
	config.Report.Labels = config.Report.Labels.WithDefaults()
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values that would fail a run.
// Every problem is reported, not just the first.
func (c *MainConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}

	if _, err := filepath.Match(c.InputPattern, ""); err != nil {
		errs = append(errs, fmt.Errorf("input_pattern %q: %w", c.InputPattern, err))
	}

	if _, err := c.Resolver(); err != nil {
		errs = append(errs, fmt.Errorf("location: %w", err))
	}

	if c.Marker.MaxGlyphRepeat < 1 {
		errs = append(errs, fmt.Errorf("marker.max_glyph_repeat must be at least 1 (got %d)", c.Marker.MaxGlyphRepeat))
	}

	if strings.TrimSpace(c.Marker.UndefinedLabel) == "" {
		errs = append(errs, errors.New("marker.undefined_label must not be blank"))
	}

	if c.Line.CodeDigits < 1 {
		errs = append(errs, fmt.Errorf("line.code_digits must be at least 1 (got %d)", c.Line.CodeDigits))
	}

	if err := c.Numbers().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("number_format: %w", err))
	}

	if strings.ContainsAny(c.Report.FileNameFormat, `/\`) {
		errs = append(errs, fmt.Errorf("report.file_name_format must be a file name, not a path (got %q)", c.Report.FileNameFormat))
	}

	if err := validateSheetName(c.Report.SheetName); err != nil {
		errs = append(errs, err)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// validateSheetName applies the worksheet naming rules of Excel.
func validateSheetName(name string) error {
	if len([]rune(name)) > 31 {
		return fmt.Errorf("report.sheet_name %q is longer than 31 characters", name)
	}
	if strings.ContainsAny(name, `[]:*?/\`) {
		return fmt.Errorf("report.sheet_name %q contains one of []:*?/\\", name)
	}
	return nil
}

// =============================================================================
// DOMAIN CONVERSIONS
// =============================================================================

// MarkerSettings returns the marker strategy settings.
func (c *MainConfig) MarkerSettings() location.MarkerConfig {
	return location.MarkerConfig{
		Keyword:        c.Marker.Keyword,
		MaxGlyphRepeat: c.Marker.MaxGlyphRepeat,
		Pattern:        c.Marker.Pattern,
	}
}

// Resolver builds the configured location resolver.
func (c *MainConfig) Resolver() (location.Resolver, error) {
	return location.New(c.LocationStrategy, c.MarkerSettings())
}

// ValidationOptions returns the table checks for a run.
func (c *MainConfig) ValidationOptions() validation.ValidationOptions {
	opts := validation.DefaultValidationOptions()
	opts.CodeDigits = c.Line.CodeDigits
	opts.StopOnFirstError = c.Validation.StopOnFirstError
	opts.TreatWarningsAsErrors = c.Validation.Strict
	opts.Labels = c.Report.Labels
	if c.Validation.RequireDescription {
		opts.CustomValidators = append(opts.CustomValidators, validation.RequireDescription)
	}
	return opts
}

// Numbers returns the configured number format.
func (c *MainConfig) Numbers() numparse.Format {
	return numparse.Format{
		ThousandsSeparator: c.NumberFormat.ThousandsSeparator,
		DecimalSeparator:   c.NumberFormat.DecimalSeparator,
	}
}
