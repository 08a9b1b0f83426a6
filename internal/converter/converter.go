// =============================================================================
// Inventory Consolidator - Converter Module
// =============================================================================
//
// This module contains the run orchestration. It drives one consolidation
// run from the list of branch documents to the written report.
//
// CONVERSION PIPELINE:
//   1. Extract records from every document, in input order
//   2. Aggregate the records into the consolidated table
//   3. Validate the table
//   4. Write the XLSX report
//   5. Write the optional side files (raw dump, diagnostics, summary)
//
// CONCURRENCY:
//   A run is synchronous. Every call to Run builds a fresh extraction
//   pipeline, so a Converter carries no state from one run to the next
//   apart from its input list. Callers that need a responsive front end run
//   Run on their own goroutine.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
	"github.com/ginjaninja78/inventory-consolidator/internal/config"
	"github.com/ginjaninja78/inventory-consolidator/internal/extraction"
	"github.com/ginjaninja78/inventory-consolidator/internal/location"
	"github.com/ginjaninja78/inventory-consolidator/internal/logging"
	"github.com/ginjaninja78/inventory-consolidator/internal/numparse"
	"github.com/ginjaninja78/inventory-consolidator/internal/pdftext"
	"github.com/ginjaninja78/inventory-consolidator/internal/report"
	"github.com/ginjaninja78/inventory-consolidator/internal/tokenizer"
	"github.com/ginjaninja78/inventory-consolidator/internal/types"
	"github.com/ginjaninja78/inventory-consolidator/internal/validation"
	"github.com/ginjaninja78/inventory-consolidator/pkg/utils"
)

// ErrValidationFailed is returned by a strict run whose table breaks a rule.
var ErrValidationFailed = errors.New("consolidated table failed validation")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one run.
type Result struct {
	// OutputFile is the path to the generated report.
	// This is empty if the run failed or found no data.
	OutputFile string

	// NoData is true when no document contained a data row. No report is
	// written in that case, and the run still counts as successful.
	NoData bool

	// Success indicates whether the run completed.
	Success bool

	// Error contains the error if the run failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats

	// Side files; empty when not written.
	RawDumpFile  string
	SummaryFile  string
	ErrorLogFile string

	// Diagnostics are the skipped lines and unlabelled documents.
	Diagnostics []types.Diagnostic

	// Documents has one entry per input document.
	Documents []extraction.DocumentStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	Documents   int
	Records     int
	Diagnostics int

	// Codes is the number of report rows.
	Codes int

	// Locations is the number of quantity columns.
	Locations int

	// ValidationErrors counts the table rule violations (warnings included).
	ValidationErrors int

	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options wires the collaborators of a Converter. Zero values select the
// production defaults.
type Options struct {
	// Opener opens documents. Default: pdftext.NewOpener()
	Opener pdftext.Opener

	Logger logging.Logger

	// Now returns the run time. Default: time.Now
	Now func() time.Time
}

// Converter consolidates branch documents into one report.
type Converter struct {
	cfg       *config.MainConfig
	inputs    []string
	resolver  location.Resolver
	tokenizer *tokenizer.Tokenizer
	numbers   numparse.Format
	writer    *report.Writer
	opener    pdftext.Opener
	logger    logging.Logger
	now       func() time.Time
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The application configuration. It is validated here.
//   - opts: Collaborators; see Options.
//
// RETURNS:
//   - A new Converter instance.
//   - An error if the configuration is invalid.
func New(cfg *config.MainConfig, opts Options) (*Converter, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cfg:       cfg,
		resolver:  resolver,
		tokenizer: tokenizer.New(cfg.Line.CodeDigits),
		numbers:   cfg.Numbers(),
		opener:    opts.Opener,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.opener == nil {
		c.opener = pdftext.NewOpener()
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.writer = report.NewWriter(report.Options{
		FileNameFormat: cfg.Report.FileNameFormat,
		SheetName:      cfg.Report.SheetName,
		Title:          cfg.Report.Title,
		Subtitle:       cfg.Report.Subtitle,
		NumberFormat:   cfg.Report.NumberFormat,
		Labels:         cfg.Report.Labels,
		Columns:        aggregation.ColumnOptions{IncludeTotalQuantity: cfg.Report.IncludeTotalQuantity},
	}, c.now, c.logger)

	for _, path := range cfg.Inputs {
		c.AddInput(path)
	}

	return c, nil
}

// AddInput appends a document to the run. Documents are processed in the
// order they were added, which decides the order of location columns.
func (c *Converter) AddInput(path string) {
	c.inputs = append(c.inputs, path)
}

// Inputs returns the documents of the next run.
func (c *Converter) Inputs() []string {
	out := make([]string, len(c.inputs))
	copy(out, c.inputs)
	return out
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes one consolidation run over the added documents.
//
// RETURNS:
//   - A Result struct containing the outcome of the run.
//
// PROCESSING STEPS:
//   1. Extract records
//   2. Aggregate
//   3. Validate the table
//   4. Write the report
//   5. Write the side files
func (c *Converter) Run() Result {
	startTime := c.now()
	result := Result{}

	// =========================================================================
	// STEP 1: EXTRACT RECORDS
	// =========================================================================

	c.logger.Info("Processing %d document(s) with %s strategy", len(c.inputs), c.resolver.Name())
	if len(c.inputs) == 0 {
		c.logger.Warn("No input documents")
	}

	numbers := c.numbers
	pipeline := extraction.New(extraction.Options{
		Opener:         c.opener,
		Resolver:       c.resolver,
		Tokenizer:      c.tokenizer,
		Numbers:        &numbers,
		UndefinedLabel: types.LocationKey(c.cfg.Marker.UndefinedLabel),
		Logger:         c.logger,
	})

	extracted, err := pipeline.Extract(c.inputs)
	if err != nil {
		result.Error = fmt.Errorf("failed to extract records: %w", err)
		return result
	}

	result.Diagnostics = extracted.Diagnostics
	result.Documents = extracted.Documents
	result.Stats.Documents = len(extracted.Documents)
	result.Stats.Records = len(extracted.Records)
	result.Stats.Diagnostics = len(extracted.Diagnostics)
	c.logger.Debug("Extracted %d record(s), %d diagnostic(s)", len(extracted.Records), len(extracted.Diagnostics))

	// =========================================================================
	// STEP 2: AGGREGATE
	// =========================================================================

	table, err := aggregation.Aggregate(extracted.Records)
	if errors.Is(err, aggregation.ErrNoData) {
		c.logger.Warn("No inventory lines found; no report written")
		result.NoData = true
		result.Success = true
		result.Stats.ProcessingTime = c.now().Sub(startTime)
		return result
	}
	if err != nil {
		result.Error = fmt.Errorf("failed to aggregate records: %w", err)
		return result
	}

	result.Stats.Codes = len(table.Rows)
	result.Stats.Locations = len(table.Locations)
	c.logger.Debug("Aggregated %d code(s) across %d location(s)", len(table.Rows), len(table.Locations))

	// =========================================================================
	// STEP 3: VALIDATE TABLE
	// =========================================================================
	// Rule violations are logged. Only validation.strict turns them into a
	// failed run.

	validator := validation.NewValidatorWithOptions(c.cfg.ValidationOptions())
	validationResult := validator.ValidateAll(table)
	result.Stats.ValidationErrors = len(validationResult.Errors)
	for _, ve := range validationResult.Errors {
		c.logger.Warn("Validation error: %s", ve.Error())
	}
	if c.cfg.Validation.Strict && !validationResult.IsValid {
		result.Error = fmt.Errorf("%w: %d error(s), %d warning(s)",
			ErrValidationFailed, validationResult.ErrorCount, validationResult.WarningCount)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE REPORT
	// =========================================================================

	fm := utils.NewFileManager(c.cfg.InputDir, c.cfg.OutputDir)
	if err := fm.EnsureDirectories(); err != nil {
		result.Error = err
		return result
	}

	outputPath, err := c.writer.Write(table, c.cfg.OutputDir)
	if err != nil {
		result.Error = fmt.Errorf("failed to write report: %w", err)
		return result
	}

	result.OutputFile = outputPath
	c.logger.Info("Wrote report to: %s", outputPath)

	// =========================================================================
	// STEP 5: SIDE FILES
	// =========================================================================
	// Failures here are logged; the report is already written.

	c.writeSideFiles(&result, extracted, table, startTime)

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = c.now().Sub(startTime)

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeSideFiles writes the raw dump, diagnostics log and summary that the
// configuration enables.
func (c *Converter) writeSideFiles(result *Result, extracted *extraction.Result, table *aggregation.Table, startTime time.Time) {
	dir := c.cfg.OutputDir

	if c.cfg.Report.RawDump {
		name := utils.GenerateOutputFileName("raw_records_{timestamp}", ".csv", startTime, nil)
		path, err := report.WriteRawDump(extracted.Records, dir, name)
		if err != nil {
			c.logger.Warn("Failed to write raw dump: %v", err)
		} else {
			result.RawDumpFile = path
			c.logger.Info("Wrote raw dump to: %s", path)
		}
	}

	if c.cfg.Report.WriteErrorLog && len(extracted.Diagnostics) > 0 {
		path, err := utils.WriteErrorLog(toErrorLogEntries(extracted.Diagnostics), dir, startTime)
		if err != nil {
			c.logger.Warn("Failed to write diagnostics log: %v", err)
		} else {
			result.ErrorLogFile = path
			c.logger.Info("Wrote %d diagnostic(s) to: %s", len(extracted.Diagnostics), path)
		}
	}

	if c.cfg.Report.WriteSummary {
		locations := make([]string, len(table.Locations))
		for i, loc := range table.Locations {
			locations[i] = string(loc)
		}

		summary := utils.ProcessingSummary{
			StartTime:   startTime,
			EndTime:     c.now(),
			OutputFile:  result.OutputFile,
			Records:     len(extracted.Records),
			Codes:       len(table.Rows),
			Locations:   locations,
			Diagnostics: len(extracted.Diagnostics),
		}
		for _, doc := range extracted.Documents {
			summary.Documents = append(summary.Documents, utils.DocumentInfo{
				InputFile:     doc.Path,
				Location:      string(doc.Location),
				LocationFound: doc.LocationFound,
				Pages:         doc.Pages,
				Records:       doc.Records,
				Diagnostics:   doc.Diagnostics,
			})
		}

		path, err := utils.WriteSummaryLog(summary, dir)
		if err != nil {
			c.logger.Warn("Failed to write summary: %v", err)
		} else {
			result.SummaryFile = path
		}
	}
}

// toErrorLogEntries converts diagnostics to error log entries.
func toErrorLogEntries(diagnostics []types.Diagnostic) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, len(diagnostics))
	for i, d := range diagnostics {
		entries[i] = utils.ErrorLogEntry{
			FileName:     d.Document,
			ErrorType:    string(d.Kind),
			ErrorMessage: d.Message,
			PageNumber:   d.Page,
			LineNumber:   d.LineNumber,
			LineText:     d.Line,
		}
	}
	return entries
}
