// =============================================================================
// Inventory Consolidator - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the consolidator,
// including:
//   - Input document discovery
//   - Directory management
//   - Output file naming
//   - Diagnostics log and processing summary generation
//
// OUTPUT LAYOUT (one run):
//   output/
//     relatorio_estoque_20240115_143022_a1b2c3d4.xlsx
//     diagnostics_20240115_143022.txt         (only when lines were skipped)
//     processing_summary_20240115_143022.txt  (when enabled)
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the consolidator.
type FileManager struct {
	// InputDir is the directory scanned for branch documents.
	InputDir string

	// OutputDir is the directory where reports and logs are written.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist. The
// input directory is only read and is never created.
func (fm *FileManager) EnsureDirectories() error {
	return EnsureDir(fm.OutputDir)
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles scans the input directory for files matching the pattern.
//
// PARAMETERS:
//   - pattern: A glob pattern to match files (e.g., "*.pdf").
//              If empty, defaults to "*.pdf". Matching ignores case, so
//              "*.pdf" also finds "RECIFE.PDF".
//
// RETURNS:
//   - The matching file paths, sorted by name.
//   - An error if the directory cannot be read or the pattern is invalid.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if fm.InputDir == "" {
		return nil, nil
	}
	if pattern == "" {
		pattern = "*.pdf"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	lowered := strings.ToLower(pattern)
	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, _ := filepath.Match(lowered, strings.ToLower(entry.Name()))
		if ok {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// DiscoverInputFilesRecursive scans the input directory recursively.
//
// PARAMETERS:
//   - extension: The file extension to match (e.g., ".pdf"), ignoring case.
//
// RETURNS:
//   - The matching file paths in lexical walk order.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFilesRecursive(extension string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(fm.InputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if extension == "" || strings.HasSuffix(strings.ToLower(path), strings.ToLower(extension)) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	return files, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}       - A random UUID
//               {short_uuid} - The first 8 characters of the UUID
//               {timestamp}  - Run timestamp (YYYYMMDD_HHMMSS)
//               {date}       - Run date (YYYYMMDD)
//               {time}       - Run time (HHMMSS)
//   - ext: The required extension, e.g. ".xlsx".
//   - now: The run time.
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "relatorio_estoque_{timestamp}_{short_uuid}"
//   output: "relatorio_estoque_20240115_143022_a1b2c3d4.xlsx"
func GenerateOutputFileName(format, ext string, now time.Time, params map[string]string) string {
	id := uuid.New().String()

	replacements := []string{
		"{uuid}", id,
		"{short_uuid}", id[:8],
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}

	// Custom params are applied in key order so the result is stable.
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		replacements = append(replacements, "{"+key+"}", params[key])
	}

	result := strings.NewReplacer(replacements...).Replace(format)

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single skipped line or unlabelled document.
type ErrorLogEntry struct {
	FileName     string
	ErrorType    string
	ErrorMessage string
	PageNumber   int
	LineNumber   int
	LineText     string
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//   - now: The run time, used in the file name and header.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	timestamp := now.Format("20060102_150405")
	logFileName := fmt.Sprintf("diagnostics_%s.txt", timestamp)
	logPath := filepath.Join(outputDir, logFileName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Inventory Consolidator - Diagnostics Log\n"+
		"Generated: %s\n"+
		"Total Entries: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Entry #%d\n"+
			"  File:           %s\n"+
			"  Type:           %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.PageNumber > 0 {
			fmt.Fprintf(writer, "  Page:           %d\n", entry.PageNumber)
		}
		if entry.LineNumber > 0 {
			fmt.Fprintf(writer, "  Line Number:    %d\n", entry.LineNumber)
		}
		if entry.LineText != "" {
			fmt.Fprintf(writer, "  Line:           %s\n", entry.LineText)
		}

		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Diagnostics Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime   time.Time
	EndTime     time.Time
	OutputFile  string
	NoData      bool
	Records     int
	Codes       int
	Locations   []string
	Diagnostics int
	Documents   []DocumentInfo
}

// DocumentInfo contains information about one processed document.
type DocumentInfo struct {
	InputFile     string
	Location      string
	LocationFound bool
	Pages         int
	Records       int
	Diagnostics   int
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", timestamp)
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	output := summary.OutputFile
	if summary.NoData {
		output = "(no data, no report written)"
	}

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Inventory Consolidator - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Report:         %s\n\n"+
		"Statistics:\n"+
		"  Documents:          %d\n"+
		"  Records:            %d\n"+
		"  Item Codes:         %d\n"+
		"  Locations:          %d %s\n"+
		"  Diagnostics:        %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		output,
		len(summary.Documents),
		summary.Records,
		summary.Codes,
		len(summary.Locations),
		formatList(summary.Locations),
		summary.Diagnostics)

	if len(summary.Documents) > 0 {
		writer.WriteString("Documents:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, doc := range summary.Documents {
			location := doc.Location
			if !doc.LocationFound {
				location += " (no marker)"
			}
			fmt.Fprintf(writer, "  Input:        %s\n", doc.InputFile)
			fmt.Fprintf(writer, "  Location:     %s\n", location)
			fmt.Fprintf(writer, "  Pages:        %d\n", doc.Pages)
			fmt.Fprintf(writer, "  Records:      %d\n", doc.Records)
			fmt.Fprintf(writer, "  Diagnostics:  %d\n\n", doc.Diagnostics)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// formatList renders names as "[A, B]".
func formatList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
