// =============================================================================
// Wide-to-Long Normalizer - Process Command
// =============================================================================
//
// This file defines the 'process' command, which normalizes every wide file
// in the input directory.
//
// COMMAND USAGE:
//   normalizer process [flags]
//
// FLAGS:
//   --dry-run : Analyze and transform only; write no files or stores
//   --file    : Process only this file instead of scanning input_dir
//
// PROCESSING PIPELINE:
//   1. Discover .csv and .xlsx files in the input directory
//   2. For each file (concurrently, at most max_concurrency at once):
//      a. Analyze the header and save the spec to output_dir
//      b. Transform and derive monthly values
//      c. Write the normalized output to output_dir (plus an .xsd for xml
//         output when xml.write_xsd is set)
//      d. Load into its own store data_dir/<name>.db
//      e. Archive the input (archive_on_success)
//   3. Write the summary and error logs, print the summary
//
// One file failing does not stop the others. Each file gets its own store,
// so no two workers write to the same database; a batch with two inputs of
// the same base name (werke.csv, werke.xlsx) is rejected before it starts.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/converter"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/export"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs analysis and transformation without writing anything.
var dryRun bool

// filePath restricts processing to one file.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Normalize every wide file in the input directory",
	Long: `The process command scans the input directory for .csv and .xlsx files and
runs the full pipeline on each: header analysis, transformation, monthly
deltas, output file and SQLite store.

Files are processed concurrently (max_concurrency). Each file is independent;
errors in one file do not affect the others.

On successful processing:
  - The spec and normalized output are placed in the output directory
  - The records are loaded into data_dir/<name>.db
  - The input is moved to the input archive (archive_on_success)

On error:
  - An error log is created in the output directory
  - The input remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cmd.OutOrStdout(), mainConfig)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Analyze and transform only; write no files or stores",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file instead of scanning the input directory",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess normalizes the discovered files and reports a summary.
func runProcess(ctx context.Context, out io.Writer, cfg *config.MainConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	summary := utils.ProcessingSummary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
	log := logger.With(zap.String("batch_id", summary.RunID))

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.DataDir, cfg.InputArchiveDir)

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var files []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("input file not found: %s", filePath)
		}
		files = []string{filePath}
	} else {
		found, err := fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
		files = found
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No input files found in %s\n", cfg.InputDir)
		return nil
	}

	// Files with the same base name would load into the same store.
	if collisions := utils.NameCollisions(files); len(collisions) > 0 {
		names := make([]string, len(collisions))
		for i, group := range collisions {
			names[i] = strings.Join(group, ", ")
		}
		return fmt.Errorf("input files share a base name and would write the same store: %s", strings.Join(names, "; "))
	}

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	log.Info("processing batch", zap.Int("files", len(files)), zap.Int("max_concurrency", cfg.MaxConcurrency), zap.Bool("dry_run", dryRun))

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := make([]converter.Result, len(files))
	archived := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)

	for i, file := range files {
		g.Go(func() error {
			results[i] = converter.New(file, fileOptions(fm, cfg, file), logger).Run(gctx)

			if results[i].Success && cfg.ArchiveOnSuccess && !dryRun {
				path, err := fm.ArchiveInputFile(file)
				if err != nil {
					log.Warn("failed to archive input", zap.String("file", file), zap.Error(err))
				} else {
					archived[i] = path
				}
			}
			// Failures are collected per file; returning nil keeps the
			// group from cancelling the other workers.
			return nil
		})
	}
	_ = g.Wait()

	// =========================================================================
	// STEP 3: SUMMARY AND LOGS
	// =========================================================================

	summary.EndTime = time.Now()
	summary.TotalFiles = len(files)

	var errorEntries []utils.ErrorLogEntry
	for i, r := range results {
		if r.Success {
			summary.SuccessfulFiles++
			summary.TotalRecords += r.Stats.RecordsCreated
			summary.TotalMonthly += r.Stats.MonthlyValues
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   r.FilePath,
				OutputFile:  r.OutputFile,
				StorePath:   r.StorePath,
				ArchivePath: archived[i],
				Records:     r.Stats.RecordsCreated,
				MonthGaps:   r.Stats.MonthGaps,
				ProcessTime: r.Stats.ProcessingTime,
			})
			continue
		}

		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    r.FilePath,
			ErrorMessage: r.Error.Error(),
			ErrorType:    converter.ErrorKind(r.Error),
		})
		errorEntries = append(errorEntries, errorLogEntry(r))
	}

	if !dryRun {
		if _, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			log.Warn("failed to write summary log", zap.Error(err))
		}
		if path, err := utils.WriteErrorLog(errorEntries, cfg.OutputDir); err != nil {
			log.Warn("failed to write error log", zap.Error(err))
		} else if path != "" {
			log.Info("wrote error log", zap.String("path", path))
		}
	}

	printSummary(out, summary)

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d files failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// fileOptions builds the pipeline options for one input file.
func fileOptions(fm *utils.FileManager, cfg *config.MainConfig, file string) converter.Options {
	xmlOpts := export.XMLOptions(cfg.XML)
	opts := converter.Options{
		Settings:     cfg.CSV,
		OutputFormat: cfg.OutputFormat,
		Export:       export.Options{XML: &xmlOpts},
	}
	if dryRun {
		return opts
	}

	opts.SpecOutput = fm.SpecPath(file)
	opts.OutputPath = fm.OutputPath(file, cfg.OutputNameFormat, export.Extension(cfg.OutputFormat))
	opts.StorePath = fm.StorePath(file)
	if cfg.OutputFormat == config.FormatXML && cfg.XML.WriteXSD {
		opts.XSDPath = fm.OutputPath(file, cfg.OutputNameFormat, ".xsd")
	}
	return opts
}

// errorLogEntry turns a failed result into an error log entry, keeping the
// row, column and value of structured errors.
func errorLogEntry(r converter.Result) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(r.FilePath),
		ErrorType:    converter.ErrorKind(r.Error),
		ErrorMessage: r.Error.Error(),
		ColumnIndex:  -1,
	}

	var typed *types.Error
	if errors.As(r.Error, &typed) {
		entry.RowNumber = typed.Row
		entry.ColumnIndex = typed.Column
		entry.CellValue = typed.Value
	}
	return entry
}

func printSummary(out io.Writer, summary utils.ProcessingSummary) {
	fmt.Fprintln(out, "=== Processing Summary ===")
	fmt.Fprintf(out, "Files:      %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful: %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:     %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Records:    %d\n", summary.TotalRecords)
	fmt.Fprintf(out, "Duration:   %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	for _, ff := range summary.FailedFilesList {
		fmt.Fprintf(out, "  FAILED %s: %s\n", ff.InputFile, ff.ErrorMessage)
	}
}
