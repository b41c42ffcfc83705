// =============================================================================
// Wide-to-Long Normalizer - Converter Module
// =============================================================================
//
// This module orchestrates the normalization pipeline for a single file. Each
// stage is a pure function from the analyzer, transformer and delta packages;
// the converter sequences them, logs stage boundaries and owns the side
// effects (spec file, output file, store).
//
// CONVERSION PIPELINE:
//   1. Load a saved spec (optional); its delimiter overrides the config
//   2. Read the source file (.csv or .xlsx) and analyze the two header
//      rows unless a spec was loaded
//   3. Save the spec (optional)
//   4. Transform data rows into NormalizedRecords
//   5. Derive MonthlyValues and report month gaps
//   6. Write the normalized output file and its XSD (optional)
//   7. Load both record sets into the SQLite store (optional)
//
// Every stage is all-or-nothing. A failed stage stops the run and no later
// side effect happens.
//
// CONCURRENCY:
//   A Converter handles one file. Different files may be converted in
//   parallel as long as they target different stores.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/analyzer"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/csvparser"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/export"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/numparse"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/store"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// RunID identifies this run in logs.
	RunID string

	// Spec is the spec used for the transform.
	Spec *types.TransformSpec

	// Records and Monthly are the produced record sets.
	Records []types.NormalizedRecord
	Monthly []types.MonthlyValue

	// Gaps lists non-contiguous months found in the records.
	Gaps []Gap

	// SpecFile, OutputFile, SchemaFile and StorePath are the written
	// artifacts. Each is empty if the stage was not requested or did not run.
	SpecFile   string
	OutputFile string
	SchemaFile string
	StorePath  string

	// Loaded reports the rows written to the store.
	Loaded store.LoadResult

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of rows in the source, headers included.
	RowsRead int

	// RecordsCreated is the number of NormalizedRecords.
	RecordsCreated int

	// MonthlyValues is the number of MonthlyValues.
	MonthlyValues int

	// MonthGaps is the number of non-contiguous month pairs.
	MonthGaps int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options select the inputs and side effects of a run.
type Options struct {
	// Settings control source parsing.
	Settings config.CSVSettings

	// SpecInput is a saved spec to use instead of analyzing the header.
	SpecInput string

	// SpecOutput receives the spec as JSON. Empty skips saving.
	SpecOutput string

	// OutputPath receives the normalized records. Empty skips the file.
	OutputPath string

	// OutputFormat is csv, json, xlsx or xml. Empty means csv.
	OutputFormat string

	// Export carries format-specific output settings.
	Export export.Options

	// XSDPath receives the XSD of the xml output. Empty skips it.
	XSDPath string

	// StorePath is the SQLite store to load into. Empty skips loading.
	StorePath string
}

// Converter handles the normalization of a single wide file.
type Converter struct {
	inputPath string
	opts      Options
	logger    *zap.Logger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the wide .csv or .xlsx file.
//   - opts: Inputs and side effects of the run.
//   - logger: The logger. nil disables logging.
func New(inputPath string, opts Options, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		inputPath: inputPath,
		opts:      opts,
		logger:    logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		RunID:    uuid.New().String(),
	}
	log := c.logger.With(zap.String("file", c.inputPath), zap.String("run_id", result.RunID))

	fail := func(stage string, err error) Result {
		result.Error = fmt.Errorf("%s failed: %w", stage, err)
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error("processing failed", zap.String("stage", stage), zap.Error(err))
		return result
	}

	log.Info("processing file")

	// =========================================================================
	// STEP 1: LOAD SPEC
	// =========================================================================

	// A saved spec records the delimiter of the file it was made from and
	// takes precedence over the configured one.
	settings := c.opts.Settings
	opts := analyzer.OptionsFromSettings(settings)
	var spec *types.TransformSpec
	if c.opts.SpecInput != "" {
		loaded, err := analyzer.LoadSpec(c.opts.SpecInput, opts)
		if err != nil {
			return fail("load spec", err)
		}
		spec = loaded
		if spec.Delimiter != settings.Delimiter {
			log.Debug("using spec delimiter",
				zap.String("spec_delimiter", spec.Delimiter),
				zap.String("config_delimiter", settings.Delimiter))
			settings.Delimiter = spec.Delimiter
		}
		log.Debug("loaded spec", zap.String("spec", c.opts.SpecInput))
	}

	// =========================================================================
	// STEP 2: READ SOURCE AND ANALYZE HEADER
	// =========================================================================

	rows, err := ReadSource(c.inputPath, settings)
	if err != nil {
		return fail("read", err)
	}
	result.Stats.RowsRead = len(rows)
	log.Debug("read source", zap.Int("rows", len(rows)))

	if spec == nil {
		spec, err = analyzer.Analyze(rows, opts)
		if err != nil {
			return fail("analyze", err)
		}
	}
	result.Spec = spec
	log.Debug("spec ready", zap.Int("value_columns", len(spec.ValueColumns)))

	// =========================================================================
	// STEP 3: SAVE SPEC
	// =========================================================================

	if c.opts.SpecOutput != "" {
		if err := analyzer.SaveSpec(c.opts.SpecOutput, spec); err != nil {
			return fail("save spec", err)
		}
		result.SpecFile = c.opts.SpecOutput
		log.Debug("saved spec", zap.String("spec", c.opts.SpecOutput))
	}

	// =========================================================================
	// STEP 4: TRANSFORM
	// =========================================================================

	transformer := NewTransformer(spec, numparse.New(c.opts.Settings.NoDataMarkers...))
	records, err := transformer.Transform(csvparser.DataRows(rows))
	if err != nil {
		return fail("transform", err)
	}
	result.Records = records
	result.Stats.RecordsCreated = len(records)
	log.Debug("transformed", zap.Int("records", len(records)))

	// =========================================================================
	// STEP 5: MONTHLY DELTAS
	// =========================================================================

	result.Monthly = CalculateMonthly(records)
	result.Stats.MonthlyValues = len(result.Monthly)

	result.Gaps = FindGaps(records)
	result.Stats.MonthGaps = len(result.Gaps)
	for _, gap := range result.Gaps {
		log.Warn("month gap, delta taken across missing months",
			zap.String("factory", gap.Factory),
			zap.Int("year", gap.Year),
			zap.Int("from_month", gap.FromMonth),
			zap.Int("to_month", gap.ToMonth))
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILE
	// =========================================================================

	if c.opts.OutputPath != "" {
		format := c.opts.OutputFormat
		if format == "" {
			format = config.FormatCSV
		}
		if err := export.WriteFile(c.opts.OutputPath, format, records, result.Monthly, c.opts.Export); err != nil {
			return fail("write output", err)
		}
		result.OutputFile = c.opts.OutputPath
		log.Info("wrote output", zap.String("output", c.opts.OutputPath), zap.String("format", format))
	}

	if c.opts.XSDPath != "" {
		if err := export.WriteXSD(c.opts.XSDPath, c.opts.Export.XMLGenerateOptions()); err != nil {
			return fail("write output", err)
		}
		result.SchemaFile = c.opts.XSDPath
		log.Info("wrote schema", zap.String("xsd", c.opts.XSDPath))
	}

	// =========================================================================
	// STEP 7: LOAD STORE
	// =========================================================================

	if c.opts.StorePath != "" {
		loaded, err := loadStore(ctx, c.opts.StorePath, records, result.Monthly)
		if err != nil {
			return fail("load", err)
		}
		result.StorePath = c.opts.StorePath
		result.Loaded = loaded
		log.Info("loaded store",
			zap.String("store", c.opts.StorePath),
			zap.Int("factory_data", loaded.FactoryRows),
			zap.Int("monthly_values", loaded.MonthlyRows))
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	log.Info("processing complete",
		zap.Int("records", result.Stats.RecordsCreated),
		zap.Duration("elapsed", result.Stats.ProcessingTime))

	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ReadSource reads a wide file into rows, choosing the reader by extension.
// .xlsx files use the configured sheet, everything else is read as CSV.
func ReadSource(path string, settings config.CSVSettings) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsxparser.ReadRows(path, settings.Sheet)
	}
	return csvparser.ReadFile(path, settings)
}

// loadStore opens the store, loads both record sets and closes it again.
func loadStore(ctx context.Context, path string, records []types.NormalizedRecord, monthly []types.MonthlyValue) (store.LoadResult, error) {
	s, err := store.Open(path)
	if err != nil {
		return store.LoadResult{}, types.NewError(types.KindDatabaseWrite, "failed to open store").Wrap(err)
	}

	loaded, loadErr := s.Load(ctx, records, monthly)
	closeErr := s.Close()
	if loadErr != nil {
		return store.LoadResult{}, loadErr
	}
	if closeErr != nil {
		return store.LoadResult{}, types.NewError(types.KindDatabaseWrite, "failed to close store").Wrap(closeErr)
	}
	return loaded, nil
}

// ErrorKind returns the kind of a pipeline error, or "Error" for failures
// that carry no kind (I/O errors, for example).
func ErrorKind(err error) string {
	var typed *types.Error
	if errors.As(err, &typed) {
		return string(typed.Kind)
	}
	return "Error"
}
