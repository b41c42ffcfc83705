// =============================================================================
// Wide-to-Long Normalizer - Output Writer Module
// =============================================================================
//
// This module writes normalized data to files next to (or instead of) the
// SQLite store.
//
// FORMATS:
//   csv   factory,year,month,ytd_value           one normalized record per line
//   json  [{"factory": ..., "ytd_value": ...}]   indented array of records
//   xlsx  sheets factory_data and monthly_values, mirroring the store tables
//   xml   records grouped by factory, with month_value when available
//
// Numbers are written in machine notation ("1250000.5"), not the European
// notation of the source files.
//
// =============================================================================

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/CSV-wide-to-long/internal/config"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/types"
	"github.com/ginjaninja78/CSV-wide-to-long/internal/xmlwriter"
)

// Sheet names of the workbook output.
const (
	SheetFactoryData   = "factory_data"
	SheetMonthlyValues = "monthly_values"
)

var (
	factoryHeader = []string{"factory", "year", "month", "ytd_value"}
	monthlyHeader = []string{"factory", "year", "month", "ytd_value", "month_value"}
)

// Options carry the format-specific settings of WriteFile.
type Options struct {
	// XML shapes xml documents. nil means xmlwriter.DefaultGenerateOptions().
	XML *xmlwriter.GenerateOptions
}

// XMLGenerateOptions returns the xml options in effect.
func (o Options) XMLGenerateOptions() xmlwriter.GenerateOptions {
	if o.XML == nil {
		return xmlwriter.DefaultGenerateOptions()
	}
	return *o.XML
}

// XMLOptions converts the xml config block into generator options.
func XMLOptions(s config.XMLSettings) xmlwriter.GenerateOptions {
	opts := xmlwriter.DefaultGenerateOptions()
	if s.Indent != "" {
		opts.Indent = s.Indent
	}
	if s.IndexAttribute != "" {
		opts.RecordIndexAttribute = s.IndexAttribute
	}
	opts.IncludeXMLDeclaration = !s.OmitDeclaration
	opts.RecordNumberingGlobal = !s.PerFactoryNumbering
	for name, value := range s.RootAttributes {
		opts.RootAttributes[name] = value
	}
	return opts
}

// Extension returns the file extension (with dot) for an output format.
func Extension(format string) string {
	switch format {
	case config.FormatJSON:
		return ".json"
	case config.FormatXLSX:
		return ".xlsx"
	case config.FormatXML:
		return ".xml"
	default:
		return ".csv"
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile writes the data in the given format to path, creating parent
// directories.
//
// PARAMETERS:
//   - path: The output file.
//   - format: csv, json or xlsx.
//   - records: The normalized records.
//   - monthly: The monthly values. Only the xlsx and xml formats include them.
//   - opts: Format-specific settings.
func WriteFile(path, format string, records []types.NormalizedRecord, monthly []types.MonthlyValue, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if format == config.FormatXLSX {
		return WriteWorkbook(path, records, monthly)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if format == config.FormatXML {
		err = WriteXML(f, records, monthly, opts.XMLGenerateOptions())
	} else {
		err = WriteRecords(f, format, records)
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRecords writes normalized records as CSV, JSON or XML.
func WriteRecords(w io.Writer, format string, records []types.NormalizedRecord) error {
	switch format {
	case config.FormatCSV, "":
		return writeCSV(w, records)
	case config.FormatJSON:
		return writeJSON(w, records)
	case config.FormatXML:
		return WriteXML(w, records, nil, xmlwriter.DefaultGenerateOptions())
	default:
		return fmt.Errorf("unsupported record format: %s", format)
	}
}

func writeCSV(w io.Writer, records []types.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(factoryHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Factory, strconv.Itoa(r.Year), strconv.Itoa(r.Month), formatFloat(r.YTDValue)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, records []types.NormalizedRecord) error {
	if records == nil {
		records = []types.NormalizedRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteXML writes records and monthly values as one XML document.
func WriteXML(w io.Writer, records []types.NormalizedRecord, monthly []types.MonthlyValue, opts xmlwriter.GenerateOptions) error {
	doc, err := xmlwriter.GenerateWithOptions(records, monthly, opts)
	if err != nil {
		return fmt.Errorf("failed to generate XML: %w", err)
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// WriteXSD writes the schema of the documents WriteXML produces with opts.
func WriteXSD(path string, opts xmlwriter.GenerateOptions) error {
	xsd, err := xmlwriter.GenerateXSD(opts)
	if err != nil {
		return fmt.Errorf("failed to generate XSD: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, xsd, 0644); err != nil {
		return fmt.Errorf("failed to write XSD: %w", err)
	}
	return nil
}

// =============================================================================
// WORKBOOK OUTPUT
// =============================================================================

// WriteWorkbook writes both record sets to an .xlsx file, one sheet each.
func WriteWorkbook(path string, records []types.NormalizedRecord, monthly []types.MonthlyValue) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetFactoryData); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMonthlyValues); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	factoryRows := make([][]interface{}, len(records))
	for i, r := range records {
		factoryRows[i] = []interface{}{r.Factory, r.Year, r.Month, r.YTDValue}
	}
	if err := writeSheet(f, SheetFactoryData, factoryHeader, factoryRows); err != nil {
		return err
	}

	monthlyRows := make([][]interface{}, len(monthly))
	for i, m := range monthly {
		monthlyRows[i] = []interface{}{m.Factory, m.Year, m.Month, m.YTDValue, m.MonthValue}
	}
	if err := writeSheet(f, SheetMonthlyValues, monthlyHeader, monthlyRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s: %w", sheet, err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", sheet, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
