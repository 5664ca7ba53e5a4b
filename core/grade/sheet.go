package grade

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core"
)

// Sheet formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
	utf8BOM         = "\xEF\xBB\xBF"

	sheetName = "Grades"

	colID          = "id"
	colName        = "name"
	colMiddleGrade = "middlegrade"
	colFinalGrade  = "finalgrade"
	colGrade       = "grade"
)

var (
	// Columns is the exported header, in order.
	Columns = []string{colID, colName, colMiddleGrade, colFinalGrade, colGrade}

	// grade is recomputed on import so its column is optional and ignored
	requiredColumns = []string{colID, colName, colMiddleGrade, colFinalGrade}

	ErrUnsupportedFormat = errors.New("unsupported file format: expected a .xlsx or .csv file")
	errEmptySheet        = errors.New("the file is empty: a header row is required")
)

// FormatFromFilename returns the sheet format matching the extension of filename.
func FormatFromFilename(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case "." + FormatXLSX:
		return FormatXLSX, nil
	case "." + FormatCSV:
		return FormatCSV, nil
	default:
		return "", core.NewValidationError(ErrUnsupportedFormat, core.FieldError{Field: "file", Error: ErrUnsupportedFormat.Error()})
	}
}

// ContentType returns the MIME type of a sheet format.
func ContentType(format string) string {
	if format == FormatCSV {
		return csvContentType
	}
	return xlsxContentType
}

// ReadSheet decodes a grades sheet.
// The first non-blank row is the header; column names are matched case-insensitively and unknown columns are ignored.
// Every invalid cell is reported in the returned *core.ValidationError; no rows are returned in that case.
func ReadSheet(r io.Reader, format string) ([]ImportRow, error) {
	var (
		cells [][]string
		err   error
	)
	switch format {
	case FormatXLSX:
		cells, err = readXLSX(r)
	case FormatCSV:
		cells, err = readCSV(r)
	default:
		return nil, core.NewValidationError(ErrUnsupportedFormat, core.FieldError{Field: "file", Error: ErrUnsupportedFormat.Error()})
	}
	if err != nil {
		msg := fmt.Sprintf("unreadable %s file: %v", format, err)
		return nil, core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
	}
	return parseCells(cells)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	return f.GetRows(sheet)
}

func readCSV(r io.Reader) ([][]string, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = -1 // rows may have trailing cells missing
	rdr.TrimLeadingSpace = true

	// the reader skips empty lines: pad them back so that cells[i] is line i+1
	var cells [][]string
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			return cells, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := rdr.FieldPos(0)
		for len(cells) < line-1 {
			cells = append(cells, nil)
		}
		cells = append(cells, rec)
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCells(cells [][]string) ([]ImportRow, error) {
	// header
	start := 0
	for start < len(cells) && isBlankRow(cells[start]) {
		start++
	}
	if start == len(cells) {
		return nil, core.NewValidationError(errEmptySheet, core.FieldError{Field: "file", Error: errEmptySheet.Error()})
	}

	colIdx := make(map[string]int, len(Columns))
	for i, name := range cells[start] {
		name = core.CleanString(strings.TrimPrefix(name, utf8BOM), true /* lower */)
		if _, ok := colIdx[name]; !ok {
			colIdx[name] = i
		}
	}
	var fldErrs []core.FieldError
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: col, Error: "missing column"})
		}
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	// data
	rows := make([]ImportRow, 0, len(cells)-start-1)
	for i := start + 1; i < len(cells); i++ {
		if isBlankRow(cells[i]) {
			continue
		}
		row := ImportRow{Line: i + 1}
		cell := func(col string) string {
			if idx := colIdx[col]; idx < len(cells[i]) {
				return strings.TrimSpace(cells[i][idx])
			}
			return ""
		}
		cellInt := func(col string) int {
			val, err := strconv.Atoi(cell(col))
			if err != nil {
				fldErrs = append(fldErrs, row.fieldError(col, fmt.Sprintf("%q is not an integer", cell(col))))
			}
			return val
		}

		row.ID = cellInt(colID)
		row.Name = cell(colName)
		row.MiddleGrade = cellInt(colMiddleGrade)
		row.FinalGrade = cellInt(colFinalGrade)
		switch n := utf8.RuneCountInString(row.Name); {
		case n == 0:
			fldErrs = append(fldErrs, row.fieldError(colName, "this field is required"))
		case n > NameMaxLength:
			fldErrs = append(fldErrs, row.fieldError(colName, fmt.Sprintf("must be at most %d characters long", NameMaxLength)))
		}
		rows = append(rows, row)
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}
	return rows, nil
}

// WriteSheet encodes records as a grades sheet: a header row followed by one row per record, in the given order.
func WriteSheet(w io.Writer, format string, records []GradeRecord) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, records)
	case FormatCSV:
		return writeCSV(w, records)
	default:
		return ErrUnsupportedFormat
	}
}

func writeXLSX(w io.Writer, records []GradeRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1") // default sheet

	for i, header := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}
	for i, rec := range records {
		row := i + 2
		values := []interface{}{rec.ID, rec.Name, rec.MiddleGrade, rec.FinalGrade, rec.Grade}
		for j, val := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return errors.Wrapf(err, "writing row %d", row)
			}
		}
	}
	return errors.Wrap(f.Write(w), "writing xlsx")
}

func writeCSV(w io.Writer, records []GradeRecord) error {
	// BOM so that spreadsheet apps detect UTF-8 names
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return errors.Wrap(err, "writing BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, rec := range records {
		err := cw.Write([]string{
			strconv.Itoa(rec.ID),
			rec.Name,
			strconv.Itoa(rec.MiddleGrade),
			strconv.Itoa(rec.FinalGrade),
			strconv.Itoa(rec.Grade),
		})
		if err != nil {
			return errors.Wrapf(err, "writing record %d", rec.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "writing csv")
}
