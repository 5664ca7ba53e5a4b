package grade

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/gradebook/core"
)

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{filename: "grades.xlsx", want: FormatXLSX},
		{filename: "GRADES.XLSX", want: FormatXLSX},
		{filename: "grades.csv", want: FormatCSV},
		{filename: "grades.xls", wantErr: true},
		{filename: "grades", wantErr: true},
		{filename: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := FormatFromFilename(tt.filename)
		if tt.wantErr {
			assert.True(t, core.IsValidationError(err), tt.filename)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()

	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %v", err)
	flds := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestReadSheet_csv(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		want      []ImportRow
		wantErrs  map[string]string
		wantNoErr bool
	}{
		{
			name:    "valid",
			content: "id,name,middlegrade,finalgrade,grade\n1,Alice,70,90,0\n2,Bob,80,90,\n",
			want: []ImportRow{
				{Line: 2, ID: 1, Name: "Alice", MiddleGrade: 70, FinalGrade: 90},
				{Line: 3, ID: 2, Name: "Bob", MiddleGrade: 80, FinalGrade: 90},
			},
		},
		{
			name:    "BOM, shuffled and mixed case columns, extra column, blank lines",
			content: utf8BOM + "Name , FINALGRADE,Id,MiddleGrade,comment\n\nAlice,90,1,70,great\n\n Bob ,90, 2 ,80\n",
			want: []ImportRow{
				{Line: 3, ID: 1, Name: "Alice", MiddleGrade: 70, FinalGrade: 90},
				{Line: 5, ID: 2, Name: "Bob", MiddleGrade: 80, FinalGrade: 90},
			},
		},
		{
			name:    "header only",
			content: "id,name,middlegrade,finalgrade\n",
			want:    []ImportRow{},
		},
		{
			name:     "empty",
			content:  "",
			wantErrs: map[string]string{"file": errEmptySheet.Error()},
		},
		{
			name:     "missing columns",
			content:  "id,name\n1,Alice\n",
			wantErrs: map[string]string{colMiddleGrade: "missing column", colFinalGrade: "missing column"},
		},
		{
			name:    "every invalid cell is reported",
			content: "id,name,middlegrade,finalgrade\n1,Alice,70,90\nx,Bob,80,90\n3,,60,6.5\n",
			wantErrs: map[string]string{
				"line 3: id":         `"x" is not an integer`,
				"line 4: name":       "this field is required",
				"line 4: finalgrade": `"6.5" is not an integer`,
			},
		},
		{
			name:     "missing trailing cells",
			content:  "id,name,middlegrade,finalgrade\n1,Alice,70\n",
			wantErrs: map[string]string{"line 2: finalgrade": `"" is not an integer`},
		},
		{
			name:     "name too long",
			content:  "id,name,middlegrade,finalgrade\n1," + strings.Repeat("a", NameMaxLength+1) + ",70,90\n",
			wantErrs: map[string]string{"line 2: name": "must be at most 128 characters long"},
		},
		{
			name:    "long names are counted in characters, ids may exceed 32 bits",
			content: "id,name,middlegrade,finalgrade\n3000000000," + strings.Repeat("é", NameMaxLength) + ",70,90\n",
			want: []ImportRow{
				{Line: 2, ID: 3000000000, Name: strings.Repeat("é", NameMaxLength), MiddleGrade: 70, FinalGrade: 90},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadSheet(strings.NewReader(tt.content), FormatCSV)
			if tt.wantErrs != nil {
				assert.Nil(t, rows)
				assert.Equal(t, tt.wantErrs, fieldErrors(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReadSheet_xlsx(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	cells := [][]interface{}{
		{"ID", "Name", "MiddleGrade", "FinalGrade"},
		{1, "Alice", 70, 90},
		{2, "Bob", "80", 90},
	}
	for r, row := range cells {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, f.SetCellValue("Sheet1", cell, val))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadSheet(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []ImportRow{
		{Line: 2, ID: 1, Name: "Alice", MiddleGrade: 70, FinalGrade: 90},
		{Line: 3, ID: 2, Name: "Bob", MiddleGrade: 80, FinalGrade: 90},
	}, rows)

	t.Run("not an xlsx file", func(t *testing.T) {
		_, err := ReadSheet(strings.NewReader("id,name"), FormatXLSX)
		assert.Contains(t, fieldErrors(t, err), "file")
	})
}

func TestWriteSheet(t *testing.T) {
	records := []GradeRecord{
		NewGradeRecord(1, "Alice", 70, 90),
		NewGradeRecord(2, "Bob, Jr.", 80, 90),
	}

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheet(&buf, FormatCSV, records))
		assert.Equal(t, utf8BOM+"id,name,middlegrade,finalgrade,grade\n1,Alice,70,90,84\n2,\"Bob, Jr.\",80,90,87\n", buf.String())
	})

	t.Run("csv header only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheet(&buf, FormatCSV, nil))
		assert.Equal(t, utf8BOM+"id,name,middlegrade,finalgrade,grade\n", buf.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheet(&buf, FormatXLSX, records))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		assert.Equal(t, []string{sheetName}, f.GetSheetList())
		rows, err := f.GetRows(sheetName)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			Columns,
			{"1", "Alice", "70", "90", "84"},
			{"2", "Bob, Jr.", "80", "90", "87"},
		}, rows)
	})

	t.Run("xlsx header only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSheet(&buf, FormatXLSX, nil))

		rows, err := ReadSheet(&buf, FormatXLSX)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Equal(t, ErrUnsupportedFormat, WriteSheet(new(bytes.Buffer), "xls", records))
	})
}

func TestSheetRoundTrip(t *testing.T) {
	records := []GradeRecord{
		NewGradeRecord(3, "Zoë", 59, 60),
		NewGradeRecord(10, "Émile", 100, 100),
	}
	for _, format := range []string{FormatXLSX, FormatCSV} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSheet(&buf, format, records))

			rows, err := ReadSheet(&buf, format)
			require.NoError(t, err)
			got := make([]GradeRecord, 0, len(rows))
			for _, row := range rows {
				got = append(got, row.Record())
			}
			assert.Equal(t, records, got)
		})
	}
}
