package masterdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one parsed data row. Number is the 1-based sheet row.
type Row struct {
	Number int
	Values Record
}

// ErrMissingColumns is returned when a sheet lacks required headers.
var ErrMissingColumns = errors.New("masterdata: missing required columns")

// Template builds a header-only workbook for t.
func Template(t Type) ([]byte, error) {
	return Export(t, nil)
}

// Export writes records as a single-sheet workbook with a frozen, styled header row.
func Export(t Type, records []Record) ([]byte, error) {
	cols, ok := columns[t]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, t)
	}

	f := excelize.NewFile()
	sheet := sheetNames[t]
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("masterdata: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("masterdata: drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("masterdata: header style: %w", err)
	}

	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("masterdata: header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("masterdata: header style %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			f.Close()
			return nil, fmt.Errorf("masterdata: column width: %w", err)
		}
	}

	for r, record := range records {
		for c, col := range cols {
			value := record[col.Field]
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			// Codes such as 0001 must stay text.
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("masterdata: cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("masterdata: freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("masterdata: write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("masterdata: close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse reads the first sheet of an uploaded workbook. Headers match either
// the column header or the field name, case-insensitively. Blank rows are skipped.
func Parse(t Type, r io.Reader) ([]Row, error) {
	cols, ok := columns[t]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, t)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("masterdata: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("masterdata: workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("masterdata: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrMissingColumns)
	}

	lookup := make(map[string]string, len(cols)*2)
	for _, col := range cols {
		lookup[strings.ToLower(col.Header)] = col.Field
		lookup[strings.ToLower(col.Field)] = col.Field
	}
	fieldAt := make(map[int]string, len(rows[0]))
	present := make(map[string]bool, len(cols))
	for i, header := range rows[0] {
		if field, ok := lookup[strings.ToLower(strings.TrimSpace(header))]; ok {
			fieldAt[i] = field
			present[field] = true
		}
	}
	var missing []string
	for _, col := range cols {
		if col.Required && !present[col.Field] {
			missing = append(missing, col.Header)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	out := make([]Row, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		values := Record{}
		for idx, cell := range rows[i] {
			field, ok := fieldAt[idx]
			if !ok {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				values[field] = cell
			}
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, Row{Number: i + 1, Values: values})
	}
	return out, nil
}
