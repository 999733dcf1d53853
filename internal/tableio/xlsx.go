package tableio

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/gajian-cli/internal/model"
)

// ReadXLSXFile reads the first sheet of an XLSX workbook as a Table.
func ReadXLSXFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: read %s", path)
	}
	return ReadXLSX(data)
}

// ReadXLSX parses an in-memory XLSX workbook. The first row of the first
// sheet is the header. Date-formatted cells are written as 2006-01-02.
func ReadXLSX(data []byte) (*Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}

	header := rowToStrings(sheet.Rows[0], f.Date1904)
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row, f.Date1904)
		if blankRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return New(header, rows), nil
}

func rowToStrings(row *xlsx.Row, date1904 bool) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell.IsTime() {
			if t, err := cell.GetTime(date1904); err == nil {
				cells[j] = model.DateOf(t).String()
				continue
			}
		}
		cells[j] = cell.String()
	}
	return cells
}
