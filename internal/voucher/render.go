// Package voucher renders the payment voucher workbook: one sheet per
// tariff category, one signed block per worker or location.
package voucher

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/tableio"
)

const (
	headingTitle  = "BUKTI PEMBAYARAN"
	receiverTitle = "Area"
	leaderTitle   = "Ketua Kelompok"
	rupiahFormat  = `"Rp."#,##0`
)

type styles struct {
	heading, title, left, header, body, price, label, center int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	numFmt := rupiahFormat

	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 14}, Alignment: center},
		{Font: &excelize.Font{Bold: true, Size: 12}, Alignment: center},
		{Alignment: &excelize.Alignment{Horizontal: "left"}},
		{
			Font:      &excelize.Font{Bold: true},
			Alignment: center,
			Border:    border,
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
		},
		{Alignment: center, Border: border},
		{Alignment: center, Border: border, CustomNumFmt: &numFmt},
		{Font: &excelize.Font{Bold: true}, Alignment: center, Border: border},
		{Alignment: center},
	}
	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return styles{}, eris.Wrap(err, "voucher: create style")
		}
		ids[i] = id
	}
	return styles{
		heading: ids[0], title: ids[1], left: ids[2], header: ids[3],
		body: ids[4], price: ids[5], label: ids[6], center: ids[7],
	}, nil
}

// Render builds the voucher workbook for records. Records are ordered by
// worker group and worker before grouping; groups keep first-appearance
// order. The caller must close the returned file.
func Render(records []model.TariffedRecord, doc Document) (*excelize.File, error) {
	if len(records) == 0 {
		return nil, eris.Wrap(model.ErrEmptyResult, "voucher: no records to render")
	}

	ordered := make([]model.TariffedRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.WorkerGroup != b.WorkerGroup {
			return a.WorkerGroup < b.WorkerGroup
		}
		return a.Excavator < b.Excavator
	})

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	for _, c := range Categories {
		l := layouts[c]
		if _, err := f.NewSheet(l.Sheet); err != nil {
			f.Close()
			return nil, eris.Wrapf(err, "voucher: create sheet %s", l.Sheet)
		}
		s := &sheet{f: f, name: l.Sheet, st: st, layout: l, doc: doc, row: 1}
		for _, g := range group(ordered, l) {
			if err := s.block(g); err != nil {
				f.Close()
				return nil, err
			}
		}
		zap.L().Debug("voucher: sheet rendered", zap.String("sheet", l.Sheet), zap.Int("rows", s.row-1))
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "voucher: remove default sheet")
	}
	if idx, err := f.GetSheetIndex(layouts[Categories[0]].Sheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, records []model.TariffedRecord, doc Document) error {
	f, err := Render(records, doc)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "voucher: write workbook")
	}
	return nil
}

// WriteFile renders the workbook into dir under doc.FileName and returns
// the path. The target only appears once the workbook is complete.
func WriteFile(dir string, records []model.TariffedRecord, doc Document) (string, error) {
	path := filepath.Join(dir, doc.FileName())
	err := tableio.WriteFileAtomic(path, func(w io.Writer) error {
		return Write(w, records, doc)
	})
	if err != nil {
		return "", err
	}
	zap.L().Info("voucher: workbook written", zap.String("path", path), zap.Int("records", len(records)))
	return path, nil
}

type recordGroup struct {
	name    string
	records []model.TariffedRecord
}

func group(records []model.TariffedRecord, l Layout) []recordGroup {
	var groups []recordGroup
	index := make(map[string]int)
	for _, r := range records {
		key := l.groupKey(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, recordGroup{name: key})
		}
		groups[i].records = append(groups[i].records, r)
	}

	if l.SortByOwner {
		fold := cases.Fold()
		for _, g := range groups {
			sort.SliceStable(g.records, func(i, j int) bool {
				return fold.String(strings.TrimSpace(g.records[i].Landowner)) <
					fold.String(strings.TrimSpace(g.records[j].Landowner))
			})
		}
	}
	return groups
}

type sheet struct {
	f      *excelize.File
	name   string
	st     styles
	layout Layout
	doc    Document
	row    int
}

func (s *sheet) set(col, row int, v any, style int) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return eris.Wrap(err, "voucher: cell name")
	}
	if err := s.f.SetCellValue(s.name, ref, v); err != nil {
		return eris.Wrapf(err, "voucher: set %s!%s", s.name, ref)
	}
	if style > 0 {
		if err := s.f.SetCellStyle(s.name, ref, ref, style); err != nil {
			return eris.Wrapf(err, "voucher: style %s!%s", s.name, ref)
		}
	}
	return nil
}

func (s *sheet) merged(row int, v any, style int) error {
	from, _ := excelize.CoordinatesToCellName(2, row)
	to, _ := excelize.CoordinatesToCellName(s.layout.lastCol(), row)
	if err := s.f.MergeCell(s.name, from, to); err != nil {
		return eris.Wrapf(err, "voucher: merge %s:%s", from, to)
	}
	return s.set(2, row, v, style)
}

func (s *sheet) block(g recordGroup) error {
	l := s.layout

	if err := s.merged(s.row, headingTitle, s.st.heading); err != nil {
		return err
	}
	if err := s.merged(s.row+1, l.Title, s.st.title); err != nil {
		return err
	}
	if err := s.merged(s.row+2, "Sudah Terima Dari : "+s.doc.PayerOrg, s.st.left); err != nil {
		return err
	}
	s.row += 4
	if err := s.merged(s.row, l.Description, s.st.left); err != nil {
		return err
	}
	s.row++

	for i, h := range l.Headers {
		col := i + 2
		if err := s.set(col, s.row, h, s.st.header); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(col)
		if err := s.f.SetColWidth(s.name, name, name, float64(len(h)+5)); err != nil {
			return eris.Wrap(err, "voucher: column width")
		}
	}
	s.row++

	total := decimal.Zero
	firstRow := s.row
	for i, r := range g.records {
		if err := s.dataRow(i+1, r); err != nil {
			return err
		}
		total = total.Add(l.price(r))
		s.row++
	}

	if l.Subtotal {
		if err := s.subtotals(g.records, firstRow); err != nil {
			return err
		}
	}

	if err := s.set(l.PriceCol-1, s.row, "TOTAL", s.st.label); err != nil {
		return err
	}
	if err := s.set(l.PriceCol, s.row, total.InexactFloat64(), s.st.price); err != nil {
		return err
	}
	s.row += 2

	return s.signature(g.name)
}

func (s *sheet) dataRow(n int, r model.TariffedRecord) error {
	l := s.layout
	cells := append([]cell{number(decimal.NewFromInt(int64(n)))}, l.columns(r)...)

	for i := range l.Headers {
		col := i + 2
		var v any = ""
		style := s.st.body
		switch {
		case col == l.PriceCol:
			v, style = l.price(r).InexactFloat64(), s.st.price
		case i < len(cells) && cells[i].isNum:
			v = cells[i].number.InexactFloat64()
		case i < len(cells):
			v = cells[i].text
		}
		if err := s.set(col, s.row, v, style); err != nil {
			return err
		}
	}
	return nil
}

// subtotals writes each landowner's sum on that owner's first row in the
// column after the price.
func (s *sheet) subtotals(records []model.TariffedRecord, firstRow int) error {
	type owner struct {
		row int
		sum decimal.Decimal
	}
	var order []string
	owners := make(map[string]*owner)
	for i, r := range records {
		name := strings.TrimSpace(r.Landowner)
		o, ok := owners[name]
		if !ok {
			o = &owner{row: firstRow + i}
			owners[name] = o
			order = append(order, name)
		}
		o.sum = o.sum.Add(s.layout.price(r))
	}
	for _, name := range order {
		o := owners[name]
		if err := s.set(s.layout.PriceCol+1, o.row, o.sum.InexactFloat64(), s.st.price); err != nil {
			return err
		}
	}
	return nil
}

func (s *sheet) signature(groupName string) error {
	// Columns of date, payer, officer and recipient.
	dateCol, cols, third := 5, [3]int{2, 4, 6}, leaderTitle
	labels := [3]string{"Dibayar Oleh,", "Pet. Lapangan,", "Yang Menerima,"}
	if s.layout.signature == locationSignature {
		dateCol, cols, third = 7, [3]int{2, 5, 8}, receiverTitle
		labels[2] = "Lokasi,"
	}

	if err := s.set(dateCol, s.row, s.doc.DateText(), s.st.left); err != nil {
		return err
	}
	s.row++

	lines := []struct {
		offset int
		values [3]string
	}{
		{0, labels},
		{5, [3]string{s.doc.Payer.Name, s.doc.Officer.Name, groupName}},
		{1, [3]string{s.doc.Payer.Title, s.doc.Officer.Title, third}},
	}
	for _, line := range lines {
		s.row += line.offset
		for i, v := range line.values {
			if err := s.set(cols[i], s.row, v, s.st.center); err != nil {
				return err
			}
		}
	}
	s.row += 4
	return nil
}
