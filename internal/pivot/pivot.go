// Package pivot aggregates tariffed records into the per-site payroll
// summary with a terminal grand-total row.
package pivot

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/tableio"
)

// TotalLabel fills every key column of the terminal row.
const TotalLabel = "Total"

// Columns is the header of the pivot export.
var Columns = append([]string{
	model.ColSamplingDate,
	model.ColSiteCode,
	model.ColGrid,
	model.ColProspect,
	model.ColExcavator,
	model.ColLandowner,
}, append(append([]string{}, model.TariffColumns...), model.ColTotal)...)

// Summarize groups records by date, site code, grid, location, worker and
// landowner, sums the six tariffs per group and appends the terminal total
// row. Rows are sorted ascending by key; the terminal row is always last.
func Summarize(records []model.TariffedRecord) []model.PivotRow {
	groups := make(map[model.PivotKey]*model.PivotRow)
	for _, r := range records {
		key := keyOf(r)
		row, ok := groups[key]
		if !ok {
			row = &model.PivotRow{Key: key}
			groups[key] = row
		}
		add(row, r.Tariffs.Values())
	}

	rows := make([]model.PivotRow, 0, len(groups)+1)
	for _, row := range groups {
		row.Total = decimal.Sum(decimal.Zero, row.Values()...)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return less(rows[i].Key, rows[j].Key) })

	rows = append(rows, terminal(rows))
	zap.L().Debug("pivot: summarized", zap.Int("records", len(records)), zap.Int("rows", len(rows)-1))
	return rows
}

// Data returns rows without the terminal row.
func Data(rows []model.PivotRow) []model.PivotRow {
	out := make([]model.PivotRow, 0, len(rows))
	for _, r := range rows {
		if !r.Terminal {
			out = append(out, r)
		}
	}
	return out
}

// Table encodes pivot rows for CSV download.
func Table(rows []model.PivotRow) *tableio.Table {
	out := make([][]string, len(rows))
	for i, r := range rows {
		k := r.Key
		cells := []string{k.Date, k.SiteCode, k.Grid, k.Location, k.Worker, k.Landowner}
		for _, v := range r.Values() {
			cells = append(cells, v.String())
		}
		out[i] = append(cells, r.Total.String())
	}
	return tableio.New(Columns, out)
}

func keyOf(r model.TariffedRecord) model.PivotKey {
	return model.PivotKey{
		Date:      r.SamplingDate.String(),
		SiteCode:  r.SiteCode,
		Grid:      r.Grid,
		Location:  r.Location,
		Worker:    r.Excavator,
		Landowner: r.Landowner,
	}
}

func add(row *model.PivotRow, v []decimal.Decimal) {
	row.Excavation = row.Excavation.Add(v[0])
	row.Sampling = row.Sampling.Add(v[1])
	row.Backfill = row.Backfill.Add(v[2])
	row.Compensation = row.Compensation.Add(v[3])
	row.Transport = row.Transport.Add(v[4])
	row.Relay = row.Relay.Add(v[5])
}

// terminal sums only non-terminal rows so a summary never counts itself.
func terminal(rows []model.PivotRow) model.PivotRow {
	t := model.PivotRow{
		Key: model.PivotKey{
			Date:      TotalLabel,
			SiteCode:  TotalLabel,
			Grid:      TotalLabel,
			Location:  TotalLabel,
			Worker:    TotalLabel,
			Landowner: TotalLabel,
		},
		Terminal: true,
	}
	for _, r := range Data(rows) {
		add(&t, r.Values())
	}
	t.Total = decimal.Sum(decimal.Zero, t.Values()...)
	return t
}

func less(a, b model.PivotKey) bool {
	for _, p := range [][2]string{
		{a.Date, b.Date},
		{a.SiteCode, b.SiteCode},
		{a.Grid, b.Grid},
		{a.Location, b.Location},
		{a.Worker, b.Worker},
		{a.Landowner, b.Landowner},
	} {
		if p[0] != p[1] {
			return p[0] < p[1]
		}
	}
	return false
}
