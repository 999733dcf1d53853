package stage

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/tableio"
)

// LocationTable encodes locations as the operator template.
func LocationTable(locations []model.LocationConfig) *tableio.Table {
	rows := make([][]string, len(locations))
	for i, loc := range locations {
		rows[i] = []string{
			loc.Location,
			loc.Start.String(),
			loc.End.String(),
			loc.PayDate.String(),
			string(loc.Transport),
		}
	}
	return tableio.New(model.LocationColumns, rows)
}

// ParseLocationTable decodes an edited location template. Dates are read
// day-first; unparseable dates become unset. Unknown transport tokens are
// logged and read as unset. Duplicate locations keep the first row.
func ParseLocationTable(t *tableio.Table) ([]model.LocationConfig, error) {
	if missing := t.Missing(model.ColLocation); len(missing) > 0 {
		return nil, eris.Wrapf(model.ErrValidation, "stage: location template missing columns %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool, t.Len())
	out := make([]model.LocationConfig, 0, t.Len())
	for i, row := range t.Rows {
		name := t.Value(row, model.ColLocation)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		loc := model.LocationConfig{
			Location: name,
			Start:    templateDate(t, row, model.ColStartDate, i+2),
			End:      templateDate(t, row, model.ColEndDate, i+2),
			PayDate:  templateDate(t, row, model.ColPayDate, i+2),
		}

		token := t.Value(row, model.ColTransportMode)
		mode, ok := model.ParseTransportMode(token)
		if !ok {
			zap.L().Warn("stage: unknown transport mode, no transport charge",
				zap.Int("line", i+2),
				zap.String("location", name),
				zap.String("value", token),
			)
		}
		loc.Transport = mode
		out = append(out, loc)
	}
	return out, nil
}

func templateDate(t *tableio.Table, row []string, col string, line int) model.Date {
	cell := t.Value(row, col)
	d, ok := model.ParseDate(cell)
	if !ok && cell != "" {
		zap.L().Warn("stage: unreadable date left unset",
			zap.Int("line", line),
			zap.String("column", col),
			zap.String("value", cell),
		)
	}
	return d
}

// WorkerTable encodes workers as the operator template.
func WorkerTable(workers []model.WorkerTariffConfig) *tableio.Table {
	rows := make([][]string, len(workers))
	for i, w := range workers {
		rows[i] = []string{w.Worker, w.Group, string(w.Excavation), string(w.Sampling)}
	}
	return tableio.New(model.WorkerColumns, rows)
}

// ParseWorkerTable decodes an edited worker template. Tier tokens are
// normalised once here; an unknown token is a validation error naming the
// line. Duplicate workers keep the first row.
func ParseWorkerTable(t *tableio.Table) ([]model.WorkerTariffConfig, error) {
	if missing := t.Missing(model.ColExcavator); len(missing) > 0 {
		return nil, eris.Wrapf(model.ErrValidation, "stage: worker template missing columns %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool, t.Len())
	out := make([]model.WorkerTariffConfig, 0, t.Len())
	for i, row := range t.Rows {
		worker := t.Value(row, model.ColExcavator)
		if worker == "" || seen[worker] {
			continue
		}
		seen[worker] = true

		exc, err := model.ParsePriceTier(t.Value(row, model.ColExcavationTier))
		if err != nil {
			return nil, eris.Wrapf(err, "stage: line %d column %q", i+2, model.ColExcavationTier)
		}
		smp, err := model.ParsePriceTier(t.Value(row, model.ColSamplingTier))
		if err != nil {
			return nil, eris.Wrapf(err, "stage: line %d column %q", i+2, model.ColSamplingTier)
		}

		out = append(out, model.WorkerTariffConfig{
			Worker:     worker,
			Group:      t.Value(row, model.ColWorkerGroup),
			Excavation: exc,
			Sampling:   smp,
		})
	}
	return out, nil
}

// RecordTable encodes cleaned records for CSV download.
func RecordTable(records []model.RawRecord) *tableio.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = rawCells(r)
	}
	return tableio.New(model.RawColumns, rows)
}

// EnrichedColumns is the header of the enriched record export.
var EnrichedColumns = append(append([]string{}, model.RawColumns...),
	model.ColEnrichedTransport,
	model.ColWorkerGroup,
	model.ColExcavationTier,
	model.ColSamplingTier,
)

// EnrichedTable encodes the working set for CSV download.
func EnrichedTable(records []model.EnrichedRecord) *tableio.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = EnrichedCells(r)
	}
	return tableio.New(EnrichedColumns, rows)
}

// EnrichedCells returns r in EnrichedColumns order.
func EnrichedCells(r model.EnrichedRecord) []string {
	return append(rawCells(r.RawRecord),
		string(r.TransportMode),
		r.WorkerGroup,
		string(r.ExcavationTier),
		string(r.SamplingTier),
	)
}

func rawCells(r model.RawRecord) []string {
	return []string{
		r.SiteCode,
		r.Grid,
		r.Location,
		r.SamplingDate.String(),
		r.Depth.String(),
		r.Packages.String(),
		r.Landowner,
		r.Excavator,
		r.Transporter.String(),
		r.Backfiller.String(),
	}
}
