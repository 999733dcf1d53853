package tariff

import (
	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/stage"
	"github.com/sells-group/gajian-cli/internal/tableio"
)

// Columns is the header of the tariff export.
var Columns = append(append([]string{}, stage.EnrichedColumns...), model.TariffColumns...)

// Table encodes tariffed records for CSV download. A null excavation tariff
// is written as an empty cell.
func Table(records []model.TariffedRecord) *tableio.Table {
	rows := make([][]string, len(records))
	for i, r := range records {
		exc := ""
		if r.Tariffs.Excavation.Valid {
			exc = r.Tariffs.Excavation.Decimal.String()
		}
		rows[i] = append(stage.EnrichedCells(r.EnrichedRecord),
			exc,
			r.Tariffs.Sampling.String(),
			r.Tariffs.Backfill.String(),
			r.Tariffs.Compensation.String(),
			r.Tariffs.Transport.String(),
			r.Tariffs.Relay.String(),
		)
	}
	return tableio.New(Columns, rows)
}
