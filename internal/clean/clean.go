// Package clean validates uploaded field tables and projects them to the
// canonical record columns.
package clean

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/tableio"
)

// Records projects t to the ten canonical columns and drops rows with a
// blank depth. It fails with model.ErrValidation when a column is missing
// or a numeric cell cannot be parsed, and with model.ErrEmptyResult when no
// rows survive.
func Records(t *tableio.Table) ([]model.RawRecord, error) {
	if missing := t.Missing(model.RawColumns...); len(missing) > 0 {
		return nil, eris.Wrapf(model.ErrValidation, "clean: missing required columns %s", strings.Join(missing, ", "))
	}

	records := make([]model.RawRecord, 0, t.Len())
	var dropped, undated int
	for i, row := range t.Rows {
		line := i + 2 // header is line 1

		depthCell := t.Value(row, model.ColDepth)
		if depthCell == "" {
			dropped++
			continue
		}

		rec := model.RawRecord{
			SiteCode:  t.Value(row, model.ColSiteCode),
			Grid:      t.Value(row, model.ColGrid),
			Location:  t.Value(row, model.ColProspect),
			Landowner: t.Value(row, model.ColLandowner),
			Excavator: t.Value(row, model.ColExcavator),
		}

		var err error
		if rec.Depth, err = parseNumber(depthCell, model.ColDepth, line); err != nil {
			return nil, err
		}
		if rec.Packages, err = parseNumber(t.Value(row, model.ColPackages), model.ColPackages, line); err != nil {
			return nil, err
		}
		if rec.Transporter, err = parseNumber(t.Value(row, model.ColTransporter), model.ColTransporter, line); err != nil {
			return nil, err
		}
		if rec.Backfiller, err = parseNumber(t.Value(row, model.ColBackfiller), model.ColBackfiller, line); err != nil {
			return nil, err
		}

		var ok bool
		if rec.SamplingDate, ok = model.ParseDate(t.Value(row, model.ColSamplingDate)); !ok {
			undated++
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, eris.Wrap(model.ErrEmptyResult, "clean: no rows with a depth value")
	}

	zap.L().Info("clean: records projected",
		zap.Int("rows", t.Len()),
		zap.Int("kept", len(records)),
		zap.Int("dropped_no_depth", dropped),
		zap.Int("undated", undated),
	)
	return records, nil
}

// parseNumber reads a numeric cell. Blank reads as zero; anything else that
// is not a number is a data-entry error.
func parseNumber(cell, col string, line int) (decimal.Decimal, error) {
	if cell == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(cell, ",", "."))
	if err != nil {
		return decimal.Zero, eris.Wrapf(model.ErrValidation, "clean: line %d: column %q is not numeric: %q", line, col, cell)
	}
	return d, nil
}
