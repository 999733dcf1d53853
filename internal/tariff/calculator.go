// Package tariff computes the six per-record payment tariffs of a survey
// working set.
package tariff

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
)

// Rules holds the arithmetic constants of the non-table tariffs.
type Rules struct {
	BackfillPerMeter decimal.Decimal
	CompensationFlat decimal.Decimal
	RelayPerUnit     decimal.Decimal
	TransportPerUnit decimal.Decimal
}

// DefaultRules returns the standard field rates.
func DefaultRules() Rules {
	return Rules{
		BackfillPerMeter: decimal.NewFromInt(12000),
		CompensationFlat: decimal.NewFromInt(90000),
		RelayPerUnit:     decimal.NewFromInt(1000),
		TransportPerUnit: decimal.NewFromInt(1000),
	}
}

type step uint8

const (
	stepExcavation step = 1 << iota
	stepSampling
	stepArithmetic
	stepTransport

	allSteps = stepExcavation | stepSampling | stepArithmetic | stepTransport
)

// Calculator accumulates tariff columns over one working table. Each step
// fills independent columns, so order does not matter, but every step must
// run before Result.
type Calculator struct {
	rates   RateTables
	rules   Rules
	records []model.TariffedRecord
	done    step
}

// New returns a Calculator with the given tables and rules.
func New(rates RateTables, rules Rules) *Calculator {
	return &Calculator{rates: rates, rules: rules}
}

// SetData loads a copy of records and resets the completed steps.
func (c *Calculator) SetData(records []model.EnrichedRecord) *Calculator {
	c.records = make([]model.TariffedRecord, len(records))
	for i, r := range records {
		c.records[i] = model.TariffedRecord{EnrichedRecord: r}
	}
	c.done = 0
	return c
}

// Excavation prices each record by exact depth in the tier's table. An
// unset tier or a missing depth leaves the tariff null so the operator can
// see it was never priced.
func (c *Calculator) Excavation() *Calculator {
	var unpriced int
	for i := range c.records {
		r := &c.records[i]
		r.Tariffs.Excavation = decimal.NullDecimal{}
		if r.ExcavationTier == model.TierUnset {
			unpriced++
			continue
		}
		if price, ok := c.rates.Excavation(r.ExcavationTier).Lookup(r.Depth); ok {
			r.Tariffs.Excavation = decimal.NewNullDecimal(price)
		} else {
			unpriced++
		}
	}
	if unpriced > 0 {
		zap.L().Warn("tariff: records without excavation price", zap.Int("count", unpriced))
	}
	c.done |= stepExcavation
	return c
}

// Sampling prices each record by exact package count in the tier's table.
// An unset tier or a missing key is a zero charge.
func (c *Calculator) Sampling() *Calculator {
	for i := range c.records {
		r := &c.records[i]
		r.Tariffs.Sampling = decimal.Zero
		if r.SamplingTier == model.TierUnset {
			continue
		}
		if price, ok := c.rates.Sampling(r.SamplingTier).Lookup(r.Packages); ok {
			r.Tariffs.Sampling = price
		}
	}
	c.done |= stepSampling
	return c
}

// BackfillCompensationRelay fills the three arithmetic tariffs: backfill by
// depth, flat compensation, and relay by backfiller count and packages.
func (c *Calculator) BackfillCompensationRelay() *Calculator {
	for i := range c.records {
		r := &c.records[i]
		r.Tariffs.Backfill = r.Depth.Mul(c.rules.BackfillPerMeter)
		r.Tariffs.Compensation = c.rules.CompensationFlat
		r.Tariffs.Relay = r.Backfiller.Mul(c.rules.RelayPerUnit).Mul(r.Packages)
	}
	c.done |= stepArithmetic
	return c
}

// Transport charges package-based locations per package and transporter,
// weight-based locations per transporter, and nothing otherwise.
func (c *Calculator) Transport() *Calculator {
	for i := range c.records {
		r := &c.records[i]
		switch r.TransportMode {
		case model.TransportPackage:
			r.Tariffs.Transport = r.Packages.Mul(r.Transporter).Mul(c.rules.TransportPerUnit)
		case model.TransportWeight:
			r.Tariffs.Transport = r.Transporter.Mul(c.rules.TransportPerUnit)
		default:
			r.Tariffs.Transport = decimal.Zero
		}
	}
	c.done |= stepTransport
	return c
}

// Result deduplicates by site code, keeping the first occurrence, and
// returns the finished table.
func (c *Calculator) Result() ([]model.TariffedRecord, error) {
	if c.done != allSteps {
		return nil, eris.Errorf("tariff: result requested before all steps ran (missing %s)", c.missing())
	}

	seen := make(map[string]bool, len(c.records))
	out := make([]model.TariffedRecord, 0, len(c.records))
	for _, r := range c.records {
		if seen[r.SiteCode] {
			continue
		}
		seen[r.SiteCode] = true
		out = append(out, r)
	}
	if dup := len(c.records) - len(out); dup > 0 {
		zap.L().Info("tariff: dropped duplicate site codes", zap.Int("count", dup))
	}
	return out, nil
}

// Run executes every step over records.
func (c *Calculator) Run(records []model.EnrichedRecord) ([]model.TariffedRecord, error) {
	return c.SetData(records).
		Excavation().
		Sampling().
		BackfillCompensationRelay().
		Transport().
		Result()
}

func (c *Calculator) missing() string {
	var names []string
	for _, s := range []struct {
		step step
		name string
	}{
		{stepExcavation, "excavation"},
		{stepSampling, "sampling"},
		{stepArithmetic, "backfill/compensation/relay"},
		{stepTransport, "transport"},
	} {
		if c.done&s.step == 0 {
			names = append(names, s.name)
		}
	}
	return strings.Join(names, ", ")
}
