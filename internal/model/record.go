package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// TransportMode is how sample transport is paid at a location.
type TransportMode string

const (
	TransportUnset   TransportMode = ""
	TransportPackage TransportMode = "Koli" // per package carried
	TransportWeight  TransportMode = "Kilo" // flat per transporter
)

// ParseTransportMode normalises an operator token. Unknown non-blank tokens
// return TransportUnset and ok=false.
func ParseTransportMode(s string) (mode TransportMode, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TransportUnset, true
	case "koli", "package":
		return TransportPackage, true
	case "kilo", "weight":
		return TransportWeight, true
	default:
		return TransportUnset, false
	}
}

// PriceTier selects the local or external rate table for a worker.
type PriceTier string

const (
	TierUnset    PriceTier = ""
	TierLocal    PriceTier = "Lokal"
	TierExternal PriceTier = "Luar"
)

// ParsePriceTier normalises an operator token.
func ParsePriceTier(s string) (PriceTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TierUnset, nil
	case "lokal", "local":
		return TierLocal, nil
	case "luar", "external":
		return TierExternal, nil
	default:
		return TierUnset, eris.Wrapf(ErrValidation, "model: unknown price tier %q", s)
	}
}

// RawRecord is one cleaned field observation for a single test pit.
type RawRecord struct {
	SiteCode     string          `json:"site_code"`
	Grid         string          `json:"grid"`
	Location     string          `json:"location"`
	SamplingDate Date            `json:"sampling_date"`
	Depth        decimal.Decimal `json:"depth"`
	Packages     decimal.Decimal `json:"packages"`
	Landowner    string          `json:"landowner"`
	Excavator    string          `json:"excavator"`
	Transporter  decimal.Decimal `json:"transporter"`
	Backfiller   decimal.Decimal `json:"backfiller"`
}

// LocationConfig is the operator's per-location window and transport setup.
type LocationConfig struct {
	Location  string        `json:"location"`
	Start     Date          `json:"start"`
	End       Date          `json:"end"`
	PayDate   Date          `json:"pay_date"`
	Transport TransportMode `json:"transport"`
}

// HasWindow reports whether at least one bound is set.
func (c LocationConfig) HasWindow() bool {
	return c.Start.IsSet() || c.End.IsSet()
}

// Contains reports whether d falls inside the window. Bounds are inclusive
// and an unset bound is open. An unset d never matches a bounded window.
func (c LocationConfig) Contains(d Date) bool {
	if !d.IsSet() || !c.HasWindow() {
		return false
	}
	if c.Start.IsSet() && d.Before(c.Start) {
		return false
	}
	if c.End.IsSet() && d.After(c.End) {
		return false
	}
	return true
}

// WorkerTariffConfig assigns an excavator to a group and price tiers.
type WorkerTariffConfig struct {
	Worker     string    `json:"worker"`
	Group      string    `json:"group"`
	Excavation PriceTier `json:"excavation_tier"`
	Sampling   PriceTier `json:"sampling_tier"`
}

// EnrichedRecord is a windowed record with its transport mode and the
// excavator's tariff configuration attached.
type EnrichedRecord struct {
	RawRecord
	TransportMode  TransportMode `json:"transport_mode"`
	WorkerGroup    string        `json:"worker_group"`
	ExcavationTier PriceTier     `json:"excavation_tier"`
	SamplingTier   PriceTier     `json:"sampling_tier"`
}

// Tariffs holds the six computed payments for one record. Excavation is
// null when the record could not be priced.
type Tariffs struct {
	Excavation   decimal.NullDecimal `json:"excavation"`
	Sampling     decimal.Decimal     `json:"sampling"`
	Backfill     decimal.Decimal     `json:"backfill"`
	Compensation decimal.Decimal     `json:"compensation"`
	Transport    decimal.Decimal     `json:"transport"`
	Relay        decimal.Decimal     `json:"relay"`
}

// Values returns the tariffs in TariffColumns order with null as zero.
func (t Tariffs) Values() []decimal.Decimal {
	exc := decimal.Zero
	if t.Excavation.Valid {
		exc = t.Excavation.Decimal
	}
	return []decimal.Decimal{exc, t.Sampling, t.Backfill, t.Compensation, t.Transport, t.Relay}
}

// Sum adds all six tariffs, counting a null excavation as zero.
func (t Tariffs) Sum() decimal.Decimal {
	return decimal.Sum(decimal.Zero, t.Values()...)
}

// TariffedRecord is an enriched record with its computed tariffs.
type TariffedRecord struct {
	EnrichedRecord
	Tariffs Tariffs `json:"tariffs"`
}

// PivotKey identifies one aggregated pivot row.
type PivotKey struct {
	Date      string `json:"date"`
	SiteCode  string `json:"site_code"`
	Grid      string `json:"grid"`
	Location  string `json:"location"`
	Worker    string `json:"worker"`
	Landowner string `json:"landowner"`
}

// PivotRow is one summary line. The terminal row carries the grand totals
// and has Terminal set.
type PivotRow struct {
	Key          PivotKey        `json:"key"`
	Excavation   decimal.Decimal `json:"excavation"`
	Sampling     decimal.Decimal `json:"sampling"`
	Backfill     decimal.Decimal `json:"backfill"`
	Compensation decimal.Decimal `json:"compensation"`
	Transport    decimal.Decimal `json:"transport"`
	Relay        decimal.Decimal `json:"relay"`
	Total        decimal.Decimal `json:"total"`
	Terminal     bool            `json:"terminal"`
}

// Values returns the six tariff sums in TariffColumns order.
func (r PivotRow) Values() []decimal.Decimal {
	return []decimal.Decimal{r.Excavation, r.Sampling, r.Backfill, r.Compensation, r.Transport, r.Relay}
}
