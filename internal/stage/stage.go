// Package stage derives the operator configuration tables from cleaned
// records. Each derivation is idempotent: re-running it with unchanged input
// leaves the configuration as it was.
package stage

import (
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/filter"
	"github.com/sells-group/gajian-cli/internal/model"
)

// Locations appends an unset entry for every location in records that is not
// yet in existing. Existing entries are returned unchanged and first.
func Locations(records []model.RawRecord, existing []model.LocationConfig) []model.LocationConfig {
	out := make([]model.LocationConfig, 0, len(existing))
	seen := make(map[string]bool, len(existing))
	for _, loc := range existing {
		if seen[loc.Location] {
			continue
		}
		seen[loc.Location] = true
		out = append(out, loc)
	}

	added := 0
	for _, r := range records {
		if seen[r.Location] {
			continue
		}
		seen[r.Location] = true
		out = append(out, model.LocationConfig{Location: r.Location})
		added++
	}

	zap.L().Info("stage: locations derived", zap.Int("total", len(out)), zap.Int("added", added))
	return out
}

// Workers appends an unset entry for every excavator in the windowed records
// that is not yet in existing. The caller passes the output of
// filter.Window, so workers outside every window are never added.
func Workers(windowed []model.RawRecord, existing []model.WorkerTariffConfig) []model.WorkerTariffConfig {
	out := make([]model.WorkerTariffConfig, 0, len(existing))
	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		if seen[w.Worker] {
			continue
		}
		seen[w.Worker] = true
		out = append(out, w)
	}

	added := 0
	for _, r := range windowed {
		if seen[r.Excavator] {
			continue
		}
		seen[r.Excavator] = true
		out = append(out, model.WorkerTariffConfig{Worker: r.Excavator})
		added++
	}

	if len(windowed) == 0 {
		zap.L().Warn("stage: no windowed records, worker table unchanged")
	}
	zap.L().Info("stage: workers derived", zap.Int("total", len(out)), zap.Int("added", added))
	return out
}

// Transport re-runs the location window over records and attaches each
// survivor's transport mode.
func Transport(records []model.RawRecord, locations []model.LocationConfig) []model.EnrichedRecord {
	return filter.JoinTransport(filter.Window(records, locations), locations)
}

// Enrich runs Transport and joins the worker tariff configuration, giving
// the working set the tariff calculator consumes.
func Enrich(records []model.RawRecord, locations []model.LocationConfig, workers []model.WorkerTariffConfig) []model.EnrichedRecord {
	return filter.JoinWorkers(Transport(records, locations), workers)
}
