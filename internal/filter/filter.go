// Package filter applies the per-location date windows to cleaned records
// and joins location and worker configuration onto the survivors.
package filter

import (
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
)

// Window keeps the records whose location has at least one date bound set
// and whose sampling date falls inside that window. Locations with neither
// bound contribute no rows. The result is grouped in location order; an
// empty result is valid.
func Window(records []model.RawRecord, locations []model.LocationConfig) []model.RawRecord {
	byLocation := make(map[string][]model.RawRecord)
	for _, r := range records {
		byLocation[r.Location] = append(byLocation[r.Location], r)
	}

	log := zap.L().With(zap.String("step", "filter"))
	var out []model.RawRecord
	for _, loc := range locations {
		if !loc.HasWindow() {
			continue
		}
		matched := 0
		for _, r := range byLocation[loc.Location] {
			if loc.Contains(r.SamplingDate) {
				out = append(out, r)
				matched++
			}
		}
		log.Info("filter: matched rows for location",
			zap.String("location", loc.Location),
			zap.String("start", loc.Start.String()),
			zap.String("end", loc.End.String()),
			zap.Int("matched", matched),
		)
	}

	if len(out) == 0 {
		log.Warn("filter: no records matched any location window")
	} else {
		log.Info("filter: records in window", zap.Int("rows", len(out)))
	}
	return out
}

// JoinTransport attaches each record's transport mode from its location.
// Records whose location is not configured get TransportUnset.
func JoinTransport(records []model.RawRecord, locations []model.LocationConfig) []model.EnrichedRecord {
	modes := make(map[string]model.TransportMode, len(locations))
	for _, loc := range locations {
		if _, seen := modes[loc.Location]; !seen {
			modes[loc.Location] = loc.Transport
		}
	}

	out := make([]model.EnrichedRecord, len(records))
	for i, r := range records {
		out[i] = model.EnrichedRecord{
			RawRecord:     r,
			TransportMode: modes[r.Location],
		}
	}
	return out
}

// JoinWorkers left-joins the excavator's tariff configuration. Records for
// unconfigured excavators keep unset tiers.
func JoinWorkers(records []model.EnrichedRecord, workers []model.WorkerTariffConfig) []model.EnrichedRecord {
	byWorker := make(map[string]model.WorkerTariffConfig, len(workers))
	for _, w := range workers {
		if _, seen := byWorker[w.Worker]; !seen {
			byWorker[w.Worker] = w
		}
	}

	out := make([]model.EnrichedRecord, len(records))
	for i, r := range records {
		if w, ok := byWorker[r.Excavator]; ok {
			r.WorkerGroup = w.Group
			r.ExcavationTier = w.Excavation
			r.SamplingTier = w.Sampling
		}
		out[i] = r
	}
	return out
}
