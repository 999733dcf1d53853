// Package session holds one operator's working state: the cleaned field
// records and the two configuration tables built from them.
package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/filter"
	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/stage"
)

// Session is the persisted workspace. Derived tables are never stored;
// they are recomputed from these three tables on demand.
type Session struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Records   []model.RawRecord          `json:"records"`
	Locations []model.LocationConfig     `json:"locations"`
	Workers   []model.WorkerTariffConfig `json:"workers"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Summary is the listing view of a session.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the listing view of s.
func (s *Session) Summary() Summary {
	return Summary{
		ID:        s.ID,
		Name:      s.Name,
		Records:   len(s.Records),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Ingest replaces the records and grows both configuration tables with any
// new locations and windowed excavators. Existing configuration is kept.
func (s *Session) Ingest(records []model.RawRecord) {
	s.Records = records
	s.Locations = stage.Locations(records, s.Locations)
	s.refreshWorkers()
	zap.L().Info("session: records ingested",
		zap.String("session", s.ID),
		zap.Int("records", len(records)),
		zap.Int("locations", len(s.Locations)),
		zap.Int("workers", len(s.Workers)),
	)
}

// ReplaceLocations installs an operator-edited location table and adds
// excavators that the new windows bring in.
func (s *Session) ReplaceLocations(locations []model.LocationConfig) {
	s.Locations = locations
	s.refreshWorkers()
}

// ReplaceWorkers installs an operator-edited worker table.
func (s *Session) ReplaceWorkers(workers []model.WorkerTariffConfig) {
	s.Workers = workers
}

// Enriched returns the windowed records with transport mode and worker
// configuration attached.
func (s *Session) Enriched() []model.EnrichedRecord {
	return stage.Enrich(s.Records, s.Locations, s.Workers)
}

func (s *Session) refreshWorkers() {
	s.Workers = stage.Workers(filter.Window(s.Records, s.Locations), s.Workers)
}

// Clone returns a copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Records = append([]model.RawRecord(nil), s.Records...)
	c.Locations = append([]model.LocationConfig(nil), s.Locations...)
	c.Workers = append([]model.WorkerTariffConfig(nil), s.Workers...)
	return &c
}
