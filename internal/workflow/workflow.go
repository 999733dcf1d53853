// Package workflow runs the payroll steps against a stored session. Each
// call loads the session, applies one step and saves it; derived tables are
// recomputed on every call.
package workflow

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/clean"
	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/pivot"
	"github.com/sells-group/gajian-cli/internal/session"
	"github.com/sells-group/gajian-cli/internal/stage"
	"github.com/sells-group/gajian-cli/internal/store"
	"github.com/sells-group/gajian-cli/internal/tableio"
	"github.com/sells-group/gajian-cli/internal/tariff"
	"github.com/sells-group/gajian-cli/internal/voucher"
)

// Service is the entry point shared by the CLI and the HTTP API.
type Service struct {
	store store.Store
	rates tariff.RateTables
	rules tariff.Rules
}

// New returns a Service over st with the given rate tables and rules.
func New(st store.Store, rates tariff.RateTables, rules tariff.Rules) *Service {
	return &Service{store: st, rates: rates, rules: rules}
}

// NewSession creates an empty session.
func (s *Service) NewSession(ctx context.Context, name string) (*session.Session, error) {
	sess, err := s.store.Create(ctx, name)
	if err != nil {
		return nil, eris.Wrap(err, "workflow: create session")
	}
	zap.L().Info("workflow: session created", zap.String("session", sess.ID), zap.String("name", name))
	return sess, nil
}

// ListSessions pages through stored sessions.
func (s *Service) ListSessions(ctx context.Context, filter store.ListFilter) ([]session.Summary, error) {
	return s.store.List(ctx, filter)
}

// DropSession discards a session and everything in it.
func (s *Service) DropSession(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("workflow: session dropped", zap.String("session", id))
	return nil
}

// Session returns the stored session.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	return s.store.Get(ctx, id)
}

// Ingest cleans an uploaded field table into the session and grows the
// location and worker tables. A table with no usable rows is ingested as
// empty with a warning; a validation failure leaves the session unchanged.
func (s *Service) Ingest(ctx context.Context, id string, t *tableio.Table) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := clean.Records(t)
	switch {
	case model.IsEmptyResult(err):
		zap.L().Warn("workflow: upload has no usable rows", zap.String("session", id))
		records = nil
	case err != nil:
		return nil, err
	}

	sess.Ingest(records)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, eris.Wrap(err, "workflow: save after ingest")
	}
	return sess, nil
}

// ImportLocations replaces the location table with an operator upload and
// adds the excavators the new windows bring in.
func (s *Service) ImportLocations(ctx context.Context, id string, t *tableio.Table) (*session.Session, error) {
	locations, err := stage.ParseLocationTable(t)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, "import locations", func(sess *session.Session) {
		sess.ReplaceLocations(locations)
	})
}

// ImportWorkers replaces the worker table with an operator upload.
func (s *Service) ImportWorkers(ctx context.Context, id string, t *tableio.Table) (*session.Session, error) {
	workers, err := stage.ParseWorkerTable(t)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, "import workers", func(sess *session.Session) {
		sess.ReplaceWorkers(workers)
	})
}

func (s *Service) update(ctx context.Context, id, action string, apply func(*session.Session)) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(sess)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, eris.Wrapf(err, "workflow: save after %s", action)
	}
	zap.L().Info("workflow: "+action, zap.String("session", id),
		zap.Int("locations", len(sess.Locations)), zap.Int("workers", len(sess.Workers)))
	return sess, nil
}

// Records returns the cleaned records of a session.
func (s *Service) Records(ctx context.Context, id string) ([]model.RawRecord, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Records, nil
}

// Locations returns the location table of a session.
func (s *Service) Locations(ctx context.Context, id string) ([]model.LocationConfig, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Locations, nil
}

// Workers returns the worker table of a session.
func (s *Service) Workers(ctx context.Context, id string) ([]model.WorkerTariffConfig, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Workers, nil
}

// Enriched returns the windowed working set with transport mode and worker
// configuration attached.
func (s *Service) Enriched(ctx context.Context, id string) ([]model.EnrichedRecord, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched := sess.Enriched()
	if len(enriched) == 0 {
		zap.L().Warn("workflow: working set is empty", zap.String("session", id))
	}
	return enriched, nil
}

// Calculate computes the six tariffs for the session's working set.
func (s *Service) Calculate(ctx context.Context, id string) ([]model.TariffedRecord, error) {
	enriched, err := s.Enriched(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := tariff.New(s.rates, s.rules).Run(enriched)
	if err != nil {
		return nil, eris.Wrap(err, "workflow: calculate")
	}
	return out, nil
}

// Pivot summarizes the session's tariffs.
func (s *Service) Pivot(ctx context.Context, id string) ([]model.PivotRow, error) {
	records, err := s.Calculate(ctx, id)
	if err != nil {
		return nil, err
	}
	return pivot.Summarize(records), nil
}

// RenderVouchers writes the voucher workbook for the session into dir and
// returns its path.
func (s *Service) RenderVouchers(ctx context.Context, id string, doc voucher.Document, dir string) (string, error) {
	records, err := s.Calculate(ctx, id)
	if err != nil {
		return "", err
	}
	return voucher.WriteFile(dir, records, doc)
}

// WriteVouchers streams the voucher workbook for the session to w.
func (s *Service) WriteVouchers(ctx context.Context, id string, doc voucher.Document, w io.Writer) error {
	records, err := s.Calculate(ctx, id)
	if err != nil {
		return err
	}
	return voucher.Write(w, records, doc)
}
