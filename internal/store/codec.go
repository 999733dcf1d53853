package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/gajian-cli/internal/session"
)

func encodeTables(s *session.Session) (tables, error) {
	var t tables
	var err error
	if t.records, err = marshalList(s.Records); err != nil {
		return t, eris.Wrap(err, "store: marshal records")
	}
	if t.locations, err = marshalList(s.Locations); err != nil {
		return t, eris.Wrap(err, "store: marshal locations")
	}
	if t.workers, err = marshalList(s.Workers); err != nil {
		return t, eris.Wrap(err, "store: marshal workers")
	}
	return t, nil
}

func decodeTables(s *session.Session, t tables) error {
	if err := json.Unmarshal(t.records, &s.Records); err != nil {
		return eris.Wrap(err, "store: unmarshal records")
	}
	if err := json.Unmarshal(t.locations, &s.Locations); err != nil {
		return eris.Wrap(err, "store: unmarshal locations")
	}
	if err := json.Unmarshal(t.workers, &s.Workers); err != nil {
		return eris.Wrap(err, "store: unmarshal workers")
	}
	return nil
}

// marshalList writes nil slices as [] so array functions work in SQL.
func marshalList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}
