package tableio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadFile reads a .csv or .xlsx table from disk.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx":
		return ReadXLSXFile(path)
	default:
		return nil, eris.Errorf("tableio: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadUpload reads an uploaded table, choosing the parser from the file name.
// A name without an extension is treated as CSV.
func ReadUpload(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "tableio: read upload")
		}
		return ReadXLSX(data)
	case ".csv", "":
		return ReadCSV(r)
	default:
		return nil, eris.Errorf("tableio: unsupported upload type %q (want .csv or .xlsx)", filepath.Ext(name))
	}
}

// WriteFileAtomic writes to a temp file beside path and renames it into
// place only after write succeeds. On failure the target is untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "tableio: create temp for %s", path)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrapf(err, "tableio: close temp for %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "tableio: rename into %s", path)
	}
	return nil
}

// Bytes encodes t as CSV in memory.
func Bytes(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
