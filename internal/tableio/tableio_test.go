package tableio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCSV_Basic(t *testing.T) {
	input := "Lokasi,Grid\nSetabar,A1\n\nMenjalin,B2\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lokasi", "Grid"}, tbl.Header)
	require.Equal(t, 2, tbl.Len(), "blank lines are skipped")
	assert.Equal(t, "Menjalin", tbl.Value(tbl.Rows[1], "Lokasi"))
}

func TestReadCSV_StripsBOM(t *testing.T) {
	input := "\ufeffKode Testpit,Grid\nTP-1,A1\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, tbl.Has("Kode Testpit"))
	assert.Equal(t, "TP-1", tbl.Value(tbl.Rows[0], "Kode Testpit"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestTable_ValueAndMissing(t *testing.T) {
	tbl := New([]string{" a ", "b"}, [][]string{{" x ", "y"}, {"short"}})
	assert.Equal(t, "x", tbl.Value(tbl.Rows[0], "a"))
	assert.Equal(t, "", tbl.Value(tbl.Rows[1], "b"), "short rows read as blank")
	assert.Equal(t, "", tbl.Value(tbl.Rows[0], "zzz"))
	assert.Equal(t, []string{"c", "d"}, tbl.Missing("a", "c", "b", "d"))
}

func TestEncodeCSV_RoundTrip(t *testing.T) {
	tbl := New([]string{"name", "note"}, [][]string{{"Budi", "has, comma"}})
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, tbl))
	assert.Equal(t, "name,note\nBudi,\"has, comma\"\n", buf.String())
}

func TestReadXLSXFile(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"Penggali", "Kelompok Penggali"},
		{"Andi", "K1"},
		{"", ""},
		{"Budi", "K2"},
	})

	tbl, err := ReadXLSXFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Penggali", "Kelompok Penggali"}, tbl.Header)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Budi", tbl.Value(tbl.Rows[1], "Penggali"))
}

func TestReadFile_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("a\n1\n"), 0o644))

	tbl, err := ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, err = ReadFile(filepath.Join(dir, "t.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestReadUpload_XLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{{"a"}, {"1"}})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	tbl, err := ReadUpload("template.XLSX", f)
	require.NoError(t, err)
	assert.Equal(t, "1", tbl.Value(tbl.Rows[0], "a"))
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSVFile(path, New([]string{"a"}, [][]string{{"1"}})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestWriteFileAtomic_FailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vouchers.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	err := WriteFileAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1, "temp file is removed")
}
