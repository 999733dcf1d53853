package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testField = `Kode Testpit,Grid,Prospek,Tanggal Sampling,Total Kedalaman,Total Koli,Pemilik Lahan,Penggali,Pengangkut,Penimbun
TP-1,G1,Setabar,02/05/2025,5,3,Ani,Andi,2,4
TP-2,G1,Setabar,03/05/2025,6,10,Budi,Andi,1,1
TP-3,G2,Sungai,04/05/2025,5,3,Cici,Budi,0,0
`

const testLocations = `Lokasi,Tanggal Mulai (2025-05-23),Tanggal Selesai (2025-05-23),Tanggal Gajian (2025-05-23),Sistem Angkutan (Koli/Kilo)
Setabar,2025-05-01,2025-05-31,2025-06-26,Koli
Sungai,,,,
`

const testWorkers = `Penggali,Kelompok Penggali,Harga Galian (Lokal/Luar),Harga Samplingan (Lokal/Luar)
Andi,K1,Lokal,Luar
`

// setupWorkspace writes a config.yaml, rate tables and field uploads into a
// temp dir and makes it the working directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	files := map[string]string{
		"hg_galian_lokal.csv":     "Kedalaman,Harga\n5,50000\n6,60000\n",
		"hg_galian_luar.csv":      "Kedalaman,Harga\n5,70000\n",
		"hg_samplingan_lokal.csv": "Total Koli,Harga\n3,15000\n",
		"hg_samplingan_luar.csv":  "Total Koli,Harga\n3,20000\n",
		"lapangan.csv":            testField,
		"lokasi.csv":              testLocations,
		"penggali.csv":            testWorkers,
		"config.yaml": `
store:
  driver: sqlite
  database_url: gajian.db
voucher:
  output_dir: out
log:
  level: error
`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0o755))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stepSession, stepOut = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func newSessionID(t *testing.T) string {
	t.Helper()
	out, err := execute(t, "session", "new", "mei")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)
	return id
}

func TestWorkflowCommands(t *testing.T) {
	dir := setupWorkspace(t)
	id := newSessionID(t)

	_, err := execute(t, "ingest", "-s", id, "lapangan.csv")
	require.NoError(t, err)
	_, err = execute(t, "locations", "import", "-s", id, "lokasi.csv")
	require.NoError(t, err)
	_, err = execute(t, "workers", "import", "-s", id, "penggali.csv")
	require.NoError(t, err)

	out, err := execute(t, "records", "-s", id)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4, "header plus three records")

	out, err = execute(t, "locations", "export", "-s", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Setabar,2025-05-01,2025-05-31,2025-06-26,Koli")

	out, err = execute(t, "calculate", "-s", id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "header plus the two windowed records")
	assert.Contains(t, lines[0], "Tarif Langsiran")

	pivotPath := filepath.Join(dir, "rekap.csv")
	_, err = execute(t, "pivot", "-s", id, "-o", pivotPath)
	require.NoError(t, err)
	data, err := os.ReadFile(pivotPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total")

	_, err = execute(t, "vouchers", "-s", id, "--date", "2025-06-26", "--license", "123/2025")
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, "out", "Gajian IUP OP 123-2025 Setabar, 26 Juni 2025.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 6)
}

func TestSessionCommands(t *testing.T) {
	setupWorkspace(t)
	id := newSessionID(t)

	out, err := execute(t, "session", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "mei")

	out, err = execute(t, "session", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"records": 0`)

	_, err = execute(t, "session", "drop", id)
	require.NoError(t, err)

	_, err = execute(t, "session", "show", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestIngest_ValidationError(t *testing.T) {
	dir := setupWorkspace(t)
	id := newSessionID(t)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Kode Testpit,Grid\nTP-1,G1\n"), 0o644))

	_, err := execute(t, "ingest", "-s", id, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestIngest_UnsupportedFile(t *testing.T) {
	setupWorkspace(t)
	_, err := execute(t, "ingest", "-s", "x", "lapangan.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestVouchers_InvalidDate(t *testing.T) {
	setupWorkspace(t)
	id := newSessionID(t)

	_, err := execute(t, "vouchers", "-s", id, "--date", "besok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --date")
}

func TestVouchers_EmptySession(t *testing.T) {
	setupWorkspace(t)
	id := newSessionID(t)

	_, err := execute(t, "vouchers", "-s", id, "--date", "2025-06-26")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty result")
}
