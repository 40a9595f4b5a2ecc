package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"popstats/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "none.yaml"), "--data-dir", dir, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAddAndReport(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "country", "France", "FR", "FRA")
	require.NoError(t, err)
	assert.Contains(t, out, "Country France added.")
	assert.FileExists(t, filepath.Join(dir, "paises.json"))

	_, err = run(t, dir, "add", "indicator", "SP.POP.TOTL", "Total population")
	require.NoError(t, err)

	out, err = run(t, dir, "add", "population", "2000", "France", "SP.POP.TOTL", "58000000")
	require.NoError(t, err)
	assert.Contains(t, out, "Record added: France 2000 = 58,000,000")

	_, err = run(t, dir, "add", "population", "2010", "France", "SP.POP.TOTL", "62000000", "--status", "estimado")
	require.NoError(t, err)

	out, err = run(t, dir, "add", "population", "2010", "France", "SP.POP.TOTL", "62500000")
	require.NoError(t, err)
	assert.Contains(t, out, "Record updated")

	out, err = run(t, dir, "report", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "France: Year 2010, Population 62,500,000 personas")
}

func TestAddRejectsDuplicatesAndUnknowns(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "country", "France", "FR", "FRA")
	require.NoError(t, err)

	_, err = run(t, dir, "add", "country", "France again", "FR", "FRA")
	assert.ErrorIs(t, err, engine.ErrDuplicateCountry)

	_, err = run(t, dir, "add", "population", "2000", "France", "SP.POP.TOTL", "1")
	assert.ErrorIs(t, err, engine.ErrUnknownIndicator)

	_, err = run(t, dir, "add", "population", "year", "France", "SP.POP.TOTL", "1")
	assert.Error(t, err)
}

func TestExportSQLite(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "add", "country", "Chile", "CL", "CHL")
	require.NoError(t, err)

	db := filepath.Join(dir, "out.db")
	out, err := run(t, dir, "export", "--sqlite", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 records")
	assert.FileExists(t, db)
}

func TestConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "popstats.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("indicators:\n  default_unit: people\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "--data-dir", dir, "--log-level", "error", "report", "N"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Total population in 2000: 0 people")

	_, err := run(t, dir, "--log-level", "loud", "report", "N")
	assert.Error(t, err)
}

func TestMenuEndsWithInput(t *testing.T) {
	out, err := run(t, t.TempDir(), "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Select an option")
}

func TestUnreadableCollectionIsLogged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "paises.json"), 0o755))

	out, err := run(t, dir, "report", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "collection could not be read")
	assert.Contains(t, out, "paises.json")
}
