package engine

import (
	"io"
	"log/slog"
	"testing"

	"popstats/internal/store"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadDataset(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "paises.json", []byte(`[
    {"nombre": "France", "codigo_iso": "FR", "codigo_iso3": "FRA"}
]`), 0o644))
	require.NoError(t, util.WriteFile(fs, "indicadores.json", []byte(`[
    {"id_indicador": "SP.POP.TOTL", "descripcion": "Total population"}
]`), 0o644))
	require.NoError(t, util.WriteFile(fs, "poblacion.json", []byte(`[
    {"ano": 2000, "pais": "France", "codigo_iso3": "FRA", "indicador_id": "SP.POP.TOTL",
     "descripcion": "Total population", "valor": 58000000, "estado": "disponible", "unidad": "personas"},
    {"ano": 2010, "pais": "France", "codigo_iso3": "FRA", "indicador_id": "SP.POP.TOTL",
     "descripcion": "Total population", "valor": 62000000, "estado": "disponible", "unidad": "personas"}
]`), 0o644))

	d, issues := Load(store.New(fs, quietLogger()), DefaultOptions(), quietLogger())
	require.Empty(t, issues)

	assert.Len(t, d.Countries(), 1)
	assert.Len(t, d.Indicators(), 1)
	assert.Len(t, d.Population(), 2)

	r, ok := d.Lookup(2010, "FRA", "SP.POP.TOTL")
	require.True(t, ok)
	assert.Equal(t, 62000000.0, r.Value)

	pct, ok := d.Snapshot().PercentGrowth("France", 2000, 2010)
	require.True(t, ok)
	assert.Equal(t, 6.9, pct)
}

func TestLoadMissingAndMalformed(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "poblacion.json", []byte(`{not json`), 0o644))

	d, issues := Load(store.New(fs, quietLogger()), DefaultOptions(), quietLogger())
	require.Len(t, issues, 3)
	assert.ErrorIs(t, issues[0], store.ErrCollectionMissing)
	assert.ErrorIs(t, issues[1], store.ErrCollectionMissing)
	assert.ErrorIs(t, issues[2], store.ErrCollectionMalformed)

	// the process carries on with empty collections
	assert.Empty(t, d.Countries())
	assert.Empty(t, d.Population())
	require.NoError(t, d.AddCountry("France", "FR", "FRA"))
	assert.Len(t, d.Countries(), 1)
}
