package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreAnnotated(t *testing.T) {
	names, err := fs.Glob(files, "*.sql")
	require.NoError(t, err)
	require.Len(t, names, 5)

	for _, name := range names {
		raw, err := fs.ReadFile(files, name)
		require.NoError(t, err)
		body := string(raw)
		assert.Contains(t, body, "-- +goose Up", name)
		assert.Contains(t, body, "-- +goose Down", name)
	}
}

func TestSeedContainsDefaultCategories(t *testing.T) {
	raw, err := fs.ReadFile(files, "00005_seed_spare_parts.sql")
	require.NoError(t, err)
	body := string(raw)

	for _, category := range []string{"Filtros", "Frenos", "Suspensión", "Motor", "Eléctrico", "Transmisión", "Aceites y lubricantes", "Refrigeración", "Escape", "Dirección"} {
		assert.True(t, strings.Contains(body, "'"+category+"'"), category)
	}
}
