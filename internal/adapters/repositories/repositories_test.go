package repositories

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestInitSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, InitSchema(ctx, db))
	require.NoError(t, InitSchema(ctx, db))

	_, err = db.ExecContext(ctx, `
	INSERT INTO leg_cache (cache_key, polyline, distance_meters, duration_seconds, created_at)
	VALUES ('old', '', 1, 1, 100), ('new', '', 1, 1, 300);
	`)
	require.NoError(t, err)

	n, err := PurgeExpired(ctx, db, 200, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT cache_key FROM leg_cache`).Scan(&left))
	assert.Equal(t, "new", left)
}

func TestInitSchemaNilDB(t *testing.T) {
	require.Error(t, InitSchema(context.Background(), nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStopsJSON(t *testing.T) {
	path := writeFile(t, "stops.json", `[
		{"id": "a", "lon": 44.3661, "lat": 33.3152, "label": "Bakery"},
		{"lon": 44.37, "lat": 33.32}
	]`)

	stops, issues, err := LoadStops(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, stops, 2)

	assert.Equal(t, "a", stops[0].ID)
	assert.Equal(t, "Bakery", stops[0].Label)
	assert.Equal(t, "s1", stops[1].ID)
	assert.Equal(t, "2. (44.3700, 33.3200)", stops[1].Label)
}

func TestLoadStopsJSONRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"out of range": `[{"id": "a", "lon": 190, "lat": 0}]`,
		"reserved id":  `[{"id": "depot", "lon": 1, "lat": 1}]`,
		"duplicate id": `[{"id": "a", "lon": 1, "lat": 1}, {"id": "a", "lon": 2, "lat": 2}]`,
		"not json":     `lon,lat`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := LoadStops(writeFile(t, "stops.json", body))
			require.Error(t, err)
		})
	}
}

func TestLoadStopsText(t *testing.T) {
	path := writeFile(t, "stops.txt", "44.3661,33.3152\n44.37 33.32\nbogus\n")

	stops, issues, err := LoadStops(path)
	require.NoError(t, err)
	require.Len(t, stops, 2)
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Line)
	assert.Equal(t, domain.Coordinates{Lon: 44.37, Lat: 33.32}, stops[1].Coordinates)
}

func TestLoadStopsMissingFile(t *testing.T) {
	_, _, err := LoadStops(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
