package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name    string
	Weights map[string]float64
	Series  []float64
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A single connection keeps the in-memory database shared across queries.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

func TestStoreAndGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	in := cachedThing{Name: "alloc", Weights: map[string]float64{"XLK": 0.6, "XLE": 0.4}, Series: []float64{1, 2, 3}}
	require.NoError(t, repo.Store(TableScenario, "k1", in, time.Hour))

	var out cachedThing
	found, err := repo.GetIfFresh(TableScenario, "k1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableBacktest, "k", cachedThing{Name: "first"}, time.Hour))
	require.NoError(t, repo.Store(TableBacktest, "k", cachedThing{Name: "second"}, time.Hour))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM backtest_responses").Scan(&count))
	assert.Equal(t, 1, count)

	var out cachedThing
	found, err := repo.GetIfFresh(TableBacktest, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", out.Name)
}

func TestGetIfFresh_ExpiredAndMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Store(TableScenario, "k", cachedThing{Name: "x"}, time.Minute))

	repo.now = func() time.Time { return base.Add(2 * time.Minute) }
	var out cachedThing
	found, err := repo.GetIfFresh(TableScenario, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.GetIfFresh(TableScenario, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	assert.Error(t, repo.Store("users; DROP TABLE x", "k", 1, time.Hour))
	_, err := repo.GetIfFresh("nope", "k", new(int))
	assert.Error(t, err)
	_, err = repo.DeleteExpired("nope")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableScenario, "k", cachedThing{Name: "x"}, time.Hour))
	require.NoError(t, repo.Delete(TableScenario, "k"))
	require.NoError(t, repo.Delete(TableScenario, "never-existed"))

	found, err := repo.GetIfFresh(TableScenario, "k", &cachedThing{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAllExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewRepository(db)

	base := time.Now()
	repo.now = func() time.Time { return base.Add(-2 * time.Hour) }
	require.NoError(t, repo.Store(TableScenario, "old", cachedThing{}, time.Hour))
	require.NoError(t, repo.Store(TableBacktest, "old", cachedThing{}, time.Hour))
	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Store(TableBacktest, "fresh", cachedThing{}, time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{TableScenario: 1, TableBacktest: 1}, results)

	found, err := repo.GetIfFresh(TableBacktest, "fresh", &cachedThing{})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	a, err := Key(map[string]any{"date": "2020-01-01"})
	require.NoError(t, err)
	b, err := Key(map[string]any{"date": "2020-01-01"})
	require.NoError(t, err)
	c, err := Key(map[string]any{"date": "2020-01-02"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
