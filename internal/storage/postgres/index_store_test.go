package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/restaurant-knowledge/internal/restaurant"
)

func TestUpsertEntriesWritesRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewIndexStoreWithPool(mock, "")
	require.NoError(t, err)

	now := time.Unix(1741608000, 0).UTC()
	entries := []restaurant.IndexEntry{
		{Slug: "roma", Name: "Pizzeria Roma", Brand: "Pizzeria Roma", City: "Ängelholm", Timezone: "Europe/Stockholm", UpdatedAt: now, ArtifactPaths: restaurant.ArtifactPaths("roma")},
		{Slug: "roma-lund", Name: "Roma Lund", City: "Lund", Timezone: "Europe/Stockholm", UpdatedAt: now, ArtifactPaths: restaurant.ArtifactPaths("roma-lund")},
	}

	for _, e := range entries {
		mock.ExpectExec("INSERT INTO restaurant_index").
			WithArgs(
				e.Slug,
				e.Name,
				e.Brand,
				e.City,
				e.Timezone,
				e.UpdatedAt,
				[]byte(`{"info":"`+e.Slug+`/info.json","knowledge":"`+e.Slug+`/knowledge.jsonl","report":"`+e.Slug+`/report.txt"}`),
				"run-1",
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, store.UpsertEntries(context.Background(), "run-1", entries))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEntriesPropagatesErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewIndexStoreWithPool(mock, "kb_index")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO kb_index").WillReturnError(errors.New("connection reset"))

	err = store.UpsertEntries(context.Background(), "run-2", []restaurant.IndexEntry{{Slug: "roma"}})
	require.ErrorContains(t, err, "upsert index row roma")
	require.NoError(t, mock.ExpectationsWereMet())

	require.Error(t, store.UpsertEntries(context.Background(), "run-2", []restaurant.IndexEntry{{Name: "utan slug"}}))
}

func TestNewIndexStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewIndexStoreWithPool(nil, "")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewIndexStoreWithPool(mock, "bad-name; drop")
	require.ErrorContains(t, err, "invalid table name")

	_, err = NewIndexStore(context.Background(), IndexStoreConfig{})
	require.ErrorContains(t, err, "dsn is required")
}

func TestCloseIsNilSafe(t *testing.T) {
	t.Parallel()

	var s *IndexStore
	s.Close()
}
