package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/errors"
	syntest "github.com/teranos/syntaxis/internal/testing"
	"github.com/teranos/syntaxis/template"
)

func TestTemplateStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(syntest.CreateTestDB(t))

	first, err := store.Save(ctx, "  [article:nom:masc:sg] [noun:nom:masc:sg]  ", "subject")
	require.NoError(t, err)
	assert.Equal(t, "[article:nom:masc:sg] [noun:nom:masc:sg]", first.Template)
	assert.Equal(t, "subject", first.Description)
	assert.Equal(t, template.SyntaxBracket.String(), first.SyntaxVersion)

	second, err := store.Save(ctx, "(art noun)@{acc:fem:pl}", "")
	require.NoError(t, err)
	assert.Equal(t, template.SyntaxGrouped.String(), second.SyntaxVersion)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Template, got.Template)
	assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)

	deleted, err := store.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = store.Get(ctx, first.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestTemplateStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	conn, path := syntest.CreateTestDBFile(t)

	saved, err := NewTemplateStore(conn).Save(ctx, "(art adj noun)@{gen:neut:sg}", "genitive phrase")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	reopened, err := db.OpenWithMigrations(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := NewTemplateStore(reopened).Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Template, got.Template)
	assert.Equal(t, "genitive phrase", got.Description)
}

func TestTemplateStoreRejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(syntest.CreateTestDB(t))

	_, err := store.Save(ctx, "[noun:nom]", "")
	require.Error(t, err)
	pe, ok := template.AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, template.WrongFeatureArity, pe.Kind)

	_, err = store.Save(ctx, "[adverb]", "")
	require.NoError(t, err)

	_, err = store.Save(ctx, "[adverb]", "again")
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTemplateStoreReadsSQLiteTimestamps(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT id, template, description, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "template", "description", "created_at"}).
			AddRow(1, "[adverb]", "", "2025-03-01 10:20:30").
			AddRow(2, "(noun)@{nom:masc:sg}", "", "not a time"))

	store := NewTemplateStore(conn)
	_, err = store.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template 2 has invalid created_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)

	for _, v := range []interface{}{
		want,
		"2025-03-01T10:20:30.000000000Z",
		[]byte("2025-03-01 10:20:30"),
		"2025-03-01T12:20:30+02:00",
	} {
		got, err := parseTimestamp(v)
		require.NoError(t, err, "%v", v)
		assert.True(t, want.Equal(got), "%v parsed as %v", v, got)
	}

	_, err := parseTimestamp(42)
	assert.Error(t, err)
}
