package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/syntaxis/errors"
	syntest "github.com/teranos/syntaxis/internal/testing"
)

func anthropos() WordEntry {
	return WordEntry{
		Lexical:      "noun",
		Lemma:        "άνθρωπος",
		Translations: []string{"person", "human"},
		Forms: map[string]string{
			"nom:masc:sg": "άνθρωπος",
			"gen:masc:sg": "ανθρώπου",
			"acc:masc:sg": "άνθρωπο",
			"nom:masc:pl": "άνθρωποι",
			"gen:masc:pl": "ανθρώπων",
			"acc:masc:pl": "ανθρώπους",
		},
	}
}

func kalos() WordEntry {
	return WordEntry{
		Lexical:      "adj",
		Lemma:        "καλός",
		Translations: []string{"good"},
		Forms: map[string]string{
			"nom:masc:sg": "καλός",
			"nom:masc:pl": "καλοί",
			"nom:fem:sg":  "καλή",
			"nom:fem:pl":  "καλές",
			"nom:neut:sg": "καλό",
			"nom:neut:pl": "καλά",
			"acc:masc:sg": "καλό",
		},
	}
}

func newTestLexicon(t *testing.T) *LexiconStore {
	t.Helper()
	return NewLexiconStore(syntest.CreateTestDB(t), zaptest.NewLogger(t).Sugar())
}

func TestRandomWordExactMatch(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, anthropos()))

	w, err := store.RandomWord(ctx, "noun", map[string]string{"case": "gen", "gender": "masc", "number": "sg"})
	require.NoError(t, err)

	assert.Equal(t, "άνθρωπος", w.Lemma)
	assert.Equal(t, "noun", w.LexicalType)
	assert.Equal(t, []string{"ανθρώπου"}, w.Forms)
	assert.Equal(t, []string{"person", "human"}, w.Translations)
	assert.Equal(t, map[string]string{"case": "gen", "gender": "masc", "number": "sg"}, w.Features)
	assert.Equal(t, "ανθρώπου", w.String())
}

func TestRandomWordPartialConstraints(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, kalos()))

	w, err := store.RandomWord(ctx, "adjective", map[string]string{"case": "nom"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"καλός", "καλοί", "καλή", "καλές", "καλό", "καλά"}, w.Forms)

	// same surface form for two feature combinations is reported once
	w, err = store.RandomWord(ctx, "adjective", map[string]string{"gender": "masc", "number": "sg"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"καλός", "καλό"}, w.Forms)
}

func TestRandomWordIgnoresWildcards(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, anthropos()))

	w, err := store.RandomWord(ctx, "noun", map[string]string{"case": "acc", "number": "*number*"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"άνθρωπο", "ανθρώπους"}, w.Forms)
	assert.NotContains(t, w.Features, "number")
}

func TestRandomWordNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)

	_, err := store.RandomWord(ctx, "noun", map[string]string{"case": "nom"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, store.AddWord(ctx, anthropos()))

	// no feminine form of a masculine noun
	_, err = store.RandomWord(ctx, "noun", map[string]string{"gender": "fem"})
	assert.True(t, errors.IsNotFoundError(err))

	// wrong lexical type
	_, err = store.RandomWord(ctx, "verb", nil)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRandomWordRejectsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)

	tests := []struct {
		name     string
		lexical  string
		features map[string]string
	}{
		{"unknown lexical", "particle", nil},
		{"value from another category", "noun", map[string]string{"case": "masc"}},
		{"unknown value", "noun", map[string]string{"case": "dative"}},
		{"unknown category", "noun", map[string]string{"aspect": "perfective"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.RandomWord(ctx, tt.lexical, tt.features)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}
}

func TestRandomWordIsUniform(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, anthropos()))
	require.NoError(t, store.AddWord(ctx, WordEntry{
		Lexical:      "noun",
		Lemma:        "δρόμος",
		Translations: []string{"road"},
		Forms:        map[string]string{"nom:masc:sg": "δρόμος"},
	}))

	seen := make(map[string]int)
	for i := 0; i < 100; i++ {
		w, err := store.RandomWord(ctx, "noun", map[string]string{"case": "nom", "number": "sg"})
		require.NoError(t, err)
		seen[w.Lemma]++
	}
	assert.Len(t, seen, 2, "both matching lemmas should be drawn: %v", seen)
}

func TestAddWordValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)

	tests := []struct {
		name  string
		entry WordEntry
	}{
		{"empty lemma", WordEntry{Lexical: "adverb", Lemma: "  ", Translations: []string{"x"}}},
		{"no translations", WordEntry{Lexical: "adverb", Lemma: "εδώ", Translations: []string{" "}}},
		{"inflected without forms", WordEntry{Lexical: "noun", Lemma: "σπίτι", Translations: []string{"house"}}},
		{"unknown feature", WordEntry{Lexical: "noun", Lemma: "σπίτι", Translations: []string{"house"},
			Forms: map[string]string{"nom:neut:dual": "σπίτι"}}},
		{"wildcard feature", WordEntry{Lexical: "noun", Lemma: "σπίτι", Translations: []string{"house"},
			Forms: map[string]string{"nom:neut:*number*": "σπίτι"}}},
		{"duplicate category", WordEntry{Lexical: "noun", Lemma: "σπίτι", Translations: []string{"house"},
			Forms: map[string]string{"nom:acc:neut:sg": "σπίτι"}}},
		{"empty form", WordEntry{Lexical: "noun", Lemma: "σπίτι", Translations: []string{"house"},
			Forms: map[string]string{"nom:neut:sg": ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AddWord(ctx, tt.entry)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}

	stats, err := store.CountWords(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestAddWordConflictAndReplace(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, anthropos()))

	err := store.AddWord(ctx, anthropos())
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))

	replacement := anthropos()
	replacement.Translations = []string{"man"}
	replacement.Forms = map[string]string{"nom:masc:sg": "άνθρωπος"}
	require.NoError(t, store.ReplaceWord(ctx, replacement))

	stats, err := store.CountWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Forms)

	w, err := store.RandomWord(ctx, "noun", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"man"}, w.Translations)
}

func TestInvariableWordDefaultsToLemmaForm(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	require.NoError(t, store.AddWord(ctx, WordEntry{Lexical: "conj", Lemma: "και", Translations: []string{"and", "and", " also "}}))

	w, err := store.RandomWord(ctx, "conjunction", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, []string{"και"}, w.Forms)
	assert.Equal(t, []string{"and", "also"}, w.Translations)
}

func TestLemmasAreNFCNormalized(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)

	// "εδώ" with a combining acute accent
	decomposed := "εδ\u03c9\u0301"
	require.NoError(t, store.AddWord(ctx, WordEntry{Lexical: "adverb", Lemma: decomposed, Translations: []string{"here"}}))

	lemmas, err := store.ListLemmas(ctx, "adverb")
	require.NoError(t, err)
	assert.Equal(t, []string{"εδώ"}, lemmas)

	err = store.AddWord(ctx, WordEntry{Lexical: "adverb", Lemma: "εδώ", Translations: []string{"here"}})
	assert.True(t, errors.IsConflictError(err))
}

func TestImportWordsIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)

	_, err := store.ImportWords(ctx, []WordEntry{
		anthropos(),
		{Lexical: "noun", Lemma: "", Translations: []string{"nothing"}},
	})
	require.Error(t, err)

	stats, err := store.CountWords(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)

	n, err := store.ImportWords(ctx, []WordEntry{anthropos(), kalos()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// importing again replaces instead of conflicting
	n, err = store.ImportWords(ctx, []WordEntry{anthropos()})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err = store.CountWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, map[string]int{"noun": 1, "adjective": 1}, stats.ByLexical)
	assert.Equal(t, 13, stats.Forms)
}

func TestListAndDeleteWords(t *testing.T) {
	ctx := context.Background()
	store := newTestLexicon(t)
	_, err := store.ImportWords(ctx, []WordEntry{anthropos(), kalos(),
		{Lexical: "adverb", Lemma: "τώρα", Translations: []string{"now"}}})
	require.NoError(t, err)

	all, err := store.ListLemmas(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"άνθρωπος", "καλός", "τώρα"}, all)

	nouns, err := store.ListLemmas(ctx, "noun")
	require.NoError(t, err)
	assert.Equal(t, []string{"άνθρωπος"}, nouns)

	deleted, err := store.DeleteWord(ctx, "noun", "άνθρωπος")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteWord(ctx, "noun", "άνθρωπος")
	require.NoError(t, err)
	assert.False(t, deleted)

	stats, err := store.CountWords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 8, stats.Forms, "forms of the deleted lemma cascade")

	require.NoError(t, store.Clear(ctx))
	stats, err = store.CountWords(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Forms)
}

func TestRandomWordDatabaseFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("closed database", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectQuery("SELECT l.id, l.lemma").
			WillReturnError(errors.New("sql: database is closed"))

		store := NewLexiconStore(conn, zaptest.NewLogger(t).Sugar())
		_, err = store.RandomWord(ctx, "noun", map[string]string{"case": "nom"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
		assert.False(t, errors.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("forms query fails", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectQuery("SELECT l.id, l.lemma").
			WithArgs("noun", "nom").
			WillReturnRows(sqlmock.NewRows([]string{"id", "lemma"}).AddRow(7, "άνθρωπος"))
		mock.ExpectQuery("SELECT f.form").
			WithArgs(int64(7), "nom").
			WillReturnError(errors.New("disk I/O error"))

		store := NewLexiconStore(conn, zaptest.NewLogger(t).Sugar())
		_, err = store.RandomWord(ctx, "noun", map[string]string{"case": "nom"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk I/O error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestImportWordsRollsBackOnFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO forms")
	mock.ExpectExec("DELETE FROM lemmas").
		WithArgs("adverb", "τώρα").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO lemmas").
		WithArgs("adverb", "τώρα").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewLexiconStore(conn, zaptest.NewLogger(t).Sugar())
	_, err = store.ImportWords(context.Background(), []WordEntry{
		{Lexical: "adverb", Lemma: "τώρα", Translations: []string{"now"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
