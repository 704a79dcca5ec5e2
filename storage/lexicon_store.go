package storage

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
	"github.com/teranos/syntaxis/logger"
)

// featureColumns maps a feature category to its column in the forms table.
// "case" is a reserved word in SQL.
var featureColumns = map[grammar.Category]string{
	grammar.CategoryCase:   "case_name",
	grammar.CategoryGender: "gender",
	grammar.CategoryNumber: "number",
	grammar.CategoryTense:  "tense",
	grammar.CategoryVoice:  "voice",
	grammar.CategoryMood:   "mood",
	grammar.CategoryPerson: "person",
	grammar.CategoryType:   "type",
}

// LexiconStore stores lemmas with their surface forms and translations
type LexiconStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Stats summarizes the lexicon contents
type Stats struct {
	Total     int            `json:"total"`
	ByLexical map[string]int `json:"by_lexical"`
	Forms     int            `json:"forms"`
}

// NewLexiconStore creates a lexicon store over an already migrated database
func NewLexiconStore(conn *sql.DB, log *zap.SugaredLogger) *LexiconStore {
	if log == nil {
		log = logger.ComponentLogger("lexicon")
	}
	return &LexiconStore{db: conn, logger: log}
}

// condition is one "column = value" constraint on the forms table
type condition struct {
	column string
	value  string
}

// constraints validates a lookup request and returns its conditions in
// canonical category order. Wildcard values place no constraint.
func constraints(features map[string]string) ([]condition, error) {
	conds := make([]condition, 0, len(features))
	for _, c := range grammar.Categories {
		value, ok := features[string(c)]
		if !ok {
			continue
		}
		if strings.HasPrefix(value, "*") {
			continue
		}
		if cat, known := grammar.CategoryOf(value); !known || cat != c {
			return nil, errors.NewInvalidRequestError("%q is not a %s feature", value, c)
		}
		conds = append(conds, condition{column: featureColumns[c], value: value})
	}
	if len(conds) < len(features) {
		for k := range features {
			if _, ok := featureColumns[grammar.Category(k)]; !ok {
				return nil, errors.NewInvalidRequestError("unknown feature category %q", k)
			}
		}
	}
	return conds, nil
}

// whereForms renders conds as additional AND clauses on the forms alias f
func whereForms(conds []condition) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0, len(conds))
	for _, c := range conds {
		b.WriteString(" AND f.")
		b.WriteString(c.column)
		b.WriteString(" = ?")
		args = append(args, c.value)
	}
	return b.String(), args
}

// RandomWord picks a lemma of the lexical type uniformly at random among
// those with at least one form matching every feature. The returned Word
// holds the matching forms and all translations. When nothing matches the
// error wraps errors.ErrNotFound.
func (s *LexiconStore) RandomWord(ctx context.Context, lexical string, features map[string]string) (*Word, error) {
	lt, err := grammar.ResolveLexical(lexical)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidRequest)
	}
	conds, err := constraints(features)
	if err != nil {
		return nil, err
	}
	clause, args := whereForms(conds)

	query := `
		SELECT l.id, l.lemma
		FROM lemmas l
		WHERE l.lexical = ?
		  AND EXISTS (SELECT 1 FROM forms f WHERE f.lemma_id = l.id` + clause + `)
		ORDER BY RANDOM()
		LIMIT 1`

	word := &Word{
		LexicalType: string(lt),
		Features:    make(map[string]string, len(conds)),
	}
	err = s.db.QueryRowContext(ctx, query, append([]interface{}{string(lt)}, args...)...).Scan(&word.ID, &word.Lemma)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("no %s matches %v", lt, features)
	}
	if err != nil {
		return nil, s.queryError(err, "failed to select random %s", lt)
	}

	for c, name := range features {
		if !strings.HasPrefix(name, "*") {
			word.Features[c] = name
		}
	}

	formsQuery := `
		SELECT f.form
		FROM forms f
		WHERE f.lemma_id = ?` + clause + `
		GROUP BY f.form
		ORDER BY MIN(f.id)`
	word.Forms, err = s.queryColumn(ctx, formsQuery, append([]interface{}{word.ID}, args...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load forms of %q", word.Lemma)
	}

	word.Translations, err = s.queryColumn(ctx,
		`SELECT translation FROM translations WHERE lemma_id = ? ORDER BY rowid`, word.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load translations of %q", word.Lemma)
	}

	return word, nil
}

// queryColumn runs a single-column query
func (s *LexiconStore) queryColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.queryError(err, "query failed")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryError marks failures on a closed or locked database as ErrServiceUnavailable
func (s *LexiconStore) queryError(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if db.IsUnavailable(err) {
		return errors.Mark(wrapped, errors.ErrServiceUnavailable)
	}
	return wrapped
}

// AddWord inserts a new lemma with its forms and translations in one
// transaction. An existing (lexical, lemma) pair is an ErrConflict.
func (s *LexiconStore) AddWord(ctx context.Context, entry WordEntry) error {
	return s.write(ctx, []WordEntry{entry}, false)
}

// ReplaceWord inserts the lemma, replacing any existing entry for the same
// (lexical, lemma) pair together with its forms and translations.
func (s *LexiconStore) ReplaceWord(ctx context.Context, entry WordEntry) error {
	return s.write(ctx, []WordEntry{entry}, true)
}

// ImportWords replaces every entry in one transaction and returns the
// number of lemmas written. Nothing is written if any entry is invalid.
func (s *LexiconStore) ImportWords(ctx context.Context, entries []WordEntry) (int, error) {
	if err := s.write(ctx, entries, true); err != nil {
		return 0, err
	}
	s.logger.Infow("Imported words", logger.FieldCount, len(entries))
	return len(entries), nil
}

func (s *LexiconStore) write(ctx context.Context, entries []WordEntry, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.queryError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	insertForm, err := tx.PrepareContext(ctx, `
		INSERT INTO forms (lemma_id, form, case_name, gender, number, tense, voice, mood, person, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare form insert")
	}
	defer insertForm.Close()

	for _, entry := range entries {
		lt, lemma, translations, forms, err := entry.normalize()
		if err != nil {
			return err
		}

		if replace {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM lemmas WHERE lexical = ? AND lemma = ?`, string(lt), lemma); err != nil {
				return errors.Wrapf(err, "failed to replace %s %q", lt, lemma)
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO lemmas (lexical, lemma) VALUES (?, ?)`, string(lt), lemma)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return errors.NewConflictError("%s %q already exists", lt, lemma)
			}
			return errors.Wrapf(err, "failed to insert %s %q", lt, lemma)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "failed to read lemma id")
		}

		for _, f := range forms {
			args := []interface{}{id, f.form}
			for _, c := range grammar.Categories {
				if feat, ok := f.features.Get(c); ok {
					args = append(args, feat.Name)
				} else {
					args = append(args, nil)
				}
			}
			if _, err := insertForm.ExecContext(ctx, args...); err != nil {
				return errors.Wrapf(err, "failed to insert form %q of %q", f.form, lemma)
			}
		}

		for _, tr := range translations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO translations (lemma_id, translation) VALUES (?, ?)`, id, tr); err != nil {
				return errors.Wrapf(err, "failed to insert translation %q of %q", tr, lemma)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// DeleteWord removes a lemma and everything attached to it. It reports
// whether the lemma existed.
func (s *LexiconStore) DeleteWord(ctx context.Context, lexical, lemma string) (bool, error) {
	lt, err := grammar.ResolveLexical(lexical)
	if err != nil {
		return false, errors.Mark(err, errors.ErrInvalidRequest)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM lemmas WHERE lexical = ? AND lemma = ?`, string(lt), strings.TrimSpace(lemma))
	if err != nil {
		return false, s.queryError(err, "failed to delete %s %q", lt, lemma)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n > 0, nil
}

// Clear removes every lemma
func (s *LexiconStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lemmas`); err != nil {
		return s.queryError(err, "failed to clear lexicon")
	}
	return nil
}

// CountWords returns lemma counts in total and per lexical type, plus the
// number of stored forms.
func (s *LexiconStore) CountWords(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByLexical: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT lexical, COUNT(*) FROM lemmas GROUP BY lexical`)
	if err != nil {
		return nil, s.queryError(err, "failed to count lemmas")
	}
	for rows.Next() {
		var lexical string
		var n int
		if err := rows.Scan(&lexical, &n); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan lemma count")
		}
		stats.ByLexical[lexical] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "failed to iterate lemma counts")
	}
	rows.Close()

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forms`).Scan(&stats.Forms); err != nil {
		return nil, s.queryError(err, "failed to count forms")
	}
	return stats, nil
}

// ListLemmas returns the lemmas of a lexical type in alphabetical order.
// An empty lexical lists every lemma.
func (s *LexiconStore) ListLemmas(ctx context.Context, lexical string) ([]string, error) {
	if lexical == "" {
		lemmas, err := s.queryColumn(ctx, `SELECT DISTINCT lemma FROM lemmas`)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list lemmas")
		}
		sort.Strings(lemmas)
		return lemmas, nil
	}

	lt, err := grammar.ResolveLexical(lexical)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidRequest)
	}
	lemmas, err := s.queryColumn(ctx, `SELECT lemma FROM lemmas WHERE lexical = ?`, string(lt))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s lemmas", lt)
	}
	sort.Strings(lemmas)
	return lemmas, nil
}
