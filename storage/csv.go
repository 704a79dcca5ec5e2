package storage

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/grammar"
)

// ParseCSV reads invariable words from dictionary CSV with the columns
// lexical, translations, lemma. The first row is a header. Translations
// are comma separated inside their field. Inflected lexical types are
// rejected: their forms can only come from seed files.
func ParseCSV(r io.Reader) ([]WordEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, errors.NewInvalidRequestError("csv is empty")
		}
		return nil, errors.Wrap(err, "failed to read csv header")
	}

	var entries []WordEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "malformed csv"), errors.ErrInvalidRequest)
		}
		line, _ := cr.FieldPos(0)

		lt, err := grammar.ResolveLexical(record[0])
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "csv line %d", line), errors.ErrInvalidRequest)
		}
		if !lt.IsInvariable() {
			return nil, errors.WithHint(
				errors.NewInvalidRequestError("csv line %d: %s %q needs inflected forms", line, lt, record[2]),
				"inflected words are imported from yaml or toml seed files")
		}

		entries = append(entries, WordEntry{
			Lexical:      string(lt),
			Lemma:        record[2],
			Translations: strings.Split(record[1], ","),
		})
	}
	return entries, nil
}
