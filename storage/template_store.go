package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/teranos/syntaxis/db"
	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/template"
)

// createdAtLayout is fixed width so that text ordering matches time ordering
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// SavedTemplate is a template stored for reuse
type SavedTemplate struct {
	ID            int64     `json:"id"`
	Template      string    `json:"template"`
	Description   string    `json:"description"`
	SyntaxVersion string    `json:"syntax_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// TemplateStore saves validated templates
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a template store over an already migrated database
func NewTemplateStore(conn *sql.DB) *TemplateStore {
	return &TemplateStore{db: conn}
}

// Save validates text with the template parser and stores it. Saving the
// same text twice is an ErrConflict; a template that does not parse is
// returned as its *template.ParseError.
func (s *TemplateStore) Save(ctx context.Context, text, description string) (*SavedTemplate, error) {
	text = strings.TrimSpace(text)
	ast, err := template.Parse(text)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO templates (template, description, created_at) VALUES (?, ?, ?)`,
		text, strings.TrimSpace(description), now.Format(createdAtLayout))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.NewConflictError("template %q is already saved", text)
		}
		return nil, errors.Wrap(err, "failed to save template")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read template id")
	}

	return &SavedTemplate{
		ID:            id,
		Template:      text,
		Description:   strings.TrimSpace(description),
		SyntaxVersion: ast.Version.String(),
		CreatedAt:     now,
	}, nil
}

// List returns every saved template, newest first
func (s *TemplateStore) List(ctx context.Context) ([]*SavedTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template, description, created_at
		FROM templates
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}
	defer rows.Close()

	var out []*SavedTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns a saved template by id, or an error wrapping errors.ErrNotFound
func (s *TemplateStore) Get(ctx context.Context, id int64) (*SavedTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, template, description, created_at
		FROM templates
		WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("template %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a saved template and reports whether it existed
func (s *TemplateStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrapf(err, "failed to delete template %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read affected rows")
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row scanner) (*SavedTemplate, error) {
	var t SavedTemplate
	var createdAt interface{}
	if err := row.Scan(&t.ID, &t.Template, &t.Description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan template")
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "template %d has invalid created_at", t.ID)
	}
	t.CreatedAt = ts
	t.SyntaxVersion = template.DetectVersion(t.Template).String()
	return &t, nil
}

// parseTimestamp accepts the driver's parsed DATETIME as well as raw text
func parseTimestamp(v interface{}) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, errors.Newf("unsupported timestamp type %T", v)
	}
	for _, layout := range []string{createdAtLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized timestamp %q", s)
}
