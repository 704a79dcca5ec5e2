package db

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/syntaxis/errors"
)

// ErrDatabaseClosed is returned when the lexicon database has been closed,
// typically while the server is shutting down.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the connection is gone.
// database/sql reports a closed pool by message only, so that is matched too.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure, such as a duplicate (lexical, lemma) pair.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsBusy reports whether err is SQLite lock contention. A concurrent seed
// import holding the write lock surfaces this way.
func IsBusy(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
}

// IsUnavailable reports whether a query failed because the database could
// not serve it right now, as opposed to a bad query or missing data.
func IsUnavailable(err error) bool {
	return IsDatabaseClosed(err) || IsBusy(err)
}
