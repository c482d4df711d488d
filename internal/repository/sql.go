package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/hitoshi/autobazar/internal/database"
)

// querier は*sql.DBと*sql.Txの共通部分。
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// rebind は$N形式のプレースホルダをDialectに合わせて書き換える。
// 各クエリは$1から順に一度ずつ参照すること。
func rebind(dialect database.Dialect, query string) string {
	if dialect != database.DialectSQLite {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?")
}

// isUniqueViolation は一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return false
}
