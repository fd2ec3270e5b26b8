package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so callers can thread a
// transaction through several repositories.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Dialect captures the few differences between postgres and sqlite that the
// repositories care about.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(driver))) {
	case DialectPostgres:
		return DialectPostgres, nil
	case DialectSQLite:
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $n placeholders for sqlite. Queries must reference each
// placeholder once, in ascending order.
func (d Dialect) Rebind(query string) string {
	if d != DialectSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

// LockClause is appended to a SELECT that must hold a row lock until commit.
// sqlite serialises writers on its own.
func (d Dialect) LockClause() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintUnique
	constraintForeignKey
)

// classifyConstraint reports which constraint a driver error violated. The
// constraint name is only known for postgres.
func classifyConstraint(err error) (constraintKind, string) {
	if err == nil {
		return constraintNone, ""
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return constraintUnique, pqErr.Constraint
		case "23503": // foreign_key_violation
			return constraintForeignKey, pqErr.Constraint
		}
		return constraintNone, ""
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return constraintUnique, ""
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return constraintForeignKey, ""
		}
	}
	return constraintNone, ""
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// base carries the shared db handle and dialect for every repository.
type base struct {
	db      *sql.DB
	dialect Dialect
}

func (b base) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return b.db
}

func (b base) q(query string) string {
	return b.dialect.Rebind(query)
}
