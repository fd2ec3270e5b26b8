package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestRebind(t *testing.T) {
	query := `SELECT id FROM scores WHERE entry_id = $1 AND category_id = $2`

	if got := DialectPostgres.Rebind(query); got != query {
		t.Fatalf("expected postgres query unchanged, got %q", got)
	}
	want := `SELECT id FROM scores WHERE entry_id = ? AND category_id = ?`
	if got := DialectSQLite.Rebind(query); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestLockClause(t *testing.T) {
	if got := DialectPostgres.LockClause(); got != " FOR UPDATE" {
		t.Fatalf("expected FOR UPDATE, got %q", got)
	}
	if got := DialectSQLite.LockClause(); got != "" {
		t.Fatalf("expected no lock clause for sqlite, got %q", got)
	}
}

func TestParseDialect(t *testing.T) {
	for _, in := range []string{"postgres", " SQLite "} {
		if _, err := ParseDialect(in); err != nil {
			t.Fatalf("ParseDialect(%q): %v", in, err)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Fatalf("expected error for mysql")
	}
}

func TestClassifyPostgresConstraint(t *testing.T) {
	tests := []struct {
		err            error
		wantKind       constraintKind
		wantConstraint string
	}{
		{&pq.Error{Code: "23505", Constraint: "tournaments_name_key"}, constraintUnique, "tournaments_name_key"},
		{fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "entries_user_id_fkey"}), constraintForeignKey, "entries_user_id_fkey"},
		{&pq.Error{Code: "23502"}, constraintNone, ""},
		{errors.New("boom"), constraintNone, ""},
		{nil, constraintNone, ""},
	}
	for _, tt := range tests {
		kind, constraint := classifyConstraint(tt.err)
		if kind != tt.wantKind || constraint != tt.wantConstraint {
			t.Fatalf("classifyConstraint(%v): expected (%d, %q), got (%d, %q)", tt.err, tt.wantKind, tt.wantConstraint, kind, constraint)
		}
	}
}
