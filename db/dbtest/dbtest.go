// Package dbtest opens migrated sqlite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anandvarma/namegen"

	"github.com/Dosada05/tabletop-tournaments/db"
	"github.com/Dosada05/tabletop-tournaments/models"
	"github.com/Dosada05/tabletop-tournaments/repositories"
)

// Open returns a fresh database in the test's temp dir, migrated with the
// same migrations the service runs on startup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := db.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	if err := db.Migrate(repositories.DialectSQLite, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := db.Connect(repositories.DialectSQLite, dsn, 5*time.Second)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

var (
	names = namegen.NewWithPostfixId([]namegen.DictType{namegen.Adjectives, namegen.Animals}, namegen.Numeric, 4)
	seq   atomic.Int64
)

// Username returns a readable player name, unique within the test binary.
func Username() string {
	return fmt.Sprintf("%s_%d", names.Get(), seq.Add(1))
}

// SeedUsers inserts n users with the given role. Password hashes are not
// valid bcrypt; use the auth service when a login is needed.
func SeedUsers(t testing.TB, repo repositories.UserRepository, n int, role models.UserRole) []*models.User {
	t.Helper()

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		name := Username()
		u := &models.User{
			Username:     name,
			Email:        name + "@example.com",
			Role:         role,
			PasswordHash: "x",
		}
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		users = append(users, u)
	}
	return users
}
