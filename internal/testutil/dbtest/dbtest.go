// Package dbtest opens migrated SQLite databases for repository and use case
// tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"merry/internal/domain/chama"
	"merry/internal/infrastructure/db"
	"merry/pkg/id"
)

// Open returns an in-memory database holding every merry table. The pool is
// capped at one connection so all callers see the same memory database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, ":memory:")
}

// OpenFile is Open backed by a temp file, for tests that run transactions
// from several goroutines.
func OpenFile(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "merry.db")+"?_busy_timeout=5000")
}

func open(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

// SeedChama inserts a chama of type typ with n active members, the first of
// them an admin.
func SeedChama(t *testing.T, gdb *gorm.DB, typ chama.Type, n int) (*chama.Chama, []chama.Member) {
	t.Helper()
	c := &chama.Chama{
		ID:                  id.NewID32(),
		Name:                "Umoja Group",
		Type:                typ,
		DefaultInterestRate: decimal.NewFromInt(10),
	}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("seed chama: %v", err)
	}
	members := make([]chama.Member, n)
	for i := range members {
		members[i] = chama.Member{
			ID:          id.NewID32(),
			ChamaID:     c.ID,
			UserID:      id.NewID32(),
			DisplayName: fmt.Sprintf("Member %d", i+1),
			Phone:       fmt.Sprintf("07120000%02d", i+1),
			Role:        chama.RoleMember,
			Status:      chama.MemberActive,
		}
	}
	if n > 0 {
		members[0].Role = chama.RoleAdmin
		if err := gdb.Create(&members).Error; err != nil {
			t.Fatalf("seed members: %v", err)
		}
	}
	return c, members
}

// MemberIDs returns the ids of ms in order.
func MemberIDs(ms []chama.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
