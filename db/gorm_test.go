package db

import (
	"strings"
	"testing"

	"crateaudit/config"
	"crateaudit/model"

	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenMigratesModels(t *testing.T) {
	gdb, err := Open(sqlite.Open("file::memory:"), gormlogger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, m := range []interface{}{&model.User{}, &model.Library{}} {
		if !gdb.Migrator().HasTable(m) {
			t.Errorf("table for %T was not created", m)
		}
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := Dialector(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	d, err := Dialector(&config.Config{DBDriver: "sqlite", SQLitePath: "x.db"})
	if err != nil || d.Name() != "sqlite" {
		t.Errorf("sqlite dialector = %v, %v", d, err)
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(&config.Config{
		DBUser: "dj", DBPassword: "pw", DBHost: "db.local", DBPort: "3307", DBName: "crates",
	})
	for _, part := range []string{"dj:pw@tcp(db.local:3307)/crates?", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q does not contain %q", dsn, part)
		}
	}
}
