package db

import (
	"path/filepath"
	"testing"
)

func TestDriver(t *testing.T) {
	cases := map[string]string{
		"":                                 "sqlite",
		":memory:":                         "sqlite",
		"sqlite:///tmp/w.db":               "sqlite",
		"postgres://u:p@localhost:5432/ww": "postgres",
		"postgresql://localhost/ww":        "postgres",
		"mysql://localhost/ww":             "",
	}
	for dsn, want := range cases {
		if got := Driver(dsn); got != want {
			t.Errorf("Driver(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestOpenUnsupported(t *testing.T) {
	if _, err := Open("mysql://localhost/ww"); err == nil {
		t.Fatalf("expected error for mysql dsn")
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.ToSlash(filepath.Join(t.TempDir(), "w.db"))
	db, err := Open("sqlite:///" + path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
