package common

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewLoggerCounts(t *testing.T) {
	var buf bytes.Buffer
	before := GetLogCounters()
	l := NewLogger(&buf, "warn", "json")
	l.Info("dropped")
	l.Warn("kept", "game_id", "g1")
	l.With("k", "v").Error("kept too")
	after := GetLogCounters()
	if after["warn"]-before["warn"] != 1 || after["error"]-before["error"] != 1 {
		t.Fatalf("counters before=%v after=%v", before, after)
	}
	if after["info"] != before["info"] {
		t.Fatalf("disabled level should not be counted")
	}
	if !strings.Contains(buf.String(), `"game_id":"g1"`) || strings.Contains(buf.String(), "dropped") {
		t.Fatalf("output = %s", buf.String())
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("ParseLevel")
	}
}

func TestLoadSectionProfileAndIncludes(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "werewolf.yaml", `
werewolf:
  db:
    dsn: data/a.db
  log:
    level: info
  profiles:
    prod:
      db:
        dsn: postgres://u:p@db:5432/ww
      log:
        format: json
`)
	inc := writeFile(t, dir, "extra.yaml", `
werewolf:
  roles:
    file: roles.yaml
`)
	flags := pflag.NewFlagSet("t", pflag.ContinueOnError)
	flags.String("log.level", "info", "")
	_ = flags.Parse([]string{"--log.level=debug"})

	v, err := Load(base, []string{inc}, "werewolf", "prod", flags)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.GetString("db.dsn"); got != "postgres://u:p@db:5432/ww" {
		t.Fatalf("db.dsn = %s", got)
	}
	if v.GetString("log.format") != "json" || v.GetString("roles.file") != "roles.yaml" {
		t.Fatalf("profile/include not applied: %v", v.AllSettings())
	}
	if v.GetString("log.level") != "debug" {
		t.Fatalf("flag should win, got %s", v.GetString("log.level"))
	}
	if v.IsSet("profiles") {
		t.Fatalf("profiles should not leak into the effective config")
	}
	if v.GetString("audit.path") != "logs/audit.log" {
		t.Fatalf("defaults missing")
	}

	if _, err := Load(base, nil, "missing", "", nil); err == nil {
		t.Fatalf("unknown section should fail")
	}
	if _, err := Load(base, nil, "werewolf", "staging", nil); err == nil {
		t.Fatalf("unknown profile should fail")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WEREWOLF_DB_DSN", "sqlite:///tmp/env.db")
	v, err := Load("", nil, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.GetString("db.dsn") != "sqlite:///tmp/env.db" {
		t.Fatalf("db.dsn = %s", v.GetString("db.dsn"))
	}
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	roles := writeFile(t, dir, "roles.yaml", `
roles:
  - name: 守墓人
    camp: GOD
    actions:
      - id: gravekeeper.inspect
        priority: 310
        timing: NIGHT
        effect: check
        target_alive: false
`)
	v, _ := Load("", nil, "", "", nil)
	v.Set("storage.base_dir", filepath.Join(dir, "archive"))
	if err := ValidateConfig(v, false); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := ValidateConfig(v, true); err == nil {
		t.Fatalf("strict requires roles.file")
	}
	v.Set("roles.file", roles)
	if err := ValidateConfig(v, true); err != nil {
		t.Fatalf("strict: %v", err)
	}

	bad := []struct{ key, val string }{
		{"log.level", "loud"},
		{"log.format", "xml"},
		{"db.dsn", "mysql://localhost/ww"},
		{"storage.driver", "ftp"},
		{"roles.file", filepath.Join(dir, "nope.yaml")},
	}
	for _, b := range bad {
		v2, _ := Load("", nil, "", "", nil)
		v2.Set("storage.base_dir", filepath.Join(dir, "archive"))
		v2.Set(b.key, b.val)
		if err := ValidateConfig(v2, false); err == nil {
			t.Errorf("%s=%s should fail", b.key, b.val)
		}
	}
}

func TestRedactDSN(t *testing.T) {
	cases := map[string]string{
		"data/werewolf.db":               "data/werewolf.db",
		"postgres://u:secret@db:5432/ww": "postgres://u:xxxxx@db:5432/ww",
		"postgres://db:5432/ww":          "postgres://db:5432/ww",
	}
	for in, want := range cases {
		if got := RedactDSN(in); got != want {
			t.Errorf("RedactDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
