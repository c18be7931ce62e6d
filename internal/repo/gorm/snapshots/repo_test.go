package snapshots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/ports"
)

// newTestDB returns a sqlite in-memory DB.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))

	if _, err := repo.Load(ctx, "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	g := game.New("g1", 4, time.Now().UTC())
	g.Players[0].Roles = []string{"狼人", "平民"}
	g.Players[0].DeadRoles = []string{"狼人"}
	g.Data.SetFlag(game.TriggerKey("hunter.revenge", 2), 1)
	g.Version = 1
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}
	g.Version = 2
	g.Phase = game.PhaseNight
	g.Day = 1
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	got, err := repo.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 2 || got.Phase != game.PhaseNight || got.Day != 1 {
		t.Fatalf("unexpected header %s v%d day %d", got.Phase, got.Version, got.Day)
	}
	p, _ := got.Player(1)
	if !p.Alive() || p.ActiveRole() != "平民" {
		t.Fatalf("double identity lost: %+v", p)
	}
	if _, ok := got.Data.Flag(game.TriggerKey("hunter.revenge", 2)); !ok {
		t.Fatalf("flags lost")
	}

	if err := repo.Delete(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "g1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSaveKeepsNewerVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))
	g := game.New("g2", 3, time.Now().UTC())
	g.Version = 5
	g.Phase = game.PhaseDay
	if err := repo.Save(ctx, g); err != nil {
		t.Fatal(err)
	}
	old := g.Clone()
	old.Version = 4
	old.Phase = game.PhaseNight
	if err := repo.Save(ctx, old); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load(ctx, "g2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 5 || got.Phase != game.PhaseDay {
		t.Fatalf("stale save overwrote snapshot: %s v%d", got.Phase, got.Version)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(newTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		g := game.New(id, 3, base)
		g.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		g.Version = 1
		g.Ended = id == "b"
		if err := repo.Save(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "c" {
		t.Fatalf("unexpected order: %d first=%s", len(all), all[0].ID)
	}
	ended := true
	done, err := repo.List(ctx, Filter{Ended: &ended, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0].ID != "b" {
		t.Fatalf("ended filter: %+v", done)
	}
}
