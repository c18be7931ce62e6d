package chain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChainAppendAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "werewolf.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	for i, kind := range []string{"action", "death", "narration"} {
		if err := w.Record(ctx, kind, "g1", map[string]int{"seq": i}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	w.Close()

	// reopening continues the same chain
	w, err = NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Record(ctx, "narration", "g1", "天亮了"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	n, err := Verify(path)
	if err != nil || n != 4 {
		t.Fatalf("verify = %d, %v", n, err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Record(context.Background(), "action", "g1", map[string]any{"actor": 1, "targets": []int{3}})
	_ = w.Record(context.Background(), "death", "g1", map[string]any{"seat": 3})
	w.Close()

	b, _ := os.ReadFile(path)
	tampered := strings.Replace(string(b), `"seat":3`, `"seat":4`, 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(path); err == nil {
		t.Fatalf("tampered log should fail verification")
	}
}
