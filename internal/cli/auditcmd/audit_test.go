package auditcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/cuihairu/werewolf/internal/audit/chain"
	common "github.com/cuihairu/werewolf/internal/cli/common"
)

func TestVerify(t *testing.T) {
	p := filepath.Join(t.TempDir(), "audit.log")
	w, err := chain.NewWriter(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"天黑请闭眼", "天亮了"} {
		if err := w.Record(context.Background(), "narration", "g1", map[string]string{"text": text}); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	run := func(args ...string) (string, error) {
		cf := &common.Flags{}
		root := &cobra.Command{Use: "werewolf", SilenceUsage: true, SilenceErrors: true}
		cf.Register(root)
		root.AddCommand(New(cf))
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}
	out, err := run("audit", "verify", p)
	if err != nil || !strings.Contains(out, "2 event(s) verified") {
		t.Fatalf("verify: %v %s", err, out)
	}

	b, _ := os.ReadFile(p)
	if err := os.WriteFile(p, bytes.Replace(b, []byte("天亮了"), []byte("天黑了"), 1), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run("audit", "verify", p); err == nil {
		t.Fatalf("tampered log should fail")
	}
}
