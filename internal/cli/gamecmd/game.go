// Package gamecmd inspects persisted and archived games.
package gamecmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	common "github.com/cuihairu/werewolf/internal/cli/common"
	"github.com/cuihairu/werewolf/internal/db"
	"github.com/cuihairu/werewolf/internal/game"
	"github.com/cuihairu/werewolf/internal/objstore"
	"github.com/cuihairu/werewolf/internal/repo/gorm/snapshots"
)

// New returns the `werewolf game` command.
func New(cf *common.Flags) *cobra.Command {
	cmd := &cobra.Command{Use: "game", Short: "Inspect game snapshots and archives"}
	cmd.PersistentFlags().String("dsn", "", "snapshot database DSN (overrides db.dsn)")
	cmd.AddCommand(newList(cf), newShow(cf), newArchived(cf))
	return cmd
}

func openRepo(cf *common.Flags, cmd *cobra.Command) (*snapshots.Repo, error) {
	v, err := cf.Load(cmd, map[string]string{"db.dsn": "dsn"})
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(v.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return snapshots.NewRepo(gdb), nil
}

func newList(cf *common.Flags) *cobra.Command {
	var ended, running bool
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cf, cmd)
			if err != nil {
				return err
			}
			f := snapshots.Filter{Limit: limit}
			switch {
			case ended && running:
				return fmt.Errorf("--ended and --running are exclusive")
			case ended:
				f.Ended = &ended
			case running:
				no := false
				f.Ended = &no
			}
			rows, err := repo.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPHASE\tDAY\tVERSION\tWINNER\tUPDATED")
			for _, s := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", s.ID, s.Phase, s.Day, s.Version, dash(s.Winner), s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&ended, "ended", false, "only ended games")
	cmd.Flags().BoolVar(&running, "running", false, "only running games")
	cmd.Flags().IntVar(&limit, "limit", 50, "max rows")
	return cmd
}

func newShow(cf *common.Flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <game-id>",
		Short: "Print the stored snapshot of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo(cf, cmd)
			if err != nil {
				return err
			}
			g, err := repo.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			return render(cmd.OutOrStdout(), g, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full JSON document")
	return cmd
}

func newArchived(cf *common.Flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "archived <key>",
		Short: "Print an archived game from object storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cf.Load(cmd, nil)
			if err != nil {
				return err
			}
			sc := common.StorageConfig(v)
			bs, err := objstore.Open(cmd.Context(), sc)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer bs.Close()
			g, err := objstore.NewArchive(bs, sc.Prefix).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), g, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full JSON document")
	return cmd
}

func render(w io.Writer, g *game.Game, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}
	fmt.Fprintf(w, "game %s  phase=%s day=%d version=%d\n", g.ID, g.Phase, g.Day, g.Version)
	if g.Ended {
		fmt.Fprintf(w, "ended, winner %s\n", dash(string(g.Winner)))
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEAT\tIDENTITY\tROLES\tDEAD\tFLAGS")
	for _, p := range g.Players {
		var flags []string
		if p.Sheriff {
			flags = append(flags, "sheriff")
		}
		if !p.Alive() {
			flags = append(flags, "out")
		}
		if p.Lover != 0 {
			flags = append(flags, fmt.Sprintf("lover=%d", p.Lover))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.Seat, dash(p.Identity), dash(strings.Join(p.Roles, ",")),
			dash(strings.Join(p.DeadRoles, ",")), strings.Join(flags, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(g.Log) > 0 {
		fmt.Fprintln(w, "log:")
		for _, l := range g.Log {
			fmt.Fprintf(w, "  #%d day%d %s %s\n", l.Seq, l.Day, l.Phase, l.Text)
		}
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
