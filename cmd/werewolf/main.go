package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	auditcmd "github.com/cuihairu/werewolf/internal/cli/auditcmd"
	common "github.com/cuihairu/werewolf/internal/cli/common"
	gamecmd "github.com/cuihairu/werewolf/internal/cli/gamecmd"
	rolescmd "github.com/cuihairu/werewolf/internal/cli/rolescmd"
)

func newRoot() *cobra.Command {
	cf := &common.Flags{}
	root := &cobra.Command{Use: "werewolf", Short: "Werewolf engine tools", SilenceUsage: true}
	cf.Register(root)

	root.AddCommand(rolescmd.New(cf))
	root.AddCommand(gamecmd.New(cf))
	root.AddCommand(auditcmd.New(cf))

	// completion
	comp := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unknown shell: %s", args[0])
		},
	}
	root.AddCommand(comp)

	cfg := &cobra.Command{Use: "config", Short: "Config tools"}
	cfg.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Validate the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cf.Config == "" {
				return fmt.Errorf("--config required")
			}
			v, err := cf.Load(cmd, nil)
			if err != nil {
				return err
			}
			if err := common.ValidateConfig(v, true); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config OK (db=%s storage=%s roles=%s)\n",
				common.RedactDSN(v.GetString("db.dsn")), v.GetString("storage.driver"), v.GetString("roles.file"))
			return nil
		},
	})
	root.AddCommand(cfg)
	return root
}

func main() {
	if err := newRoot().Execute(); err != nil {
		log.Fatal(err)
	}
}
