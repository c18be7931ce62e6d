package auditcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuihairu/werewolf/internal/audit/chain"
	common "github.com/cuihairu/werewolf/internal/cli/common"
)

// New returns the `werewolf audit` command.
func New(cf *common.Flags) *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Audit log tools"}
	verify := &cobra.Command{
		Use:   "verify [path]",
		Short: "Verify the hash chain of an audit log (default audit.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cf.Load(cmd, nil)
			if err != nil {
				return err
			}
			p := v.GetString("audit.path")
			if len(args) == 1 {
				p = args[0]
			}
			n, err := chain.Verify(p)
			if err != nil {
				return fmt.Errorf("%s: chain broken after %d event(s): %w", p, n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d event(s) verified\n", p, n)
			return nil
		},
	}
	cmd.AddCommand(verify)
	return cmd
}
