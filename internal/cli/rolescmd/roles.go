package rolescmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	common "github.com/cuihairu/werewolf/internal/cli/common"
	"github.com/cuihairu/werewolf/internal/game/role"
)

// New returns the `werewolf roles` command.
func New(cf *common.Flags) *cobra.Command {
	cmd := &cobra.Command{Use: "roles", Short: "Inspect the role catalog and custom role files"}
	cmd.AddCommand(newList(cf), newValidate())
	return cmd
}

func newList(cf *common.Flags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List predefined roles plus the custom roles of roles.file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := cf.Load(cmd, map[string]string{"roles.file": "roles"})
			if err != nil {
				return err
			}
			lib := role.NewLibrary(role.DefaultCatalog(), nil)
			if p := v.GetString("roles.file"); p != "" {
				if err := lib.LoadFile(p); err != nil {
					return err
				}
			}
			reg, err := lib.Registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reg.Roles())
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCAMP\tACTIONS\tCUSTOM")
			for _, r := range reg.Roles() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", r.Name, r.Camp, strings.Join(r.Actions, ","), r.Custom)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("roles", "", "custom roles file (overrides roles.file)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newValidate() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a custom roles file against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := role.NewLibrary(role.DefaultCatalog(), nil)
			if err := lib.LoadFile(args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, w := range lib.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "%s: %d custom role(s) OK\n", args[0], len(lib.Definitions()))
			return nil
		},
	}
}
