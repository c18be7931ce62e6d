package common

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags are the config flags shared by every subcommand.
type Flags struct {
	Config   string
	Includes []string
	Section  string
	Profile  string
}

// Register adds the flags as persistent flags of root.
func (f *Flags) Register(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&f.Config, "config", "", "config file path")
	pf.StringSliceVar(&f.Includes, "include", nil, "additional config files merged in order")
	pf.StringVar(&f.Section, "section", "", "config section, e.g. werewolf")
	pf.StringVar(&f.Profile, "profile", "", "profile under <section>.profiles")
}

// Load builds the viper for cmd. binds maps setting keys to local flag names;
// only flags the user set override file and env values.
func (f *Flags) Load(cmd *cobra.Command, binds map[string]string) (*viper.Viper, error) {
	v, err := Load(f.Config, f.Includes, f.Section, f.Profile, nil)
	if err != nil {
		return nil, err
	}
	for key, name := range binds {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, err
			}
		}
	}
	return v, nil
}
