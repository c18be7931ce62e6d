package common

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix for every CLI setting: db.dsn -> WEREWOLF_DB_DSN.
const EnvPrefix = "WEREWOLF"

// Defaults of the CLI settings.
func Defaults(v *viper.Viper) {
	v.SetDefault("db.dsn", "data/werewolf.db")
	v.SetDefault("roles.file", "")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.base_dir", "data/archive")
	v.SetDefault("storage.prefix", "games")
	v.SetDefault("audit.path", "logs/audit.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
}

// Load builds the CLI viper: defaults, config file with includes, section and
// profile, env and flags, lowest precedence first.
func Load(file string, includes []string, section, profile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v, err := LoadWithIncludes(file, includes)
	if err != nil {
		return nil, err
	}
	if section != "" || profile != "" {
		if v, err = ApplySectionAndProfile(v, section, profile); err != nil {
			return nil, err
		}
	}
	Defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// LoadWithIncludes reads base config and merges includes in order.
func LoadWithIncludes(base string, includes []string) (*viper.Viper, error) {
	v := viper.New()
	if base != "" {
		v.SetConfigFile(base)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	for _, inc := range includes {
		iv := viper.New()
		iv.SetConfigFile(inc)
		if err := iv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
		if err := v.MergeConfigMap(iv.AllSettings()); err != nil {
			return nil, fmt.Errorf("include %s: %w", inc, err)
		}
	}
	return v, nil
}

// mergeMaps recursively merges b into a.
func mergeMaps(a, b map[string]any) map[string]any {
	for k, vb := range b {
		if ma, ok := a[k].(map[string]any); ok {
			if mb, ok2 := vb.(map[string]any); ok2 {
				a[k] = mergeMaps(ma, mb)
				continue
			}
		}
		a[k] = vb
	}
	return a
}

// ApplySectionAndProfile extracts a section and overlays profiles.<name>.
func ApplySectionAndProfile(v *viper.Viper, section, profile string) (*viper.Viper, error) {
	if section != "" {
		sub := v.Sub(section)
		if sub == nil {
			return nil, fmt.Errorf("section %s not found", section)
		}
		v = sub
	}
	if profile != "" {
		prof := v.Sub("profiles")
		if prof == nil {
			return nil, fmt.Errorf("profiles not found in section")
		}
		p := prof.Sub(profile)
		if p == nil {
			return nil, fmt.Errorf("profile %s not found", profile)
		}
		base := v.AllSettings()
		delete(base, "profiles")
		nv := viper.New()
		if err := nv.MergeConfigMap(mergeMaps(base, p.AllSettings())); err != nil {
			return nil, err
		}
		v = nv
	}
	return v, nil
}
