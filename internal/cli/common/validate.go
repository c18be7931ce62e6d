package common

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/cuihairu/werewolf/internal/db"
	"github.com/cuihairu/werewolf/internal/game/role"
	"github.com/cuihairu/werewolf/internal/objstore"
)

func fileExists(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

// StorageConfig reads storage.* into an objstore config.
func StorageConfig(v *viper.Viper) objstore.Config {
	return objstore.Config{
		Driver:         v.GetString("storage.driver"),
		Bucket:         v.GetString("storage.bucket"),
		Region:         v.GetString("storage.region"),
		Endpoint:       v.GetString("storage.endpoint"),
		AccessKey:      v.GetString("storage.access_key"),
		SecretKey:      v.GetString("storage.secret_key"),
		ForcePathStyle: v.GetBool("storage.force_path_style"),
		BaseDir:        v.GetString("storage.base_dir"),
		Prefix:         v.GetString("storage.prefix"),
		SignedURLTTL:   v.GetDuration("storage.signed_url_ttl"),
	}
}

// ValidateConfig checks the CLI settings. strict also requires the roles
// file to exist and parse.
func ValidateConfig(v *viper.Viper, strict bool) error {
	switch strings.ToLower(v.GetString("log.level")) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", v.GetString("log.level"))
	}
	switch strings.ToLower(v.GetString("log.format")) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", v.GetString("log.format"))
	}
	if db.Driver(v.GetString("db.dsn")) == "" {
		return fmt.Errorf("db.dsn: unsupported scheme in %q", v.GetString("db.dsn"))
	}
	if err := objstore.Validate(StorageConfig(v)); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	p := v.GetString("roles.file")
	if p == "" {
		if strict {
			return fmt.Errorf("roles.file missing")
		}
		return nil
	}
	if err := fileExists(p); err != nil {
		return fmt.Errorf("roles.file: %w", err)
	}
	if strict {
		lib := role.NewLibrary(role.DefaultCatalog(), nil)
		if err := lib.LoadFile(p); err != nil {
			return fmt.Errorf("roles.file: %w", err)
		}
	}
	return nil
}

// RedactDSN hides the password of a URL style DSN.
func RedactDSN(dsn string) string {
	if !strings.Contains(dsn, "://") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "<invalid dsn>"
	}
	return u.Redacted()
}
