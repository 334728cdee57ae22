package config

import (
	"fmt"

	"github.com/chrissnell/snowprofile/pkg/caaml"
)

// Validate checks the settings that can be checked without opening
// anything.
func (c *ConfigData) Validate() error {
	if _, err := caaml.ParseVersion(c.CAAML.DefaultVersion); err != nil {
		return fmt.Errorf("caaml.default-version: %w", err)
	}

	switch c.Archive.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("archive.driver must be sqlite or postgres, got %q", c.Archive.Driver)
	}
	if c.Archive.DSN == "" {
		return fmt.Errorf("archive.dsn is required for the %s driver", c.Archive.Driver)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server.cert and server.key must be set together")
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max-body-bytes must be positive")
	}
	return nil
}
