package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/codec"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// formatOf returns the format named by flag, or the one implied by the file
// extension when flag is empty
func formatOf(flag, path string) (codec.Format, error) {
	if flag == "" {
		return codec.FormatFromPath(path), nil
	}
	return codec.ParseFormat(flag)
}

// readDocument reads an observation from path
func readDocument(path string, f codec.Format) (*snowprofile.SnowProfile, error) {
	if f == codec.CAAML {
		return caaml.Read(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sp, err := codec.Decode(file, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sp, nil
}

// writeDocument writes sp to path, stamping the producing application when
// the document does not name another one
func (c *Context) writeDocument(path string, sp *snowprofile.SnowProfile, f codec.Format, version string) error {
	if sp.Application == "" || sp.Application == snowprofile.DefaultApplication {
		sp.Application, sp.ApplicationVersion = c.application()
	}
	if f == codec.CAAML {
		return caaml.Write(sp, path, version)
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, sp, f, caaml.DefaultVersion); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	log.Infow("wrote profile", "path", path, "format", f)
	return nil
}

// caamlVersion returns the version flag, falling back to the configured
// default
func (c *Context) caamlVersion(flag string) string {
	if flag != "" {
		return flag
	}
	return c.Config.CAAML.DefaultVersion
}
