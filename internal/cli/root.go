// Package cli implements the snowprofile command line.
package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/internal/constants"
	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/config"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// Context is shared by all subcommands. Config is loaded before any
// subcommand runs.
type Context struct {
	ConfigFile string
	Debug      bool
	Config     *config.ConfigData
}

// Command creates and returns the root command
func Command() *cobra.Command {
	ctx := &Context{}

	rootCmd := &cobra.Command{
		Use:           "snowprofile",
		Short:         "Read, write, validate and archive CAAML snow profiles",
		Version:       constants.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&ctx.ConfigFile, "config", "snowprofile.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&ctx.Debug, "debug", false, "Turn on debugging output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.initialize()
	}

	rootCmd.AddCommand(
		convertCommand(ctx),
		validateCommand(ctx),
		inspectCommand(ctx),
		jsonCommand(ctx),
		archiveCommand(ctx),
		serveCommand(ctx),
		versionCommand(),
	)

	return rootCmd
}

// initialize loads the configuration and sets up logging
func (c *Context) initialize() error {
	filename, _ := filepath.Abs(c.ConfigFile)
	cfg, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		return err
	}
	c.Config = cfg

	if err := log.Init(c.Debug || cfg.Debug); err != nil {
		return err
	}
	log.Debugw("configuration loaded", "file", filename)
	return nil
}

// application returns the producing application to stamp on written
// documents
func (c *Context) application() (string, string) {
	if c.Config.CAAML.Application != "" {
		return c.Config.CAAML.Application, c.Config.CAAML.ApplicationVersion
	}
	return snowprofile.DefaultApplication, constants.Version
}
