package cli

import (
	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/internal/app"
	"github.com/chrissnell/snowprofile/pkg/config"
)

// staticProvider serves an already loaded configuration
type staticProvider struct {
	cfg *config.ConfigData
}

func (p staticProvider) LoadConfig() (*config.ConfigData, error) { return p.cfg, nil }
func (p staticProvider) GetCAAMLConfig() (*config.CAAMLData, error) { return &p.cfg.CAAML, nil }
func (p staticProvider) GetArchiveConfig() (*config.ArchiveData, error) { return &p.cfg.Archive, nil }
func (p staticProvider) GetServerConfig() (*config.ServerData, error) { return &p.cfg.Server, nil }
func (p staticProvider) IsReadOnly() bool { return true }
func (p staticProvider) Close() error { return nil }

func serveCommand(ctx *Context) *cobra.Command {
	flags := &archiveFlags{}
	var listenAddr string
	var port int
	var metrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion and archive service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *ctx.Config
			if flags.driver != "" {
				cfg.Archive.Driver = flags.driver
			}
			if flags.dsn != "" {
				cfg.Archive.DSN = flags.dsn
			}
			if listenAddr != "" {
				cfg.Server.ListenAddr = listenAddr
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Server.EnableMetrics = metrics
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return app.New(staticProvider{cfg: &cfg}).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flags.driver, "driver", "", "Archive driver: sqlite or postgres (overrides the configuration)")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "Archive data source (overrides the configuration)")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", "", "Address to listen on (overrides the configuration)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (overrides the configuration)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Serve Prometheus metrics on /metrics")
	return cmd
}
