package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/internal/archive"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// archiveFlags override the archive section of the configuration
type archiveFlags struct {
	driver string
	dsn    string
}

func (f *archiveFlags) open(ctx *Context) (*archive.Store, error) {
	driver, dsn := ctx.Config.Archive.Driver, ctx.Config.Archive.DSN
	if f.driver != "" {
		driver = f.driver
	}
	if f.dsn != "" {
		dsn = f.dsn
	}
	return archive.Open(driver, dsn)
}

// withStore runs fn with an open archive and closes it afterwards
func (f *archiveFlags) withStore(ctx *Context, fn func(*archive.Store) error) error {
	store, err := f.open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func archiveCommand(ctx *Context) *cobra.Command {
	flags := &archiveFlags{}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and retrieve profiles in the archive database",
	}
	cmd.PersistentFlags().StringVar(&flags.driver, "driver", "", "Archive driver: sqlite or postgres (overrides the configuration)")
	cmd.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "Archive data source (overrides the configuration)")

	cmd.AddCommand(
		archiveAddCommand(ctx, flags),
		archiveListCommand(ctx, flags),
		archiveGetCommand(ctx, flags),
		archiveExportCommand(ctx, flags),
		archiveDeleteCommand(ctx, flags),
	)
	return cmd
}

func archiveAddCommand(ctx *Context, flags *archiveFlags) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "add [file]...",
		Short: "Add profiles to the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withStore(ctx, func(store *archive.Store) error {
				for _, path := range args {
					f, err := formatOf(from, path)
					if err != nil {
						return err
					}
					sp, err := readDocument(path, f)
					if err != nil {
						return err
					}
					rec, err := store.Save(cmd.Context(), sp, filepath.Base(path))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rec.ID, path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Input format: caaml, json, msgpack")
	return cmd
}

func archiveListCommand(ctx *Context, flags *archiveFlags) *cobra.Command {
	var filter archive.Filter
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived profiles, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if filter.From, err = parseTime("from", from); err != nil {
				return err
			}
			if filter.To, err = parseTime("to", to); err != nil {
				return err
			}
			return flags.withStore(ctx, func(store *archive.Store) error {
				recs, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTIME\tLOCATION\tPROFILE\tLAYERS")
				for _, r := range recs {
					when := "-"
					if r.RecordTime != nil {
						when = r.RecordTime.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, when, r.LocationName, r.ProfileID, r.Layers)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.Location, "location", "", "Only list locations whose name contains this text")
	cmd.Flags().StringVar(&from, "from", "", "Only list profiles observed at or after this RFC 3339 time")
	cmd.Flags().StringVar(&to, "to", "", "Only list profiles observed at or before this RFC 3339 time")
	cmd.Flags().IntVar(&filter.Limit, "limit", archive.DefaultLimit, "Maximum number of profiles to list")
	return cmd
}

func parseTime(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

func archiveGetCommand(ctx *Context, flags *archiveFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Print an archived profile as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withStore(ctx, func(store *archive.Store) error {
				sp, _, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				b, err := snowprofile.ToJSON(sp)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			})
		},
	}
}

func archiveExportCommand(ctx *Context, flags *archiveFlags) *cobra.Command {
	var to, version string
	cmd := &cobra.Command{
		Use:   "export [id] [output]",
		Short: "Write an archived profile to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatOf(to, args[1])
			if err != nil {
				return err
			}
			return flags.withStore(ctx, func(store *archive.Store) error {
				sp, _, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return ctx.writeDocument(args[1], sp, f, ctx.caamlVersion(version))
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output format: caaml, json, msgpack")
	cmd.Flags().StringVar(&version, "caaml-version", "", "CAAML version to write: 6.0.5 or 6.0.6")
	return cmd
}

func archiveDeleteCommand(ctx *Context, flags *archiveFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]...",
		Short: "Remove profiles from the archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withStore(ctx, func(store *archive.Store) error {
				for _, id := range args {
					if err := store.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
				}
				return nil
			})
		},
	}
}
