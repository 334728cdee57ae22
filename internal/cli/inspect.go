package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

func inspectCommand(ctx *Context) *cobra.Command {
	var from string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print a summary of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatOf(from, args[0])
			if err != nil {
				return err
			}
			sp, err := readDocument(args[0], f)
			if err != nil {
				return err
			}
			sum := snowprofile.Summarize(sp)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			return printSummary(cmd.OutOrStdout(), sum)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format: caaml, json, msgpack")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, s snowprofile.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", name, value)
		}
	}
	num := func(v *float64, unit string) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%.3g %s", *v, unit)
	}

	row("id", s.ID)
	row("location", s.LocationName)
	if s.RecordTime != nil {
		row("time", *s.RecordTime)
	}
	row("depth", num(s.ProfileDepth, "m"))
	row("layers", fmt.Sprint(s.Layers))
	row("profiles", fmt.Sprint(s.Profiles))
	row("kinds", strings.Join(s.Kinds, ", "))
	row("swe", num(s.SWE, "kg/m2"))
	row("mean density", num(s.MeanDensity, "kg/m3"))
	row("min temperature", num(s.MinSnowTemp, "degC"))
	row("temperature gradient", num(s.TempGradient, "degC/m"))
	return tw.Flush()
}
