package cli

import (
	"github.com/spf13/cobra"
)

func convertCommand(ctx *Context) *cobra.Command {
	var from, to, version string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a profile between CAAML versions, JSON and MessagePack",
		Long: `Convert reads a snow profile and writes it again. Formats are taken from
the file extensions (.json, .msgpack, anything else is CAAML) unless
--from or --to are given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inFormat, err := formatOf(from, args[0])
			if err != nil {
				return err
			}
			outFormat, err := formatOf(to, args[1])
			if err != nil {
				return err
			}
			sp, err := readDocument(args[0], inFormat)
			if err != nil {
				return err
			}
			return ctx.writeDocument(args[1], sp, outFormat, ctx.caamlVersion(version))
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format: caaml, json, msgpack")
	cmd.Flags().StringVar(&to, "to", "", "Output format: caaml, json, msgpack")
	cmd.Flags().StringVar(&version, "caaml-version", "", "CAAML version to write: 6.0.5 or 6.0.6")

	return cmd
}
