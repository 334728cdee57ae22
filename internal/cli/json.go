package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

func jsonCommand(ctx *Context) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "json [file]",
		Short: "Print a profile as JSON",
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
			b, err := snowprofile.ToJSON(sp)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format: caaml, json, msgpack")
	return cmd
}
