package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCommand(ctx *Context) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "validate [file]...",
		Short: "Check that profiles read and validate",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				f, err := formatOf(from, path)
				if err != nil {
					return err
				}
				sp, err := readDocument(path, f)
				if err == nil {
					err = sp.Validate()
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d profiles are invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Input format: caaml, json, msgpack")
	return cmd
}
