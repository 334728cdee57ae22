package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrissnell/snowprofile/internal/constants"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "snowprofile %s\n", constants.Version)
			return err
		},
	}
}
