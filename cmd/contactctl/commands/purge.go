package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// purgeTimeout bounds the delete so a stuck database doesn't hang the CLI.
const purgeTimeout = 30 * time.Second

func purgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge --yes",
		Short: "Delete every contact owned by --owner",
		Long: `Purge removes all contacts for --owner together with their notes,
tag links and social links. Tags and meeting places are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to purge without --yes")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), purgeTimeout)
			defer cancel()

			n, err := service.DeleteAllContacts(ctx, owner)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d contact(s)\n", n)
			return err
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the delete")
	return cmd
}
