package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/core"
)

func tagsCmd() *cobra.Command {
	var (
		places bool
		create string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags, or meeting places with --places",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := core.KindTag
			if places {
				kind = core.KindMeetingPlace
			}

			if create != "" {
				e, err := service.CreateNamed(cmd.Context(), owner, kind, create)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (%s)\n", kind.Label(), e.Name, e.ID)
				return nil
			}

			list, err := service.ListNamed(cmd.Context(), owner, kind)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			for _, e := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.ID, e.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&places, "places", false, "operate on meeting places instead of tags")
	cmd.Flags().StringVar(&create, "create", "", "create an entry with this name instead of listing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
