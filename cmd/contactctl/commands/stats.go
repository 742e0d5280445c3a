package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/core"
)

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show contact, tag, meeting place and note totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := service.Stats(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
				Row("Contacts", fmt.Sprint(stats.TotalContacts)).
				Row(fmt.Sprintf("Added in last %d days", int(core.RecentWindow.Hours()/24)), fmt.Sprint(stats.RecentContacts)).
				Row("Tags", fmt.Sprint(stats.TotalTags)).
				Row("Meeting places", fmt.Sprint(stats.TotalMeetingPlaces)).
				Row("Notes", fmt.Sprint(stats.TotalNotes))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
