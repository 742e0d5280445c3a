package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/core"
)

type listOptions struct {
	search     string
	tags       []string
	places     []string
	gender     string
	hasContact bool
	metFrom    string
	metTo      string
	sortBy     string
	sortOrder  string
	asJSON     bool
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func listCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := opts.filterSpec(cmd.Context())
			if err != nil {
				return err
			}
			list, err := service.ListContacts(cmd.Context(), owner, spec)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return renderContacts(cmd.OutOrStdout(), list)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.search, "search", "s", "", "case-insensitive match on name, occupation and where met")
	f.StringSliceVar(&opts.tags, "tag", nil, "tag name; repeat for any-of matching")
	f.StringSliceVar(&opts.places, "place", nil, "meeting place name; repeatable")
	f.StringVar(&opts.gender, "gender", "", "male or female")
	f.BoolVar(&opts.hasContact, "has-contact", false, "only contacts with a phone, telegram or instagram link")
	f.StringVar(&opts.metFrom, "met-from", "", "earliest meeting date (YYYY-MM-DD)")
	f.StringVar(&opts.metTo, "met-to", "", "latest meeting date (YYYY-MM-DD)")
	f.StringVar(&opts.sortBy, "sort-by", "", "name, createdAt, updatedAt, metAt, age, gender, height, occupation or meetingPlace")
	f.StringVar(&opts.sortOrder, "sort-order", "", "asc or desc")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// filterSpec validates the flags and resolves tag and place names to ids.
// Unknown names are an error rather than an empty result.
func (o listOptions) filterSpec(ctx context.Context) (core.FilterSpec, error) {
	spec := core.FilterSpec{
		Search:     o.search,
		HasContact: o.hasContact,
	}

	var err error
	if spec.Gender, err = core.ParseGender(o.gender); err != nil {
		return spec, err
	}
	if spec.SortBy, err = core.ParseSortField(o.sortBy); err != nil {
		return spec, err
	}
	if spec.SortOrder, err = core.ParseSortOrder(o.sortOrder); err != nil {
		return spec, err
	}
	if spec.MetAtFrom, err = flagDate("met-from", o.metFrom, false); err != nil {
		return spec, err
	}
	if spec.MetAtTo, err = flagDate("met-to", o.metTo, true); err != nil {
		return spec, err
	}
	if spec.TagIDs, err = resolveNames(ctx, core.KindTag, o.tags); err != nil {
		return spec, err
	}
	if spec.MeetingPlaceIDs, err = resolveNames(ctx, core.KindMeetingPlace, o.places); err != nil {
		return spec, err
	}
	return spec, nil
}

func flagDate(name, v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, ok := core.ParseDate(v)
	if !ok {
		return nil, fmt.Errorf("--%s: invalid date %q", name, v)
	}
	if endOfDay && len(strings.TrimSpace(v)) == len(time.DateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func resolveNames(ctx context.Context, kind core.EntityKind, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	all, err := service.ListNamed(ctx, owner, kind)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(all))
	for _, e := range all {
		byName[strings.ToLower(e.Name)] = e.ID
	}

	ids := make([]string, 0, len(names))
	for _, n := range names {
		id, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w", kind.Label(), n, core.ErrNotFound)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func renderContacts(w io.Writer, list core.ContactList) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TAGS", "MET", "MEETING PLACE", "ID").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, c := range list.Contacts {
		tags := make([]string, 0, len(c.Tags))
		for _, tg := range c.Tags {
			tags = append(tags, tg.Name)
		}
		place := ""
		if c.MeetingPlace != nil {
			place = c.MeetingPlace.Name
		}
		t.Row(c.Name, strings.Join(tags, ", "), c.MetAt.Format(time.DateOnly), place, c.ID)
	}

	_, err := fmt.Fprintf(w, "%s\n%d contact(s)\n", t.Render(), list.Total)
	return err
}
