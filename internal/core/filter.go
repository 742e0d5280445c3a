package core

import (
	"fmt"
	"strings"
	"time"
)

// SortField names a contact attribute usable for ordering.
type SortField string

const (
	SortName         SortField = "name"
	SortCreatedAt    SortField = "createdAt"
	SortUpdatedAt    SortField = "updatedAt"
	SortMetAt        SortField = "metAt"
	SortAge          SortField = "age"
	SortGender       SortField = "gender"
	SortHeight       SortField = "height"
	SortOccupation   SortField = "occupation"
	SortMeetingPlace SortField = "meetingPlace"
)

// SortOrder is the ordering direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// sortColumns maps sortable fields to contact columns. SortMeetingPlace is
// handled separately because it orders by the referenced name.
var sortColumns = map[SortField]string{
	SortName:       "c.name",
	SortCreatedAt:  "c.created_at",
	SortUpdatedAt:  "c.updated_at",
	SortMetAt:      "c.met_at",
	SortAge:        "c.age",
	SortGender:     "c.gender",
	SortHeight:     "c.height",
	SortOccupation: "c.occupation",
}

// searchColumns are matched by FilterSpec.Search.
var searchColumns = []string{"c.name", "c.occupation", "c.where_met"}

// FilterSpec describes which contacts to list and in what order.
// Zero values mean "no constraint".
type FilterSpec struct {
	Search          string
	TagIDs          []string
	MeetingPlaceIDs []string
	Gender          string
	HasContact      bool
	MetAtFrom       *time.Time
	MetAtTo         *time.Time
	SortBy          SortField
	SortOrder       SortOrder
}

// Query is a compiled FilterSpec. Render it with SQL.
type Query struct {
	Joins   string
	Where   string
	Args    []any
	OrderBy string
}

// SQL renders the full statement selecting cols from contacts aliased as c.
// The result is already in the dialect's placeholder form.
func (q Query) SQL(cols string) string {
	return "SELECT " + cols + " FROM contacts c" + q.Joins + q.Where + " ORDER BY " + q.OrderBy
}

// CompileFilter translates spec into an owner-scoped query. It has no side
// effects and returns ErrInvalidFilter for unknown sort fields or orders.
func CompileFilter(d Dialect, ownerID string, spec FilterSpec) (Query, error) {
	wb := NewWhereBuilder(d)
	wb.Where("c.owner_id = " + wb.Arg(ownerID))

	wb.AddSearch(strings.TrimSpace(spec.Search), searchColumns...)

	if len(spec.TagIDs) > 0 {
		wb.Where("EXISTS (SELECT 1 FROM contact_tags ct WHERE ct.contact_id = c.id AND ct.tag_id IN (" +
			wb.argList(spec.TagIDs) + "))")
	}

	wb.AddIn("c.meeting_place_id", spec.MeetingPlaceIDs)
	wb.Add("c.gender", spec.Gender)

	if spec.HasContact {
		wb.Where("EXISTS (SELECT 1 FROM contact_links cl WHERE cl.contact_id = c.id AND cl.type IN (" +
			wb.argList(ContactLinkTypes) + "))")
	}

	var from, to any
	if spec.MetAtFrom != nil {
		from = d.TimeArg(*spec.MetAtFrom)
	}
	if spec.MetAtTo != nil {
		to = d.TimeArg(*spec.MetAtTo)
	}
	wb.AddTimestampRange("c.met_at", from, to)

	q := Query{}
	q.Where, q.Args = wb.Build()

	if spec.SortBy == "" {
		if spec.SortOrder != "" {
			if _, err := sortDirection(spec.SortOrder); err != nil {
				return Query{}, err
			}
		}
		q.OrderBy = "c.created_at DESC"
		return q, nil
	}

	dir, err := sortDirection(spec.SortOrder)
	if err != nil {
		return Query{}, err
	}

	if spec.SortBy == SortMeetingPlace {
		q.Joins = " LEFT JOIN meeting_places mp ON mp.id = c.meeting_place_id"
		q.OrderBy = "mp.name " + dir
		return q, nil
	}

	col, ok := sortColumns[spec.SortBy]
	if !ok {
		return Query{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, spec.SortBy)
	}
	q.OrderBy = col + " " + dir
	return q, nil
}

func sortDirection(o SortOrder) (string, error) {
	switch o {
	case "", SortAsc:
		return "ASC", nil
	case SortDesc:
		return "DESC", nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidFilter, o)
	}
}

// ParseSortField validates a client-supplied sort field.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return "", nil
	}
	f := SortField(s)
	if _, ok := sortColumns[f]; ok || f == SortMeetingPlace {
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrInvalidFilter, s)
}

// ParseSortOrder validates a client-supplied sort order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case "", SortAsc, SortDesc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown sort order %q", ErrInvalidFilter, s)
	}
}

// ParseGender validates a gender filter value.
func ParseGender(s string) (string, error) {
	switch s {
	case "", GenderMale, GenderFemale:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidFilter, s)
	}
}
