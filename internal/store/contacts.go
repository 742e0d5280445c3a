package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/contactbook/internal/core"
)

const contactColumns = "c.id, c.owner_id, c.name, c.gender, c.age, c.age_type, c.birth_date, c.height, " +
	"c.height_type, c.occupation, c.occupation_details, c.residence, c.residence_details, c.where_met, " +
	"c.how_met, c.details, c.custom_fields, c.photo, c.met_at, c.meeting_place_id, c.created_at, c.updated_at"

// CreateContact writes the contact, its tags and its links in one transaction.
// Referenced tags and meeting place must belong to ownerID.
func (s *Store) CreateContact(ctx context.Context, ownerID string, in core.ContactInput) (core.Contact, error) {
	id := newID()
	now := s.now().UTC()

	custom, err := encodeCustomFields(in.CustomFields)
	if err != nil {
		return core.Contact{}, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.verifyOwned(ctx, tx, ownerID, core.KindTag, in.TagIDs); err != nil {
			return err
		}
		if in.MeetingPlaceID != nil {
			if err := s.verifyOwned(ctx, tx, ownerID, core.KindMeetingPlace, []string{*in.MeetingPlaceID}); err != nil {
				return err
			}
		}

		f := in.ContactFields
		if _, err := s.exec(ctx, tx, `INSERT INTO contacts (
			id, owner_id, name, gender, age, age_type, birth_date, height, height_type,
			occupation, occupation_details, residence, residence_details, where_met, how_met,
			details, custom_fields, photo, met_at, meeting_place_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, in.Name, f.Gender, f.Age, f.AgeType, s.optTimeArg(f.BirthDate), f.Height, f.HeightType,
			f.Occupation, f.OccupationDetails, f.Residence, f.ResidenceDetails, f.WhereMet, f.HowMet,
			f.Details, custom, nil, s.timeArg(in.MetAt), in.MeetingPlaceID, s.timeArg(now), s.timeArg(now),
		); err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}

		if err := s.insertContactTags(ctx, tx, id, in.TagIDs); err != nil {
			return err
		}
		return s.insertLinks(ctx, tx, id, in.Links)
	})
	if err != nil {
		return core.Contact{}, err
	}

	return s.loadContact(ctx, ownerID, id, false)
}

// QueryContacts runs a compiled filter and loads tags, links and meeting
// places for the result.
func (s *Store) QueryContacts(ctx context.Context, q core.Query) ([]core.Contact, error) {
	rows, err := s.db.QueryContext(ctx, q.SQL(contactColumns), q.Args...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", mapError(err))
	}
	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetContact returns one contact including its notes, newest first.
func (s *Store) GetContact(ctx context.Context, ownerID, id string) (core.Contact, error) {
	return s.loadContact(ctx, ownerID, id, true)
}

// UpdateContact applies a patch. Tags and links in the patch replace the
// stored sets; an empty MeetingPlaceID clears the reference.
func (s *Store) UpdateContact(ctx context.Context, ownerID, id string, p core.ContactPatch) (core.Contact, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		set := newSetList()
		if p.Name != nil {
			set.add("name", *p.Name)
		}
		f := p.ContactFields
		set.addOpt("gender", f.Gender)
		set.addOpt("age_type", f.AgeType)
		set.addOpt("height_type", f.HeightType)
		set.addOpt("occupation", f.Occupation)
		set.addOpt("occupation_details", f.OccupationDetails)
		set.addOpt("residence", f.Residence)
		set.addOpt("residence_details", f.ResidenceDetails)
		set.addOpt("where_met", f.WhereMet)
		set.addOpt("how_met", f.HowMet)
		set.addOpt("details", f.Details)
		if f.Age != nil {
			set.add("age", *f.Age)
		}
		if f.Height != nil {
			set.add("height", *f.Height)
		}
		if f.BirthDate != nil {
			set.add("birth_date", s.timeArg(*f.BirthDate))
		}
		if p.MetAt != nil {
			set.add("met_at", s.timeArg(*p.MetAt))
		}
		if p.CustomFields != nil {
			custom, err := encodeCustomFields(p.CustomFields)
			if err != nil {
				return err
			}
			set.add("custom_fields", custom)
		}
		if p.MeetingPlaceID != nil {
			if *p.MeetingPlaceID == "" {
				set.add("meeting_place_id", nil)
			} else {
				if err := s.verifyOwned(ctx, tx, ownerID, core.KindMeetingPlace, []string{*p.MeetingPlaceID}); err != nil {
					return err
				}
				set.add("meeting_place_id", *p.MeetingPlaceID)
			}
		}
		set.add("updated_at", s.timeArg(s.now().UTC()))

		res, err := s.exec(ctx, tx,
			"UPDATE contacts SET "+set.sql()+" WHERE owner_id = ? AND id = ?",
			append(set.args, ownerID, id)...)
		if err != nil {
			return fmt.Errorf("update contact: %w", err)
		}
		if err := expectRow(res, "contact"); err != nil {
			return err
		}

		if p.TagIDs != nil {
			if err := s.verifyOwned(ctx, tx, ownerID, core.KindTag, *p.TagIDs); err != nil {
				return err
			}
			if _, err := s.exec(ctx, tx, "DELETE FROM contact_tags WHERE contact_id = ?", id); err != nil {
				return fmt.Errorf("clear contact tags: %w", err)
			}
			if err := s.insertContactTags(ctx, tx, id, *p.TagIDs); err != nil {
				return err
			}
		}
		if p.Links != nil {
			if _, err := s.exec(ctx, tx, "DELETE FROM contact_links WHERE contact_id = ?", id); err != nil {
				return fmt.Errorf("clear contact links: %w", err)
			}
			if err := s.insertLinks(ctx, tx, id, *p.Links); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Contact{}, err
	}
	return s.loadContact(ctx, ownerID, id, true)
}

// DeleteContact removes a contact; links, tag associations and notes cascade.
func (s *Store) DeleteContact(ctx context.Context, ownerID, id string) error {
	res, err := s.exec(ctx, s.db, "DELETE FROM contacts WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return expectRow(res, "contact")
}

// DeleteAllContacts removes every contact of the owner.
func (s *Store) DeleteAllContacts(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.exec(ctx, s.db, "DELETE FROM contacts WHERE owner_id = ?", ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete contacts: %w", err)
	}
	n, err := res.RowsAffected()
	return n, mapError(err)
}

// SetContactPhoto replaces the photo reference; nil clears it.
func (s *Store) SetContactPhoto(ctx context.Context, ownerID, id string, photo *string) (core.Contact, error) {
	res, err := s.exec(ctx, s.db,
		"UPDATE contacts SET photo = ?, updated_at = ? WHERE owner_id = ? AND id = ?",
		photo, s.timeArg(s.now().UTC()), ownerID, id)
	if err != nil {
		return core.Contact{}, fmt.Errorf("set photo: %w", err)
	}
	if err := expectRow(res, "contact"); err != nil {
		return core.Contact{}, err
	}
	return s.loadContact(ctx, ownerID, id, false)
}

// CountContacts implements core.StatsStore. A non-nil since counts only
// contacts created at or after it.
func (s *Store) CountContacts(ctx context.Context, ownerID string, since *time.Time) (int64, error) {
	if since == nil {
		return s.count(ctx, s.db, "SELECT COUNT(*) FROM contacts WHERE owner_id = ?", ownerID)
	}
	return s.count(ctx, s.db,
		"SELECT COUNT(*) FROM contacts WHERE owner_id = ? AND created_at >= ?",
		ownerID, s.timeArg(*since))
}

func (s *Store) loadContact(ctx context.Context, ownerID, id string, withNotes bool) (core.Contact, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT "+contactColumns+" FROM contacts c WHERE c.owner_id = ? AND c.id = ?",
		ownerID, id)
	if err != nil {
		return core.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	contacts, err := scanContacts(rows)
	if err != nil {
		return core.Contact{}, err
	}
	if len(contacts) == 0 {
		return core.Contact{}, fmt.Errorf("contact: %w", core.ErrNotFound)
	}
	if err := s.hydrate(ctx, contacts); err != nil {
		return core.Contact{}, err
	}

	c := contacts[0]
	if withNotes {
		if c.Notes, err = s.listNotes(ctx, c.ID); err != nil {
			return core.Contact{}, err
		}
	}
	return c, nil
}

func (s *Store) insertContactTags(ctx context.Context, tx *sql.Tx, contactID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := s.exec(ctx, tx,
			"INSERT INTO contact_tags (contact_id, tag_id) VALUES (?, ?)",
			contactID, tagID); err != nil {
			return fmt.Errorf("insert contact tag: %w", err)
		}
	}
	return nil
}

func (s *Store) insertLinks(ctx context.Context, tx *sql.Tx, contactID string, links []core.Link) error {
	for i, l := range links {
		if _, err := s.exec(ctx, tx,
			"INSERT INTO contact_links (id, contact_id, position, type, label, value) VALUES (?, ?, ?, ?, ?, ?)",
			newID(), contactID, i, l.Type, l.Label, l.Value); err != nil {
			return fmt.Errorf("insert contact link: %w", err)
		}
	}
	return nil
}

func scanContacts(rows *sql.Rows) ([]core.Contact, error) {
	defer rows.Close()

	out := []core.Contact{}
	for rows.Next() {
		var (
			c      core.Contact
			custom *string
		)
		f := &c.ContactFields
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.Name, &f.Gender, &f.Age, &f.AgeType, scanNullTime(&f.BirthDate), &f.Height,
			&f.HeightType, &f.Occupation, &f.OccupationDetails, &f.Residence, &f.ResidenceDetails, &f.WhereMet,
			&f.HowMet, &f.Details, &custom, &c.Photo, scanTime(&c.MetAt), &c.MeetingPlaceID,
			scanTime(&c.CreatedAt), scanTime(&c.UpdatedAt),
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if custom != nil && *custom != "" {
			if err := json.Unmarshal([]byte(*custom), &c.CustomFields); err != nil {
				return nil, fmt.Errorf("decode custom fields of %s: %w", c.ID, err)
			}
		}
		c.Tags = []core.NamedEntity{}
		c.Links = []core.Link{}
		out = append(out, c)
	}
	return out, mapError(rows.Err())
}

// hydrate loads tags, links and meeting places for contacts in bulk.
func (s *Store) hydrate(ctx context.Context, contacts []core.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	byID := make(map[string]*core.Contact, len(contacts))
	ids := make([]string, 0, len(contacts))
	placeSet := map[string]struct{}{}
	for i := range contacts {
		c := &contacts[i]
		byID[c.ID] = c
		ids = append(ids, c.ID)
		if c.MeetingPlaceID != nil {
			placeSet[*c.MeetingPlaceID] = struct{}{}
		}
	}

	for _, chunk := range chunks(ids) {
		if err := s.loadTags(ctx, chunk, byID); err != nil {
			return err
		}
		if err := s.loadLinks(ctx, chunk, byID); err != nil {
			return err
		}
	}

	if len(placeSet) == 0 {
		return nil
	}
	placeIDs := make([]string, 0, len(placeSet))
	for id := range placeSet {
		placeIDs = append(placeIDs, id)
	}
	places := make(map[string]core.NamedEntity, len(placeIDs))
	for _, chunk := range chunks(placeIDs) {
		rows, err := s.query(ctx, s.db,
			"SELECT id, owner_id, name, created_at FROM meeting_places WHERE id IN ("+placeholders(len(chunk))+")",
			stringArgs(nil, chunk)...)
		if err != nil {
			return fmt.Errorf("load meeting places: %w", err)
		}
		for rows.Next() {
			var e core.NamedEntity
			if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, scanTime(&e.CreatedAt)); err != nil {
				rows.Close()
				return fmt.Errorf("scan meeting place: %w", err)
			}
			places[e.ID] = e
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return mapError(err)
		}
	}
	for i := range contacts {
		c := &contacts[i]
		if c.MeetingPlaceID == nil {
			continue
		}
		if e, ok := places[*c.MeetingPlaceID]; ok {
			c.MeetingPlace = &e
		}
	}
	return nil
}

func (s *Store) loadTags(ctx context.Context, ids []string, byID map[string]*core.Contact) error {
	rows, err := s.query(ctx, s.db,
		"SELECT ct.contact_id, t.id, t.owner_id, t.name, t.created_at FROM contact_tags ct "+
			"JOIN tags t ON t.id = ct.tag_id WHERE ct.contact_id IN ("+placeholders(len(ids))+") ORDER BY t.name",
		stringArgs(nil, ids)...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contactID string
			t         core.NamedEntity
		)
		if err := rows.Scan(&contactID, &t.ID, &t.OwnerID, &t.Name, scanTime(&t.CreatedAt)); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if c, ok := byID[contactID]; ok {
			c.Tags = append(c.Tags, t)
		}
	}
	return mapError(rows.Err())
}

func (s *Store) loadLinks(ctx context.Context, ids []string, byID map[string]*core.Contact) error {
	rows, err := s.query(ctx, s.db,
		"SELECT contact_id, type, label, value FROM contact_links WHERE contact_id IN ("+
			placeholders(len(ids))+") ORDER BY contact_id, position",
		stringArgs(nil, ids)...)
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contactID string
			l         core.Link
		)
		if err := rows.Scan(&contactID, &l.Type, &l.Label, &l.Value); err != nil {
			return fmt.Errorf("scan link: %w", err)
		}
		if c, ok := byID[contactID]; ok {
			c.Links = append(c.Links, l)
		}
	}
	return mapError(rows.Err())
}

func encodeCustomFields(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode custom fields: %w", err)
	}
	return string(b), nil
}

// setList accumulates "col = ?" assignments for an UPDATE.
type setList struct {
	cols []string
	args []any
}

func newSetList() *setList { return &setList{} }

func (l *setList) add(col string, v any) {
	l.cols = append(l.cols, col+" = ?")
	l.args = append(l.args, v)
}

func (l *setList) addOpt(col string, v *string) {
	if v != nil {
		l.add(col, *v)
	}
}

func (l *setList) sql() string {
	return strings.Join(l.cols, ", ")
}
