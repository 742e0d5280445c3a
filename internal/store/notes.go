package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/contactbook/internal/core"
)

const noteColumns = "n.id, n.contact_id, n.title, n.description, n.created_at, n.updated_at"

// CreateNote attaches a note to a contact owned by ownerID.
func (s *Store) CreateNote(ctx context.Context, ownerID, contactID, title, description string) (core.Note, error) {
	if err := s.ownsContact(ctx, s.db, ownerID, contactID); err != nil {
		return core.Note{}, err
	}

	now := s.now().UTC()
	n := core.Note{
		ID:          newID(),
		ContactID:   contactID,
		Title:       title,
		Description: description,
	}
	if _, err := s.exec(ctx, s.db,
		"INSERT INTO notes (id, contact_id, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, contactID, title, description, s.timeArg(now), s.timeArg(now)); err != nil {
		return core.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return s.getNote(ctx, s.db, contactID, n.ID)
}

// UpdateNote changes the non-nil fields of a note.
func (s *Store) UpdateNote(ctx context.Context, ownerID, contactID, noteID string, title, description *string) (core.Note, error) {
	if err := s.ownsContact(ctx, s.db, ownerID, contactID); err != nil {
		return core.Note{}, err
	}

	set := newSetList()
	set.addOpt("title", title)
	set.addOpt("description", description)
	set.add("updated_at", s.timeArg(s.now().UTC()))

	res, err := s.exec(ctx, s.db,
		"UPDATE notes SET "+set.sql()+" WHERE contact_id = ? AND id = ?",
		append(set.args, contactID, noteID)...)
	if err != nil {
		return core.Note{}, fmt.Errorf("update note: %w", err)
	}
	if err := expectRow(res, "note"); err != nil {
		return core.Note{}, err
	}
	return s.getNote(ctx, s.db, contactID, noteID)
}

// DeleteNote removes one note of a contact owned by ownerID.
func (s *Store) DeleteNote(ctx context.Context, ownerID, contactID, noteID string) error {
	if err := s.ownsContact(ctx, s.db, ownerID, contactID); err != nil {
		return err
	}
	res, err := s.exec(ctx, s.db, "DELETE FROM notes WHERE contact_id = ? AND id = ?", contactID, noteID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectRow(res, "note")
}

// CountNotes implements core.StatsStore.
func (s *Store) CountNotes(ctx context.Context, ownerID string) (int64, error) {
	return s.count(ctx, s.db,
		"SELECT COUNT(*) FROM notes n JOIN contacts c ON c.id = n.contact_id WHERE c.owner_id = ?",
		ownerID)
}

func (s *Store) listNotes(ctx context.Context, contactID string) ([]core.Note, error) {
	rows, err := s.query(ctx, s.db,
		"SELECT "+noteColumns+" FROM notes n WHERE n.contact_id = ? ORDER BY n.created_at DESC",
		contactID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []core.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, mapError(rows.Err())
}

func (s *Store) getNote(ctx context.Context, q querier, contactID, noteID string) (core.Note, error) {
	row := s.queryRow(ctx, q,
		"SELECT "+noteColumns+" FROM notes n WHERE n.contact_id = ? AND n.id = ?",
		contactID, noteID)
	n, err := scanNote(row)
	if err != nil {
		return core.Note{}, mapError(err)
	}
	return n, nil
}

func (s *Store) ownsContact(ctx context.Context, q querier, ownerID, contactID string) error {
	n, err := s.count(ctx, q,
		"SELECT COUNT(*) FROM contacts WHERE owner_id = ? AND id = ?", ownerID, contactID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("contact: %w", core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

var _ rowScanner = (*sql.Row)(nil)

func scanNote(r rowScanner) (core.Note, error) {
	var n core.Note
	err := r.Scan(&n.ID, &n.ContactID, &n.Title, &n.Description, scanTime(&n.CreatedAt), scanTime(&n.UpdatedAt))
	return n, err
}
