package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/contactbook/internal/core"
)

func entityTable(kind core.EntityKind) (string, error) {
	switch kind {
	case core.KindTag:
		return "tags", nil
	case core.KindMeetingPlace:
		return "meeting_places", nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

// FindNamedEntities returns the owner's entities of kind ordered by name.
func (s *Store) FindNamedEntities(ctx context.Context, ownerID string, kind core.EntityKind) ([]core.NamedEntity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, s.db,
		"SELECT id, owner_id, name, created_at FROM "+table+" WHERE owner_id = ? ORDER BY name ASC",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	out := []core.NamedEntity{}
	for rows.Next() {
		var e core.NamedEntity
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, scanTime(&e.CreatedAt)); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, e)
	}
	return out, mapError(rows.Err())
}

// CreateNamedEntity inserts an entity. A case-insensitive duplicate for the
// same owner fails with core.ErrConflict.
func (s *Store) CreateNamedEntity(ctx context.Context, ownerID string, kind core.EntityKind, name string) (core.NamedEntity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return core.NamedEntity{}, err
	}

	e := core.NamedEntity{ID: newID(), OwnerID: ownerID, Name: name, CreatedAt: s.now().UTC()}
	if _, err := s.exec(ctx, s.db,
		"INSERT INTO "+table+" (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)",
		e.ID, e.OwnerID, e.Name, s.timeArg(e.CreatedAt)); err != nil {
		return core.NamedEntity{}, fmt.Errorf("insert %s: %w", kind.Label(), err)
	}
	return e, nil
}

// RenameNamedEntity changes an entity's name.
func (s *Store) RenameNamedEntity(ctx context.Context, ownerID string, kind core.EntityKind, id, name string) (core.NamedEntity, error) {
	table, err := entityTable(kind)
	if err != nil {
		return core.NamedEntity{}, err
	}

	res, err := s.exec(ctx, s.db,
		"UPDATE "+table+" SET name = ? WHERE owner_id = ? AND id = ?",
		name, ownerID, id)
	if err != nil {
		return core.NamedEntity{}, fmt.Errorf("rename %s: %w", kind.Label(), err)
	}
	if err := expectRow(res, kind.Label()); err != nil {
		return core.NamedEntity{}, err
	}

	var e core.NamedEntity
	err = s.queryRow(ctx, s.db,
		"SELECT id, owner_id, name, created_at FROM "+table+" WHERE owner_id = ? AND id = ?",
		ownerID, id).Scan(&e.ID, &e.OwnerID, &e.Name, scanTime(&e.CreatedAt))
	if err != nil {
		return core.NamedEntity{}, fmt.Errorf("reload %s: %w", kind.Label(), mapError(err))
	}
	return e, nil
}

// DeleteNamedEntity removes an entity. Tag associations cascade; contacts
// referencing a deleted meeting place lose the reference.
func (s *Store) DeleteNamedEntity(ctx context.Context, ownerID string, kind core.EntityKind, id string) error {
	table, err := entityTable(kind)
	if err != nil {
		return err
	}

	res, err := s.exec(ctx, s.db, "DELETE FROM "+table+" WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind.Label(), err)
	}
	return expectRow(res, kind.Label())
}

// CountNamedEntityUsage returns how many of the owner's contacts reference the entity.
func (s *Store) CountNamedEntityUsage(ctx context.Context, ownerID string, kind core.EntityKind, id string) (int64, error) {
	switch kind {
	case core.KindTag:
		return s.count(ctx, s.db,
			"SELECT COUNT(*) FROM contact_tags ct JOIN contacts c ON c.id = ct.contact_id WHERE c.owner_id = ? AND ct.tag_id = ?",
			ownerID, id)
	case core.KindMeetingPlace:
		return s.count(ctx, s.db,
			"SELECT COUNT(*) FROM contacts WHERE owner_id = ? AND meeting_place_id = ?",
			ownerID, id)
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// CountNamedEntities implements core.StatsStore.
func (s *Store) CountNamedEntities(ctx context.Context, ownerID string, kind core.EntityKind) (int64, error) {
	table, err := entityTable(kind)
	if err != nil {
		return 0, err
	}
	return s.count(ctx, s.db, "SELECT COUNT(*) FROM "+table+" WHERE owner_id = ?", ownerID)
}

// verifyOwned fails with core.ErrNotFound unless every id names an entity
// of kind owned by ownerID.
func (s *Store) verifyOwned(ctx context.Context, q querier, ownerID string, kind core.EntityKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	table, err := entityTable(kind)
	if err != nil {
		return err
	}
	for _, chunk := range chunks(ids) {
		n, err := s.count(ctx, q,
			"SELECT COUNT(*) FROM "+table+" WHERE owner_id = ? AND id IN ("+placeholders(len(chunk))+")",
			stringArgs([]any{ownerID}, chunk)...)
		if err != nil {
			return err
		}
		if n != int64(len(chunk)) {
			return fmt.Errorf("%s: %w", kind.Label(), core.ErrNotFound)
		}
	}
	return nil
}

func expectRow(res interface{ RowsAffected() (int64, error) }, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return nil
}
