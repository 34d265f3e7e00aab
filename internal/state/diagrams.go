package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leaperd/internal/diagram"
	"github.com/leapstack-labs/leaperd/pkg/core"
)

// SaveDiagram replaces the stored copy of d with its current nodes and relations.
func (s *SQLiteStore) SaveDiagram(ctx context.Context, d *diagram.Diagram) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO diagrams (name, attribute_visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			attribute_visibility = excluded.attribute_visibility,
			updated_at = excluded.updated_at`,
		d.Name(), string(d.AttributeVisibility()), now, now)
	if err != nil {
		return fmt.Errorf("failed to save diagram %s: %w", d.Name(), err)
	}

	if err := deleteContents(ctx, tx, d.Name()); err != nil {
		return err
	}

	for i, n := range d.Nodes() {
		attrs, err := json.Marshal(nonNil(n.Attributes))
		if err != nil {
			return fmt.Errorf("failed to encode attributes of %s: %w", n.EntityID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagram_nodes (diagram, entity_id, name, entity_type, attributes, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			d.Name(), n.EntityID, n.Name, string(n.Type), string(attrs), i)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", n.EntityID, err)
		}
	}

	for i, r := range d.Relations() {
		srcCols, err := json.Marshal(nonNil(r.SourceColumns))
		if err != nil {
			return fmt.Errorf("failed to encode relation %s: %w", r.Key(), err)
		}
		tgtCols, err := json.Marshal(nonNil(r.TargetColumns))
		if err != nil {
			return fmt.Errorf("failed to encode relation %s: %w", r.Key(), err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagram_relations (diagram, name, source_id, target_id, source_columns, target_columns, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.Name(), r.Name, r.Source.EntityID, r.Target.EntityID, string(srcCols), string(tgtCols), i)
		if err != nil {
			return fmt.Errorf("failed to save relation %s: %w", r.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit diagram %s: %w", d.Name(), err)
	}

	s.logger.Debug("saved diagram", slog.String("diagram", d.Name()), slog.Int("nodes", d.Len()))
	return nil
}

// LoadDiagram restores a diagram by name. It returns an error wrapping
// ErrNotFound when no such diagram is stored.
func (s *SQLiteStore) LoadDiagram(ctx context.Context, name string) (*diagram.Diagram, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	var visibility string
	err := s.db.QueryRowContext(ctx,
		`SELECT attribute_visibility FROM diagrams WHERE name = ?`, name,
	).Scan(&visibility)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diagram %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diagram %s: %w", name, err)
	}

	v, err := diagram.ParseAttributeVisibility(visibility)
	if err != nil {
		return nil, fmt.Errorf("diagram %s: %w", name, err)
	}
	d := diagram.New(name)
	d.SetAttributeVisibility(v)

	nodes, err := s.loadNodes(ctx, name)
	if err != nil {
		return nil, err
	}
	d.Merge(nodes)

	if err := s.loadRelations(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *SQLiteStore) loadNodes(ctx context.Context, name string) ([]*diagram.Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, name, entity_type, attributes
		FROM diagram_nodes WHERE diagram = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes of %s: %w", name, err)
	}
	defer rows.Close()

	var nodes []*diagram.Node
	for rows.Next() {
		var id, nodeName, typ, attrsJSON string
		if err := rows.Scan(&id, &nodeName, &typ, &attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		var attrs []core.Attribute
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, fmt.Errorf("failed to decode attributes of %s: %w", id, err)
		}
		nodes = append(nodes, diagram.RestoreNode(id, nodeName, core.EntityType(typ), attrs))
	}
	return nodes, rows.Err()
}

func (s *SQLiteStore) loadRelations(ctx context.Context, d *diagram.Diagram) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, source_id, target_id, source_columns, target_columns
		FROM diagram_relations WHERE diagram = ? ORDER BY position`, d.Name())
	if err != nil {
		return fmt.Errorf("failed to load relations of %s: %w", d.Name(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var relName, sourceID, targetID, srcJSON, tgtJSON string
		if err := rows.Scan(&relName, &sourceID, &targetID, &srcJSON, &tgtJSON); err != nil {
			return fmt.Errorf("failed to scan relation: %w", err)
		}

		source, ok := d.Node(sourceID)
		if !ok {
			continue
		}
		target, ok := d.Node(targetID)
		if !ok {
			continue
		}

		r := &diagram.Relation{Name: relName, Source: source, Target: target}
		if err := json.Unmarshal([]byte(srcJSON), &r.SourceColumns); err != nil {
			return fmt.Errorf("failed to decode relation %s: %w", relName, err)
		}
		if err := json.Unmarshal([]byte(tgtJSON), &r.TargetColumns); err != nil {
			return fmt.Errorf("failed to decode relation %s: %w", relName, err)
		}
		source.AddAssociation(r)
	}
	return rows.Err()
}

// ListDiagrams returns a summary of every stored diagram, ordered by name.
func (s *SQLiteStore) ListDiagrams(ctx context.Context) ([]DiagramInfo, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.name, d.attribute_visibility, d.updated_at,
			(SELECT COUNT(*) FROM diagram_nodes n WHERE n.diagram = d.name),
			(SELECT COUNT(*) FROM diagram_relations r WHERE r.diagram = d.name)
		FROM diagrams d
		ORDER BY d.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}
	defer rows.Close()

	var infos []DiagramInfo
	for rows.Next() {
		var info DiagramInfo
		if err := rows.Scan(&info.Name, &info.AttributeVisibility, &info.UpdatedAt, &info.Nodes, &info.Relations); err != nil {
			return nil, fmt.Errorf("failed to scan diagram: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteDiagram removes a diagram and its contents. Run history is kept.
func (s *SQLiteStore) DeleteDiagram(ctx context.Context, name string) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteContents(ctx, tx, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM diagrams WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete diagram %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("diagram %s: %w", name, ErrNotFound)
	}
	return tx.Commit()
}

func deleteContents(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM diagram_relations WHERE diagram = ?`, name); err != nil {
		return fmt.Errorf("failed to clear relations of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM diagram_nodes WHERE diagram = ?`, name); err != nil {
		return fmt.Errorf("failed to clear nodes of %s: %w", name, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
