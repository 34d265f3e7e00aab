package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leaperd/pkg/core"
	"gopkg.in/yaml.v3"
)

// Catalog is a set of root objects loaded from a fixture.
type Catalog struct {
	Databases []*Database
	Folders   []*Folder
}

// Roots returns databases first, then folders, in file order.
func (c *Catalog) Roots() []core.Object {
	roots := make([]core.Object, 0, len(c.Databases)+len(c.Folders))
	for _, db := range c.Databases {
		roots = append(roots, db)
	}
	for _, f := range c.Folders {
		roots = append(roots, f)
	}
	return roots
}

type fileSpec struct {
	Databases []databaseSpec `yaml:"databases"`
	Folders   []folderSpec   `yaml:"folders"`
}

type databaseSpec struct {
	Name    string       `yaml:"name"`
	Schemas []schemaSpec `yaml:"schemas"`
}

type schemaSpec struct {
	Name   string      `yaml:"name"`
	Hidden bool        `yaml:"hidden"`
	Tables []tableSpec `yaml:"tables"`
}

type tableSpec struct {
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	Hidden      bool         `yaml:"hidden"`
	Columns     []columnSpec `yaml:"columns"`
	ForeignKeys []fkSpec     `yaml:"foreign_keys"`
}

type columnSpec struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Nullable   bool   `yaml:"nullable"`
	PrimaryKey bool   `yaml:"primary_key"`
}

type fkSpec struct {
	Name              string   `yaml:"name"`
	References        string   `yaml:"references"`
	Columns           []string `yaml:"columns"`
	ReferencedColumns []string `yaml:"referenced_columns"`
}

type folderSpec struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// LoadYAMLFile reads a catalog fixture from path.
func LoadYAMLFile(path string, source core.DataSource) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadYAML(f, source)
}

// LoadYAML builds a catalog from a YAML fixture. Foreign key references are
// qualified relative to the referencing table: "customers" means the same
// schema, "crm.customers" the same database, "shop.crm.customers" is absolute.
// Folder members are slash paths resolved against the databases.
func LoadYAML(r io.Reader, source core.DataSource) (*Catalog, error) {
	var spec fileSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	cat := &Catalog{}
	for _, ds := range spec.Databases {
		if ds.Name == "" {
			return nil, fmt.Errorf("database without name")
		}
		db := NewDatabase(ds.Name, source)
		for _, ss := range ds.Schemas {
			schema := db.AddSchema(ss.Name)
			schema.SetHidden(ss.Hidden)
			for _, ts := range ss.Tables {
				addTable(schema, ts)
			}
		}
		cat.Databases = append(cat.Databases, db)
	}

	dbRoots := make([]core.Object, 0, len(cat.Databases))
	for _, db := range cat.Databases {
		dbRoots = append(dbRoots, db)
	}

	for _, fs := range spec.Folders {
		folder := NewFolder(fs.Name)
		folder.SetDataSource(source)
		for _, path := range fs.Members {
			obj, err := resolveStatic(dbRoots, path)
			if err != nil {
				return nil, fmt.Errorf("folder %s: %w", fs.Name, err)
			}
			folder.Add(obj)
		}
		cat.Folders = append(cat.Folders, folder)
	}

	return cat, nil
}

func addTable(schema *Schema, ts tableSpec) {
	t := schema.AddTable(ts.Name, core.EntityType(strings.ToLower(ts.Type)))
	t.SetHidden(ts.Hidden)

	for _, c := range ts.Columns {
		t.AddColumn(core.Attribute{
			Name:       c.Name,
			Type:       c.Type,
			Nullable:   c.Nullable,
			PrimaryKey: c.PrimaryKey,
		})
	}

	for _, fk := range ts.ForeignKeys {
		t.AddForeignKey(core.Association{
			Name:               fk.Name,
			ReferencedEntityID: QualifyReference(schema, fk.References),
			Columns:            fk.Columns,
			ReferencedColumns:  fk.ReferencedColumns,
		})
	}
}

// QualifyReference expands a partially qualified table reference relative to schema.
func QualifyReference(schema *Schema, ref string) string {
	switch strings.Count(ref, ".") {
	case 0:
		return schema.ID() + "." + ref
	case 1:
		if schema.db != nil {
			return schema.db.name + "." + ref
		}
		return ref
	default:
		return ref
	}
}
