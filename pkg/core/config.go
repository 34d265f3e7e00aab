package core

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // duckdb, postgres, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or database name

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Schema restricts introspection to one schema when set.
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// FilterConfig holds the name masks applied to one child type.
// Masks use SQL LIKE syntax: % matches any run of characters, _ matches one.
type FilterConfig struct {
	Include       []string `koanf:"include"`
	Exclude       []string `koanf:"exclude"`
	CaseSensitive bool     `koanf:"case_sensitive"`
}

// IsEmpty reports whether the filter has no masks.
func (c FilterConfig) IsEmpty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0
}

// DiagramConfig holds diagram-level preferences.
type DiagramConfig struct {
	// Name selects the persisted diagram to extend.
	Name string `koanf:"name"`

	// ShowViews includes views in diagrams. Read once per collection run.
	ShowViews bool `koanf:"show_views"`

	// Attributes selects which attributes nodes carry: all, keys or none.
	Attributes string `koanf:"attributes"`
}
