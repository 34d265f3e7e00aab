package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leaperd/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leaperd/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leaperd/pkg/adapters/sqlite"
)

// writeConfig writes a leaperd.yaml into a fresh temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaperd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("catalog-file", "", "")
	flags.String("state", "", "")
	flags.String("diagram", "", "")
	flags.Bool("show-views", true, "")
	flags.String("attributes", "", "")
	flags.String("database", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	return flags
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")

	tests := []struct {
		in   string
		want string
	}{
		{"${TEST_VAR_ONE}", "value_one"},
		{"prefix_${TEST_VAR_ONE}_suffix", "prefix_value_one_suffix"},
		{"${TEST_VAR_MISSING}", "${TEST_VAR_MISSING}"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.in))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	base := &TargetConfig{
		Type:     "postgres",
		Host:     "localhost",
		Port:     5432,
		Database: "shop",
		Options:  map[string]string{"sslmode": "disable"},
	}
	override := &TargetConfig{
		Host:    "prod-db",
		Schema:  "sales",
		Options: map[string]string{"application_name": "leaperd"},
	}

	merged := MergeTargetConfig(base, override)
	assert.Equal(t, "postgres", merged.Type)
	assert.Equal(t, "prod-db", merged.Host)
	assert.Equal(t, 5432, merged.Port)
	assert.Equal(t, "shop", merged.Database)
	assert.Equal(t, "sales", merged.Schema)
	assert.Equal(t, map[string]string{"sslmode": "disable", "application_name": "leaperd"}, merged.Options)

	// base is not modified
	assert.Equal(t, "localhost", base.Host)
	assert.Len(t, base.Options, 1)

	assert.Same(t, override, MergeTargetConfig(nil, override))
	assert.Same(t, base, MergeTargetConfig(base, nil))
}

func TestMergeFilters(t *testing.T) {
	merged := MergeFilters(
		map[string]FilterConfig{
			"schema": {Include: []string{"public"}},
			"table":  {Exclude: []string{"tmp_%"}},
		},
		map[string]FilterConfig{
			"table": {Include: []string{"orders"}},
		},
	)
	assert.Equal(t, []string{"public"}, merged["schema"].Include)
	assert.Equal(t, []string{"orders"}, merged["table"].Include)
	assert.Empty(t, merged["table"].Exclude)
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "catalog_file: shop.yaml\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	root := filepath.Dir(cfgPath)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "shop.yaml"), cfg.CatalogFile)
	assert.Equal(t, filepath.Join(root, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultDiagramName, cfg.Diagram.Name)
	assert.True(t, cfg.Diagram.ShowViews)
	assert.Equal(t, DefaultAttributes, cfg.Diagram.Attributes)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Nil(t, cfg.Target)
	assert.True(t, cfg.UsesCatalogFile())
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FullFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `
target:
  type: sqlite
  database: shop.db
diagram:
  name: sales
  show_views: false
  attributes: keys
filters:
  schema:
    include: [main]
  table:
    exclude: ["tmp_%", "bak_%"]
    case_sensitive: true
output: json
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Target.Type)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "shop.db"), cfg.Target.Database)
	assert.Equal(t, "sales", cfg.Diagram.Name)
	assert.False(t, cfg.Diagram.ShowViews)
	assert.Equal(t, "keys", cfg.Diagram.Attributes)
	assert.Equal(t, []string{"main"}, cfg.Filters["schema"].Include)
	assert.Equal(t, []string{"tmp_%", "bak_%"}, cfg.Filters["table"].Exclude)
	assert.True(t, cfg.Filters["table"].CaseSensitive)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfigWithTarget_Environments(t *testing.T) {
	content := `
target:
  type: duckdb
  database: dev.duckdb
environments:
  staging:
    target:
      database: staging.duckdb
      schema: staging
  prod:
    target:
      type: postgres
      database: shop
      host: ${TEST_PROD_HOST}
    filters:
      schema:
        include: [public]
`
	t.Setenv("TEST_PROD_HOST", "db.internal")

	t.Run("base target", func(t *testing.T) {
		ResetConfig()
		cfgPath := writeConfig(t, content)
		cfg, err := LoadConfigWithTarget(cfgPath, "", nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "dev.duckdb"), cfg.Target.Database)
	})

	t.Run("staging override", func(t *testing.T) {
		ResetConfig()
		cfgPath := writeConfig(t, content)
		cfg, err := LoadConfigWithTarget(cfgPath, "staging", nil)
		require.NoError(t, err)
		assert.Equal(t, "duckdb", cfg.Target.Type)
		assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "staging.duckdb"), cfg.Target.Database)
		assert.Equal(t, "staging", cfg.Target.Schema)
	})

	t.Run("prod switches adapter", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(writeConfig(t, content), "prod", nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Target.Type)
		assert.Equal(t, "shop", cfg.Target.Database)
		assert.Equal(t, "db.internal", cfg.Target.Host)
		assert.Equal(t, 5432, cfg.Target.Port)
		assert.Equal(t, []string{"public"}, cfg.Filters["schema"].Include)
	})

	t.Run("unknown environment keeps base", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(writeConfig(t, content), "nonexistent", nil)
		require.NoError(t, err)
		assert.Equal(t, "duckdb", cfg.Target.Type)
	})
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{
			name:      "unknown target type",
			content:   "target:\n  type: mysql\n",
			errSubstr: "invalid target configuration",
		},
		{
			name:      "empty diagram name",
			content:   "diagram:\n  name: \"\"\n",
			errSubstr: "diagram name is required",
		},
		{
			name:      "bad attribute visibility",
			content:   "diagram:\n  attributes: some\n",
			errSubstr: "unknown attribute visibility",
		},
		{
			name:      "unknown filter type",
			content:   "filters:\n  column:\n    include: [id]\n",
			errSubstr: "unknown filter type",
		},
		{
			name:      "unknown output",
			content:   "output: html\n",
			errSubstr: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_Precedence(t *testing.T) {
	content := "diagram:\n  name: from_file\n"

	t.Run("env over file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPERD_DIAGRAM__NAME", "from_env")
		cfg, err := LoadConfig(writeConfig(t, content), nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Diagram.Name)
	})

	t.Run("flag over env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPERD_DIAGRAM__NAME", "from_env")
		flags := testFlags()
		require.NoError(t, flags.Set("diagram", "from_flag"))

		cfg, err := LoadConfig(writeConfig(t, content), flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Diagram.Name)
	})

	t.Run("unset flag uses file", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfig(writeConfig(t, content), testFlags())
		require.NoError(t, err)
		assert.Equal(t, "from_file", cfg.Diagram.Name)
		assert.True(t, cfg.Diagram.ShowViews)
	})

	t.Run("mapped flags", func(t *testing.T) {
		ResetConfig()
		flags := testFlags()
		require.NoError(t, flags.Set("show-views", "false"))
		require.NoError(t, flags.Set("attributes", "none"))
		require.NoError(t, flags.Set("database", ":memory:"))
		require.NoError(t, flags.Set("output", "markdown"))

		cfg, err := LoadConfig(writeConfig(t, content), flags)
		require.NoError(t, err)
		assert.False(t, cfg.Diagram.ShowViews)
		assert.Equal(t, "none", cfg.Diagram.Attributes)
		require.NotNil(t, cfg.Target)
		assert.Equal(t, "duckdb", cfg.Target.Type)
		assert.Equal(t, ":memory:", cfg.Target.Database)
		assert.Equal(t, "markdown", cfg.OutputFormat)
	})

	t.Run("path flags are relative to cwd", func(t *testing.T) {
		ResetConfig()
		flags := testFlags()
		require.NoError(t, flags.Set("state", "custom/state.db"))
		require.NoError(t, flags.Set("catalog-file", "shop.yaml"))

		cfg, err := LoadConfig(writeConfig(t, content), flags)
		require.NoError(t, err)

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "custom", "state.db"), cfg.StatePath)
		assert.Equal(t, filepath.Join(cwd, "shop.yaml"), cfg.CatalogFile)
	})
}

func TestConfig_ValidateSource(t *testing.T) {
	t.Run("catalog file", func(t *testing.T) {
		cfg := &Config{CatalogFile: "shop.yaml"}
		assert.NoError(t, cfg.ValidateSource())
	})

	t.Run("target", func(t *testing.T) {
		cfg := &Config{Target: &TargetConfig{Type: "sqlite"}}
		assert.NoError(t, cfg.ValidateSource())
	})

	t.Run("nothing configured", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.ValidateSource()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no catalog source configured")
	})

	t.Run("unknown target", func(t *testing.T) {
		cfg := &Config{Target: &TargetConfig{Type: "oracle"}}
		assert.ErrorContains(t, cfg.ValidateSource(), "unknown adapter type")
	})
}
