package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    *Params
		wantErr bool
	}{
		{
			name:  "nil params returns empty struct",
			input: nil,
			want:  &Params{},
		},
		{
			name:  "extensions only",
			input: map[string]any{"extensions": []any{"postgres_scanner", "json"}},
			want:  &Params{Extensions: []string{"postgres_scanner", "json"}},
		},
		{
			name: "settings are stringified",
			input: map[string]any{
				"settings": map[string]any{"memory_limit": "4GB", "threads": 4},
			},
			want: &Params{Settings: map[string]string{"memory_limit": "4GB", "threads": "4"}},
		},
		{
			name: "secrets with scope as array",
			input: map[string]any{
				"secrets": []any{
					map[string]any{
						"type":  "s3",
						"scope": []any{"s3://bucket1", "s3://bucket2"},
					},
				},
			},
			want: &Params{
				Secrets: []SecretConfig{{Type: "s3", Scope: []any{"s3://bucket1", "s3://bucket2"}}},
			},
		},
		{
			name:    "unknown key",
			input:   map[string]any{"extension": []any{"json"}},
			wantErr: true,
		},
		{
			name:    "wrong shape",
			input:   map[string]any{"secrets": "s3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestBuildCreateSecretSQL(t *testing.T) {
	tests := []struct {
		name string
		cfg  SecretConfig
		want string
	}{
		{
			name: "type only",
			cfg:  SecretConfig{Type: "s3"},
			want: "CREATE SECRET (\n    TYPE s3\n)",
		},
		{
			name: "credential chain with scope",
			cfg:  SecretConfig{Type: "s3", Provider: "credential_chain", Region: "us-west-2", Scope: "s3://my-bucket"},
			want: "CREATE SECRET (\n    TYPE s3,\n    PROVIDER credential_chain,\n    REGION 'us-west-2',\n    SCOPE 's3://my-bucket'\n)",
		},
		{
			name: "multiple scopes",
			cfg:  SecretConfig{Type: "s3", Scope: []string{"s3://a", "s3://b"}},
			want: "CREATE SECRET (\n    TYPE s3,\n    SCOPE ('s3://a', 's3://b')\n)",
		},
		{
			name: "s3 compatible endpoint",
			cfg: SecretConfig{
				Type: "s3", Provider: "config", KeyID: "minio", Secret: "it's",
				Endpoint: "localhost:9000", URLStyle: "path", UseSSL: boolPtr(false),
			},
			want: "CREATE SECRET (\n    TYPE s3,\n    PROVIDER config,\n    KEY_ID 'minio',\n    SECRET 'it''s',\n    ENDPOINT 'localhost:9000',\n    URL_STYLE 'path',\n    USE_SSL false\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCreateSecretSQL(tt.cfg))
		})
	}
}
