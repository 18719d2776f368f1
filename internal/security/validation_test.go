package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStringLength(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLen    int
		fieldName string
		wantErr   bool
	}{
		{"Valid", "short", 10, "field", false},
		{"Too long", "verylongstring", 5, "field", true},
		{"Exact limit", "exact", 5, "field", false},
		{"Empty", "", 10, "field", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStringLength(tt.input, tt.maxLen, tt.fieldName)
			if tt.wantErr {
				assert.ErrorContains(t, err, tt.fieldName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateParameterName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Flat", "db_password", false},
		{"Hierarchical", "/app/prod/db.host", false},
		{"Dashes and dots", "/app-1/v1.2/key", false},
		{"Empty", "", true},
		{"Space", "/app/my key", true},
		{"Colon", "/app:key", true},
		{"Reserved aws flat", "awsKey", true},
		{"Reserved ssm segment", "/SSM/key", true},
		{"Reserved-looking segment", "/awesome/key", false},
		{"Trailing slash", "/app/", true},
		{"Double slash", "/app//key", true},
		{"Too deep", "/" + strings.Repeat("a/", MaxHierarchyDepth) + "a", true},
		{"Max depth", strings.Repeat("/a", MaxHierarchyDepth), false},
		{"Too long", strings.Repeat("a", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameterName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, ValidateFilePath(""))
	assert.Error(t, ValidateFilePath(dir))
	assert.Error(t, ValidateFilePath("bad\x00path"))
	assert.NoError(t, ValidateFilePath(filepath.Join(dir, "missing.csv")))

	existing := filepath.Join(dir, "existing.csv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))
	assert.NoError(t, ValidateFilePath(existing))
}

func TestCreatePrivateFile(t *testing.T) {
	t.Run("Creates parents with owner-only mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.csv")

		f, err := CreatePrivateFile(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Truncates and tightens existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		require.NoError(t, os.WriteFile(path, []byte("old content"), 0644))

		f, err := CreatePrivateFile(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, data)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := CreatePrivateFile(t.TempDir())
		assert.Error(t, err)
	})
}
