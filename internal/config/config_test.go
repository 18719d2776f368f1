package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "PARAMCSVTEST"

func testFlags() (*pflag.FlagSet, *BoolValue) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("region", "", "region")
	flags.String("source-profile", "default", "profile")
	flags.Bool("recursive", false, "recursive")
	decrypt := NewBoolValue(true)
	flags.VarP(decrypt, "with-decryption", "d", "decrypt")
	return flags, decrypt
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	flags, _ := testFlags()
	v, err := Load(flags, testPrefix, "")
	require.NoError(t, err)

	assert.Equal(t, "", v.GetString("region"))
	assert.Equal(t, "default", v.GetString("source-profile"))
	assert.False(t, v.GetBool("recursive"))

	decrypt, err := Bool(v, "with-decryption")
	require.NoError(t, err)
	assert.True(t, decrypt)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "region: eu-west-1\nsource-profile: from-file\nrecursive: true\n")

	t.Run("File over default", func(t *testing.T) {
		flags, _ := testFlags()
		v, err := Load(flags, testPrefix, path)
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", v.GetString("region"))
		assert.Equal(t, "from-file", v.GetString("source-profile"))
		assert.True(t, v.GetBool("recursive"))
	})

	t.Run("Env over file", func(t *testing.T) {
		t.Setenv(testPrefix+"_SOURCE_PROFILE", "from-env")
		flags, _ := testFlags()
		v, err := Load(flags, testPrefix, path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", v.GetString("source-profile"))
	})

	t.Run("Flag over env", func(t *testing.T) {
		t.Setenv(testPrefix+"_SOURCE_PROFILE", "from-env")
		flags, _ := testFlags()
		require.NoError(t, flags.Parse([]string{"--source-profile", "from-flag"}))
		v, err := Load(flags, testPrefix, path)
		require.NoError(t, err)
		assert.Equal(t, "from-flag", v.GetString("source-profile"))
	})
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "region: ap-south-1\n")
	t.Setenv(testPrefix+"_CONFIG", path)

	flags, _ := testFlags()
	v, err := Load(flags, testPrefix, "")
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", v.GetString("region"))
}

func TestLoad_MissingFile(t *testing.T) {
	flags, _ := testFlags()
	_, err := Load(flags, testPrefix, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SSM2CSV_SOURCE_PROFILE", EnvName("SSM2CSV", "source-profile"))
	assert.Equal(t, "CSV2SSM_CONFIG", EnvName("csv2ssm", "config"))
}

func TestBool_FromEnv(t *testing.T) {
	t.Setenv(testPrefix+"_WITH_DECRYPTION", "no")
	flags, _ := testFlags()
	v, err := Load(flags, testPrefix, "")
	require.NoError(t, err)

	decrypt, err := Bool(v, "with-decryption")
	require.NoError(t, err)
	assert.False(t, decrypt)

	t.Setenv(testPrefix+"_WITH_DECRYPTION", "maybe")
	_, err = Bool(v, "with-decryption")
	assert.Error(t, err)
}

func TestBoolValue(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    bool
		wantErr bool
	}{
		{"Default", nil, true, false},
		{"Long false", []string{"--with-decryption", "false"}, false, false},
		{"Short False", []string{"-d", "False"}, false, false},
		{"Equals no", []string{"--with-decryption=no"}, false, false},
		{"Zero", []string{"-d", "0"}, false, false},
		{"On", []string{"-d", "on"}, true, false},
		{"Invalid", []string{"-d", "maybe"}, false, true},
		{"Missing argument", []string{"-d"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, decrypt := testFlags()
			err := flags.Parse(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, decrypt.Bool())
			assert.Empty(t, flags.Args())
		})
	}
}

func TestBoolValue_Type(t *testing.T) {
	b := NewBoolValue(false)
	assert.Equal(t, "true|false", b.Type())
	assert.Equal(t, "false", b.String())
	require.NoError(t, b.Set("YES"))
	assert.Equal(t, "true", b.String())
}

func TestLoad_ConfigFromFlag(t *testing.T) {
	path := writeConfig(t, "region: us-west-2\n")
	t.Setenv(testPrefix+"_CONFIG", writeConfig(t, "region: ap-south-1\n"))

	flags, _ := testFlags()
	flags.String(ConfigFlag, "", "config file")
	require.NoError(t, flags.Parse([]string{"--config", path}))

	v, err := Load(flags, testPrefix, "")
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", v.GetString("region"))
}

func TestBools(t *testing.T) {
	t.Setenv(testPrefix+"_RECURSIVE", "yes")
	flags, _ := testFlags()
	v, err := Load(flags, testPrefix, "")
	require.NoError(t, err)

	got, err := Bools(v, "recursive", "with-decryption")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"recursive": true, "with-decryption": true}, got)

	t.Setenv(testPrefix+"_RECURSIVE", "sometimes")
	_, err = Bools(v, "recursive", "with-decryption")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive")
}
