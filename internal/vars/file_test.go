package vars_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duboisf/renderenv/internal/vars"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseTOML_KeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	f, err := vars.ParseTOML([]byte(`
service = "srv-123"

[vars]
YOUTUBE_API_KEY = "yt"
NEXT_PUBLIC_BASE_URL = "https://example.onrender.com"
NODE_ENV = "production"
PORT = 10000
DEBUG = false
`))
	require.NoError(t, err)

	assert.Equal(t, "srv-123", f.Service)
	assert.Equal(t, []vars.Variable{
		{Key: "YOUTUBE_API_KEY", Value: "yt"},
		{Key: "NEXT_PUBLIC_BASE_URL", Value: "https://example.onrender.com"},
		{Key: "NODE_ENV", Value: "production"},
		{Key: "PORT", Value: "10000"},
		{Key: "DEBUG", Value: "false"},
	}, f.Vars.Variables())
}

func TestParseTOML_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "syntax", doc: `[vars`},
		{name: "array value", doc: "[vars]\nA = [1, 2]"},
		{name: "nested table", doc: "[vars.A]\nB = \"1\""},
		{name: "unknown top-level key", doc: `region = "oregon"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := vars.ParseTOML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseTOML_Empty(t *testing.T) {
	t.Parallel()

	f, err := vars.ParseTOML(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.Vars.Len())
	assert.Empty(t, f.Service)
}

func TestParseYAML_KeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	f, err := vars.ParseYAML([]byte(`
service: srv-456
vars:
  NODE_ENV: production
  API_URL: "https://api.example.com"
  WORKERS: 4
  EMPTY:
`))
	require.NoError(t, err)

	assert.Equal(t, "srv-456", f.Service)
	assert.Equal(t, []vars.Variable{
		{Key: "NODE_ENV", Value: "production"},
		{Key: "API_URL", Value: "https://api.example.com"},
		{Key: "WORKERS", Value: "4"},
		{Key: "EMPTY", Value: ""},
	}, f.Vars.Variables())
}

func TestParseYAML_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not a mapping", doc: "- a\n- b\n"},
		{name: "vars not a mapping", doc: "vars: [a, b]\n"},
		{name: "nested value", doc: "vars:\n  A:\n    B: c\n"},
		{name: "unknown key", doc: "region: oregon\n"},
		{name: "service not scalar", doc: "service: [a]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := vars.ParseYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseDotenv_SortsKeys(t *testing.T) {
	t.Parallel()

	f, err := vars.ParseDotenv([]byte("# comment\nZED=last\nALPHA=first\nQUOTED=\"a b\"\n"))
	require.NoError(t, err)

	assert.Equal(t, []vars.Variable{
		{Key: "ALPHA", Value: "first"},
		{Key: "QUOTED", Value: "a b"},
		{Key: "ZED", Value: "last"},
	}, f.Vars.Variables())
}

func TestLoadFile_ByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		service string
	}{
		{name: "toml", file: "vars.toml", content: "service = \"srv-t\"\n[vars]\nA = \"1\"\n", service: "srv-t"},
		{name: "yaml", file: "vars.yaml", content: "service: srv-y\nvars:\n  A: \"1\"\n", service: "srv-y"},
		{name: "yml", file: "vars.yml", content: "vars:\n  A: \"1\"\n"},
		{name: "dotenv", file: "render.env", content: "A=1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, tt.file, tt.content)

			f, err := vars.LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, path, f.Path)
			assert.Equal(t, tt.service, f.Service)
			got, ok := f.Vars.Get("A")
			assert.True(t, ok)
			assert.Equal(t, "1", got)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := vars.LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile_InvalidKey(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "vars.yaml", "vars:\n  \"BAD KEY\": x\n")

	_, err := vars.LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, vars.ErrInvalidKey)
}
