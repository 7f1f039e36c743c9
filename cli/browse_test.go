package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseFixture = `[
  {"id": "c1", "title": "Intro to Java", "level": "beginner", "rating": 4.2, "reviews": 10, "createdAt": "2024-01-10T00:00:00Z"},
  {"id": "c2", "title": "Advanced Java", "level": "advanced", "rating": 4.8, "reviews": 3, "createdAt": "2024-03-01T00:00:00Z"},
  {"id": "c3", "title": "Python Basics", "level": "beginner", "rating": 4.5, "reviews": 25, "createdAt": "2023-12-01T00:00:00Z"}
]`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(courseFixture), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := New()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func outputIDs(t *testing.T, out string) []string {
	t.Helper()
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r["id"].(string))
	}
	return ids
}

func TestBrowseCommand(t *testing.T) {
	path := writeFixture(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no query keeps file order",
			args: []string{"browse", "--file", path},
			want: []string{"c1", "c2", "c3"},
		},
		{
			name: "term over title",
			args: []string{"browse", "--file", path, "--q", "JAVA", "--fields", "title"},
			want: []string{"c1", "c2"},
		},
		{
			name: "term without fields matches nothing",
			args: []string{"browse", "--file", path, "--q", "java"},
			want: []string{},
		},
		{
			name: "filter and rating sort",
			args: []string{"browse", "--file", path, "--filter", "level=Beginner", "--sort", "rating"},
			want: []string{"c3", "c1"},
		},
		{
			name: "newest",
			args: []string{"browse", "--file", path, "--sort", "newest"},
			want: []string{"c2", "c1", "c3"},
		},
		{
			name: "popular with a custom field",
			args: []string{"browse", "--file", path, "--sort", "popular", "--popularity-field", "rating"},
			want: []string{"c2", "c3", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, outputIDs(t, out)); diff != "" {
				t.Errorf("browse order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBrowseCommand_UnknownSortWarns(t *testing.T) {
	path := writeFixture(t)
	out, errOut, err := runCLI(t, "browse", "--file", path, "--sort", "trending")
	require.NoError(t, err)
	assert.Contains(t, errOut, `unknown sort key "trending"`)
	assert.Equal(t, []string{"c1", "c2", "c3"}, outputIDs(t, out))
}

func TestBrowseCommand_Errors(t *testing.T) {
	path := writeFixture(t)

	_, _, err := runCLI(t, "browse")
	assert.Error(t, err, "--file is required")

	_, _, err = runCLI(t, "browse", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read records file")

	_, _, err = runCLI(t, "browse", "--file", path, "--filter", "level")
	assert.ErrorContains(t, err, "expected field=value")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": "c1"}`), 0644))
	_, _, err = runCLI(t, "browse", "--file", bad)
	assert.ErrorContains(t, err, "must hold a JSON array")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "catalog dev (commit unknown)\n", out)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9001\nlogging:\n  env: dev\n"), 0644))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.HTTP.Port)
	assert.Equal(t, "dev", cfg.Logging.Env)
}
