package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatal(wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("STORE_BACKEND", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		backend, logLevel, logFormat, port = "", "", "", ""
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestTemplateCommand(t *testing.T) {
	out, err := run(t, "template", "servers")
	require.NoError(t, err)
	assert.Equal(t, "hostname,ip_address,application_name\n", out)

	_, err = run(t, "template", "racks")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,owner,web_ui,db_port\nbilling,bob,,5432\nsearch,,,x\n"), 0o600))

	out, err := run(t, "--backend", "memory", "--log-level", "error", "import", "applications", path)
	require.NoError(t, err)

	var result models.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, models.EntityApplication, result.Entity)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Rejected)
}

func TestImportCommandRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	_, err := run(t, "--backend", "memory", "import", "applications", path)
	assert.Error(t, err)
}

func TestInvalidFlagOverrideIsRejected(t *testing.T) {
	_, err := run(t, "--log-format", "xml", "template", "servers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestParseEntity(t *testing.T) {
	tests := []struct {
		arg  string
		want models.EntityType
		ok   bool
	}{
		{"applications", models.EntityApplication, true},
		{"apps", models.EntityApplication, true},
		{"server", models.EntityServer, true},
		{"racks", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseEntity(tt.arg)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
