package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/gapview/internal/cli/config"
	"github.com/leapstack-labs/gapview/internal/dataset"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string) // setup before running
		args      []string
		wantErr   string
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"gapview.yaml", ".gitignore"},
		},
		{
			name:      "init with example data",
			args:      []string{"--example"},
			wantFiles: []string{"gapview.yaml", ".gitignore", "Data/gapminder_tidy.csv"},
		},
		{
			name:      "init into new directory",
			args:      []string{"dash"},
			wantFiles: []string{"dash/gapview.yaml", "dash/.gitignore"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "gapview.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: "gapview.yaml already exists",
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "gapview.yaml"), []byte("existing"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"gapview.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "gapview project initialized!")

			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(tmpDir, f))
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "--example flag should exist")
}

func TestInitCreatesValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--example"})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile("gapview.yaml")
	require.NoError(t, err, "failed to read gapview.yaml")

	var pf projectFile
	require.NoError(t, yaml.Unmarshal(content, &pf))
	assert.Equal(t, dataset.DefaultLocation, pf.Dataset.Location)
	assert.Equal(t, "Europe", pf.Selection.Continent)
	assert.Equal(t, []string{"France", "Germany"}, pf.Selection.Countries)
	assert.Equal(t, config.DefaultPort, pf.Serve.Port)
	assert.NotContains(t, string(content), "session_secret:")

	// The written project must load and point at the sample data.
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "pop", cfg.Selection.Metric.String())
	assert.FileExists(t, cfg.Dataset.Location)
}

func TestMarshalProjectFile_Minimal(t *testing.T) {
	content, err := marshalProjectFile(false)
	require.NoError(t, err)

	assert.Contains(t, string(content), "# gapview project configuration.")
	assert.Contains(t, string(content), "location: "+dataset.DefaultLocation)
	assert.Contains(t, string(content), "shutdown_timeout: 5s")
	assert.NotContains(t, string(content), "continent:")
}
