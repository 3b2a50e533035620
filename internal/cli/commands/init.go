package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/gapview/internal/cli/config"
	"github.com/leapstack-labs/gapview/internal/cli/output"
	"github.com/leapstack-labs/gapview/internal/dataset"
)

// projectFile is the gapview.yaml written by init.
type projectFile struct {
	Dataset struct {
		Location string `yaml:"location"`
		Table    string `yaml:"table"`
	} `yaml:"dataset"`
	Selection struct {
		Continent string   `yaml:"continent,omitempty"`
		Metric    string   `yaml:"metric,omitempty"`
		Countries []string `yaml:"countries,omitempty"`
		ShowTable bool     `yaml:"show_table"`
	} `yaml:"selection"`
	Serve struct {
		Port            int    `yaml:"port"`
		Watch           bool   `yaml:"watch"`
		Open            bool   `yaml:"open"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"serve"`
	Output string `yaml:"output"`
}

const projectFileHeader = `# gapview project configuration.
# Every key can be overridden with a GAPVIEW_ environment variable
# (e.g. GAPVIEW_SERVE_PORT) or the matching command-line flag.
# Set GAPVIEW_SERVE_SESSION_SECRET before exposing the dashboard.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new gapview project",
		Long: `Initialize a new gapview project with a gapview.yaml configuration file.

Use --example to also write a sample tidy dataset to Data/gapminder_tidy.csv
so the dashboard can be tried immediately.`,
		Example: `  # Initialize in current directory
  gapview init

  # Initialize with sample data
  gapview init --example

  # Initialize in a new directory
  gapview init my-dashboard --example

  # Force overwrite existing config
  gapview init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Write a sample dataset to Data/")

	return cmd
}

func runInit(r *output.Renderer, dir string, force, example bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "gapview.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("gapview.yaml already exists. Use --force to overwrite")
	}

	template := "minimal"
	if example {
		template = "example"
	}
	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	content, err := marshalProjectFile(example)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	files, _ := listTemplateFiles(template)
	groups := groupTemplateFiles(append([]string{"gapview.yaml"}, files...))

	r.Header("Configuration")
	for _, f := range groups["config"] {
		r.Println("  " + f)
	}
	if len(groups["data"]) > 0 {
		r.Println()
		r.Header("Data")
		for _, f := range groups["data"] {
			r.Println("  " + f)
		}
	}

	r.Println()
	r.Success("gapview project initialized!")
	r.Println()
	r.Println("Next steps:")
	if !example {
		r.Println("  1. Put a tidy country,continent,metric,year,value file at " + dataset.DefaultLocation)
	} else {
		r.Println("  1. Replace " + dataset.DefaultLocation + " with the full Gapminder extract")
	}
	r.Println("  2. Run 'gapview serve --open' to start the dashboard")
	r.Println("  3. Run 'gapview render --show-table' for a one-shot report")

	return nil
}

// marshalProjectFile renders the default gapview.yaml.
func marshalProjectFile(example bool) ([]byte, error) {
	var pf projectFile
	pf.Dataset.Location = dataset.DefaultLocation
	pf.Dataset.Table = dataset.DefaultTable
	if example {
		pf.Selection.Continent = "Europe"
		pf.Selection.Metric = "pop"
		pf.Selection.Countries = []string{"France", "Germany"}
	}
	pf.Serve.Port = config.DefaultPort
	pf.Serve.ShutdownTimeout = config.DefaultShutdownTimeout.String()
	pf.Output = config.DefaultOutput

	var buf bytes.Buffer
	buf.WriteString(projectFileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(pf); err != nil {
		return nil, fmt.Errorf("failed to encode gapview.yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
