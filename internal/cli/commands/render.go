package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/cli/output"
	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	From   int
	To     int
	Chart  string
	Width  int
	Height int
}

// renderOutput is the JSON shape of a render result.
type renderOutput struct {
	Title     string             `json:"title"`
	Caption   string             `json:"caption"`
	Selection core.Selection     `json:"selection"`
	Series    int                `json:"series"`
	Rows      []core.Observation `json:"rows,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the caption, table and chart for a selection",
		Long: `Render one selection without starting a server.

The selection is built from the selection section of gapview.yaml and the
flags below. Unlike the interactive front ends, unknown continents, metrics
and countries are rejected instead of being replaced with defaults, and so
are years that are reversed or outside the data.

Output adapts to environment:
  - Terminal: caption and a formatted table
  - Piped/Scripted: Markdown
  - --output json|csv: machine readable rows`,
		Example: `  # France and Germany population in 2000
  gapview render --continent Europe --metric pop --country France,Germany --from 2000 --to 2000 --show-table

  # Write the chart to a file
  gapview render --continent Asia --metric lifeExp --chart asia.svg

  # Rows as CSV
  gapview render --continent Europe --metric gdpPercap --show-table --output csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	addSelectionFlags(cmd)
	cmd.Flags().IntVar(&opts.From, "from", 0, "First year of the range")
	cmd.Flags().IntVar(&opts.To, "to", 0, "Last year of the range")
	cmd.Flags().StringVar(&opts.Chart, "chart", "", "Write the chart to a .svg or .png file")
	cmd.Flags().IntVar(&opts.Width, "width", render.DefaultSize.Width, "Chart width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", render.DefaultSize.Height, "Chart height in pixels")

	return cmd
}

// addSelectionFlags registers the flags that map onto the selection config.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("continent", "", "Continent to show")
	cmd.Flags().String("metric", "", "Metric to show (gdpPercap|lifeExp|pop)")
	cmd.Flags().StringSlice("country", nil, "Countries to show (repeatable or comma separated)")
	cmd.Flags().Bool("show-table", false, "Include the data table")

	_ = cmd.RegisterFlagCompletionFunc("metric", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		metrics := core.AllMetrics()
		out := make([]string, len(metrics))
		for i, m := range metrics {
			out[i] = m.String() + "\t" + m.Label()
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	req := cmdCtx.Cfg.Selection.Request()
	if cmd.Flags().Changed("from") {
		req.YearMin = &opts.From
	}
	if cmd.Flags().Changed("to") {
		req.YearMax = &opts.To
	}
	if err := selection.Validate(cmdCtx.Dataset, req); err != nil {
		return err
	}

	state := selection.Resolve(cmdCtx.Dataset, req)
	view := render.Render(cmdCtx.Dataset.Observations(), state.Selection)
	cmdCtx.Logger.Debug("rendered selection",
		"continent", state.Selection.Continent,
		"metric", state.Selection.Metric,
		"countries", len(state.Selection.Countries),
		"series", len(view.Chart.Series))

	if opts.Chart != "" {
		if err := writeChart(view.Chart, opts.Chart, render.Size{Width: opts.Width, Height: opts.Height}); err != nil {
			return err
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := renderOutput{
			Title:     view.Chart.Title,
			Caption:   view.Caption,
			Selection: state.Selection,
			Series:    len(view.Chart.Series),
		}
		if view.Table != nil {
			out.Rows = view.Table.Rows
		}
		return r.JSON(out)
	case output.ModeCSV:
		if view.Table == nil {
			return fmt.Errorf("csv output needs --show-table")
		}
		return r.Table(view.Table)
	}

	r.Header(view.Chart.Title)
	r.Println(view.Caption)
	if view.Table != nil {
		r.Println()
		if err := r.Table(view.Table); err != nil {
			return err
		}
	}
	if opts.Chart != "" {
		r.Success(fmt.Sprintf("Chart written to %s", opts.Chart))
	}
	return nil
}

// writeChart writes c to path, picking SVG or PNG by extension.
func writeChart(c render.Chart, path string, size render.Size) (err error) {
	var draw func(*os.File) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		draw = func(f *os.File) error { return c.SVG(f, size) }
	case ".png":
		draw = func(f *os.File) error { return c.PNG(f, size) }
	default:
		return fmt.Errorf("unsupported chart file %q (expected .svg or .png)", path)
	}

	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := draw(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
