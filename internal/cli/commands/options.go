package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/cli/output"
	"github.com/leapstack-labs/gapview/internal/selection"
)

// NewOptionsCommand creates the options command.
func NewOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the control options for a continent and metric",
		Long: `List what the dashboard controls offer for a continent and metric:
the available continents and metrics, the countries with data and the
year bounds.

Missing or unknown values fall back to the first available choice, the
same way the dashboard resolves them.`,
		Example: `  # Options for the default selection
  gapview options

  # Countries and years for Asian life expectancy
  gapview options --continent Asia --metric lifeExp --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOptions(cmd)
		},
	}

	cmd.Flags().String("continent", "", "Continent to list countries for")
	cmd.Flags().String("metric", "", "Metric to list countries for")

	return cmd
}

func runOptions(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	req := cmdCtx.Cfg.Selection.Request()
	req.Countries = nil
	state := selection.Resolve(cmdCtx.Dataset, req)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(state)
	}

	tw := optionsTable(state)
	switch r.EffectiveMode() {
	case output.ModeMarkdown:
		r.Println(tw.RenderMarkdown())
	case output.ModeCSV:
		r.Println(tw.RenderCSV())
	default:
		tw.SetStyle(table.StyleLight)
		r.Header(fmt.Sprintf("Options for %s in %s", state.Selection.Metric.Label(), state.Selection.Continent))
		r.Println(tw.Render())
	}
	if !state.Controls.HasData {
		r.Muted(fmt.Sprintf("No %s data for %s.", state.Selection.Metric.Label(), state.Selection.Continent))
	}
	return nil
}

func optionsTable(state selection.State) table.Writer {
	metrics := make([]string, len(state.Controls.Metrics))
	for i, m := range state.Controls.Metrics {
		metrics[i] = fmt.Sprintf("%s (%s)", m.Metric, m.Label)
	}

	years := "-"
	if state.Controls.HasData {
		years = fmt.Sprintf("%d-%d", state.Controls.YearBounds.Min, state.Controls.YearBounds.Max)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Control", "Options"})
	tw.AppendRows([]table.Row{
		{"continent", strings.Join(state.Controls.Continents, ", ")},
		{"metric", strings.Join(metrics, ", ")},
		{"countries", strings.Join(state.Controls.Countries, ", ")},
		{"years", years},
	})
	return tw
}
