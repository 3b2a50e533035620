package commands

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/tui"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Explore the dataset in a full-screen terminal dashboard",
		Long: `Open the dashboard in the terminal.

The sidebar holds the continent, metric, country and year controls; the main
area shows one sparkline per selected country, the caption and, with 't',
the data table. Press '?' for all keys.`,
		Example: `  gapview tui
  gapview tui --continent Americas --metric gdpPercap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			m := tui.New(cmdCtx.Dataset, cmdCtx.Cfg.Selection.Request(), cmdCtx.Logger)
			err = tui.Run(cmd.Context(), m,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	addSelectionFlags(cmd)
	return cmd
}
