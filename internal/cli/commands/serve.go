package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gapview web dashboard",
		Long: `Start a local web server with the interactive dashboard.

The dashboard provides:
- Continent and metric selectors
- A country multi-select and a year range
- A line chart with caption and an optional data table

With --watch, edits to a file based dataset are picked up and open pages
refresh. A reload that fails keeps the previous data.`,
		Example: `  # Start on the default port
  gapview serve

  # Serve a SQLite table on a custom port and open the browser
  gapview serve --dataset gapminder.db --table observations --port 3000 --open

  # Reload when the CSV changes
  gapview serve --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("watch", false, "Reload the dataset when its file changes")
	cmd.Flags().Bool("open", false, "Open the dashboard in the default browser")
	cmd.Flags().Bool("dev", false, "Serve assets from disk and enable live reload")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	if cfg.Serve.SessionSecret == "" {
		return fmt.Errorf("serve.session_secret must not be empty")
	}

	server := ui.NewServer(ui.Config{
		Dataset:         cmdCtx.Dataset,
		DatasetConfig:   cfg.DatasetSource(),
		Port:            cfg.Serve.Port,
		Watch:           cfg.Serve.Watch,
		Dev:             cfg.Serve.Dev,
		SessionSecret:   cfg.Serve.SessionSecret,
		ShutdownTimeout: cfg.Serve.ShutdownTimeout,
		Logger:          cmdCtx.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", cfg.Serve.Port)
	if cfg.Serve.Open {
		go openBrowser(url)
	}

	r.Success(fmt.Sprintf("Serving %d observations from %s on %s", cmdCtx.Dataset.Len(), cmdCtx.Dataset.Source(), url))
	r.Muted("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
