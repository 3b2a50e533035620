package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gapview/internal/cli/output"
	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
)

const shellPrompt = "gapview> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Explore the dataset in an interactive shell",
		Long: `Start a line-oriented shell that edits the current selection with
dot-commands and prints the caption after each change.

Changing the continent or metric resets the country subset and year range,
like the dashboard does.`,
		Example: `  gapview shell
  gapview shell --continent Asia --metric lifeExp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd)
		},
	}
	addSelectionFlags(cmd)
	return cmd
}

func runShell(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	sh := newShellSession(cmdCtx.Dataset, cmdCtx.Cfg.Selection.Request(), cmdCtx.Renderer, cmdCtx.Logger)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     filepath.Join(cmdCtx.Cfg.ProjectRoot, ".gapview_history"),
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gapview shell (%d observations from %s)\n", cmdCtx.Dataset.Len(), cmdCtx.Dataset.Source())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	sh.caption()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if sh.exec(line) {
			break
		}
	}
	return nil
}

// shellSession holds the selection edited by one shell.
type shellSession struct {
	ds     *dataset.Dataset
	state  selection.State
	r      *output.Renderer
	logger *slog.Logger
}

func newShellSession(ds *dataset.Dataset, req selection.Request, r *output.Renderer, logger *slog.Logger) *shellSession {
	return &shellSession{
		ds:     ds,
		state:  selection.Resolve(ds, req),
		r:      r,
		logger: logger,
	}
}

// exec runs one input line and reports whether the shell should exit.
func (s *shellSession) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true
	case ".help":
		printShellHelp(s.r.Out())
	case ".show":
		err = s.show()
	case ".options":
		s.options()
	case ".continent":
		err = s.setContinent(arg)
	case ".metric":
		err = s.setMetric(arg)
	case ".countries":
		err = s.setCountries(arg)
	case ".years":
		err = s.setYears(arg)
	case ".table":
		err = s.setTable(arg)
	case ".chart":
		err = s.chart(arg)
	case ".reset":
		s.apply(selection.Request{})
	default:
		_, _ = fmt.Fprintf(s.r.Err(), "Unknown command: %s (type .help for commands)\n", command)
	}
	if err != nil {
		_, _ = fmt.Fprintf(s.r.Err(), "Error: %v\n", err)
	}
	return false
}

// apply moves to next, resetting dependent controls when the continent or
// metric changed, and prints the new caption.
func (s *shellSession) apply(next selection.Request) {
	prev := s.state.Selection
	s.state = selection.Resolve(s.ds, selection.Transition(prev, next))
	s.logger.Debug("selection changed",
		"continent", s.state.Selection.Continent,
		"metric", s.state.Selection.Metric,
		"countries", len(s.state.Selection.Countries))
	s.caption()
}

func (s *shellSession) caption() {
	if !s.state.Controls.HasData {
		s.r.Muted(fmt.Sprintf("No %s data for %s.", s.state.Selection.Metric.Label(), s.state.Selection.Continent))
	}
	s.r.Println(render.Caption(s.state.Selection))
}

func (s *shellSession) current() selection.Request {
	return selection.FromSelection(s.state.Selection)
}

func (s *shellSession) setContinent(arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: .continent <name>")
	}
	if err := selection.Validate(s.ds, selection.Request{Continent: arg}); err != nil {
		return err
	}
	req := s.current()
	req.Continent = arg
	s.apply(req)
	return nil
}

func (s *shellSession) setMetric(arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: .metric <gdpPercap|lifeExp|pop>")
	}
	if err := selection.Validate(s.ds, selection.Request{Metric: arg}); err != nil {
		return err
	}
	req := s.current()
	req.Metric = arg
	s.apply(req)
	return nil
}

func (s *shellSession) setCountries(arg string) error {
	req := s.current()
	switch strings.ToLower(arg) {
	case "":
		return fmt.Errorf("usage: .countries <all|none|name, name, ...>")
	case "all":
		req.Countries = nil
	case "none":
		req.Countries = []string{}
	default:
		var countries []string
		for _, c := range strings.Split(arg, ",") {
			if c = strings.TrimSpace(c); c != "" {
				countries = append(countries, c)
			}
		}
		check := selection.Request{
			Continent: req.Continent,
			Metric:    req.Metric,
			Countries: countries,
		}
		if err := selection.Validate(s.ds, check); err != nil {
			return err
		}
		req.Countries = countries
	}
	s.apply(req)
	return nil
}

func (s *shellSession) setYears(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return fmt.Errorf("usage: .years <from> <to>")
	}
	lo, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", fields[0])
	}
	hi, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid year %q", fields[1])
	}
	req := s.current()
	req.YearMin, req.YearMax = &lo, &hi
	s.apply(req)
	return nil
}

func (s *shellSession) setTable(arg string) error {
	req := s.current()
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		req.ShowTable = true
	case "off", "false", "0":
		req.ShowTable = false
	default:
		return fmt.Errorf("usage: .table <on|off>")
	}
	s.apply(req)
	return nil
}

func (s *shellSession) show() error {
	view := render.Render(s.ds.Observations(), s.state.Selection)
	s.r.Header(view.Chart.Title)
	s.r.Println(view.Caption)
	if view.Table == nil {
		s.r.Muted("(table hidden, use .table on)")
		return nil
	}
	return s.r.Table(view.Table)
}

func (s *shellSession) options() {
	c := s.state.Controls
	metrics := make([]string, len(c.Metrics))
	for i, m := range c.Metrics {
		metrics[i] = m.Metric.String()
	}
	s.r.Println("continents: " + strings.Join(c.Continents, ", "))
	s.r.Println("metrics:    " + strings.Join(metrics, ", "))
	s.r.Println("countries:  " + strings.Join(c.Countries, ", "))
	if c.HasData {
		s.r.Println(fmt.Sprintf("years:      %d-%d", c.YearBounds.Min, c.YearBounds.Max))
	}
}

func (s *shellSession) chart(path string) error {
	if path == "" {
		return fmt.Errorf("usage: .chart <file.svg|file.png>")
	}
	view := render.Render(s.ds.Observations(), s.state.Selection)
	if err := writeChart(view.Chart, path, render.DefaultSize); err != nil {
		return err
	}
	s.r.Success(fmt.Sprintf("Chart written to %s", path))
	return nil
}

// completer offers dot-commands and the dataset's continents, metrics and
// current country options.
func (s *shellSession) completer() *readline.PrefixCompleter {
	metrics := func(string) []string {
		ms := s.ds.Metrics()
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.String()
		}
		return out
	}
	continents := func(string) []string { return s.ds.Continents() }
	countries := func(string) []string {
		return append([]string{"all", "none"}, s.state.Controls.Countries...)
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".show"),
		readline.PcItem(".options"),
		readline.PcItem(".continent", readline.PcItemDynamic(continents)),
		readline.PcItem(".metric", readline.PcItemDynamic(metrics)),
		readline.PcItem(".countries", readline.PcItemDynamic(countries)),
		readline.PcItem(".years"),
		readline.PcItem(".table", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".chart"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
	)
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .show                      Print the title, caption and table
  .options                   List the control options
  .continent <name>          Select a continent (resets countries and years)
  .metric <id>               Select gdpPercap, lifeExp or pop (resets countries and years)
  .countries <a, b | all | none>
                             Select countries
  .years <from> <to>         Select the year range
  .table <on|off>            Show or hide the data table
  .chart <file>              Write the chart to an .svg or .png file
  .reset                     Go back to the default selection
  .help                      Show this help message
  .quit / .exit              Exit the shell
`
	_, _ = fmt.Fprintln(w, help)
}
