package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/leapstack-labs/gapview/pkg/core"
)

// Format selects how a Table is written.
type Format string

// Supported table formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "table", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, markdown, csv or json)", s)
	}
}

// Table is the tabular rendering of a FilteredView.
type Table struct {
	Columns []string           `json:"columns"`
	Rows    []core.Observation `json:"rows"`
}

// NewTable builds a Table holding every row of view.
func NewTable(view core.FilteredView) *Table {
	return &Table{
		Columns: core.RequiredColumns,
		Rows:    view.Rows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Cells returns row i formatted for display, with grouped thousands.
func (t *Table) Cells(i int) []string {
	o := t.Rows[i]
	return []string{o.Country, o.Continent, o.Metric.String(), strconv.Itoa(o.Year), FormatNumber(o.Value)}
}

var printer = message.NewPrinter(language.English)

// FormatNumber formats v for people: 60,000,000 or 80.657.
func FormatNumber(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Render writes the table to w in the given format.
func (t *Table) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.Rows)
	case FormatCSV:
		return t.renderCSV(w)
	case FormatMarkdown:
		_, err := fmt.Fprintln(w, t.writer().RenderMarkdown())
		return err
	default:
		if len(t.Rows) == 0 {
			_, err := fmt.Fprintln(w, "(0 rows)")
			return err
		}
		tw := t.writer()
		tw.SetStyle(table.StyleLight)
		if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "(%d rows)\n", len(t.Rows))
		return err
	}
}

func (t *Table) writer() table.Writer {
	tw := table.NewWriter()

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for i := range t.Rows {
		cells := t.Cells(i)
		row := make(table.Row, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: core.ColumnYear, Align: text.AlignRight},
		{Name: core.ColumnValue, Align: text.AlignRight},
	})
	return tw
}

// renderCSV writes RFC 4180 CSV with raw, unformatted numbers.
func (t *Table) renderCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, o := range t.Rows {
		record := []string{
			o.Country,
			o.Continent,
			o.Metric.String(),
			strconv.Itoa(o.Year),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
