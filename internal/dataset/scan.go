package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/gapview/pkg/core"
)

// readObservations reads every row of relation, checking the required
// columns first. Column names match case-insensitively; extra columns are ignored.
func readObservations(ctx context.Context, db *sql.DB, source, relation string) ([]core.Observation, error) {
	columns, err := probeColumns(ctx, db, relation)
	if err != nil {
		return nil, &core.LoadError{Source: source, Err: err}
	}

	selected, missing := matchColumns(columns)
	if len(missing) > 0 && unsplitHeader(columns) {
		return nil, &core.LoadError{Source: source, Err: fmt.Errorf("%w: found a single column %q", errMalformed, columns[0])}
	}
	if len(missing) > 0 {
		return nil, &core.LoadError{Source: source, Missing: missing}
	}

	quoted := make([]string, len(selected))
	for i, c := range selected {
		quoted[i] = quoteIdent(c)
	}
	//nolint:gosec // relation comes from a validated table name or a quoted literal
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), relation)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &core.LoadError{Source: source, Err: fmt.Errorf("failed to query observations: %w", err)}
	}
	defer func() { _ = rows.Close() }()

	var observations []core.Observation
	values := make([]any, len(selected))
	ptrs := make([]any, len(selected))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		rowNum := len(observations) + 1
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &core.LoadError{Source: source, Row: rowNum, Err: err}
		}
		obs, err := toObservation(values)
		if err != nil {
			return nil, &core.LoadError{Source: source, Row: rowNum, Err: err}
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.LoadError{Source: source, Err: fmt.Errorf("error iterating observations: %w", err)}
	}

	return observations, nil
}

// probeColumns returns the column names of relation without reading rows.
func probeColumns(ctx context.Context, db *sql.DB, relation string) ([]string, error) {
	//nolint:gosec // see readObservations
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", relation))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return rows.Columns()
}

// unsplitHeader reports whether a CSV sniffer gave up on the delimiter and
// returned each whole line as a single column, which happens when rows have
// differing field counts.
func unsplitHeader(columns []string) bool {
	if len(columns) != 1 {
		return false
	}
	return strings.Contains(columns[0], ",") || columns[0] == "column0"
}

// matchColumns maps core.RequiredColumns onto the source's actual column names.
func matchColumns(columns []string) (selected, missing []string) {
	byLower := make(map[string]string, len(columns))
	for _, c := range columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, ok := byLower[key]; !ok {
			byLower[key] = c
		}
	}

	for _, want := range core.RequiredColumns {
		actual, ok := byLower[want]
		if !ok {
			missing = append(missing, want)
			continue
		}
		selected = append(selected, actual)
	}
	return selected, missing
}

// toObservation converts one scanned row in core.RequiredColumns order.
func toObservation(values []any) (core.Observation, error) {
	var obs core.Observation
	var err error

	if obs.Country, err = toText(core.ColumnCountry, values[0]); err != nil {
		return obs, err
	}
	if obs.Continent, err = toText(core.ColumnContinent, values[1]); err != nil {
		return obs, err
	}

	rawMetric, err := toText(core.ColumnMetric, values[2])
	if err != nil {
		return obs, err
	}
	if obs.Metric, err = core.ParseMetric(rawMetric); err != nil {
		return obs, fmt.Errorf("column %s: %w", core.ColumnMetric, err)
	}

	if obs.Year, err = toYear(values[3]); err != nil {
		return obs, err
	}
	if obs.Value, err = toValue(values[4]); err != nil {
		return obs, err
	}
	return obs, nil
}

var (
	errNull      = errors.New("is NULL")
	errMalformed = errors.New("malformed rows: every row needs the same number of fields")
)

func toText(column string, v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", fmt.Errorf("column %s %w", column, errNull)
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("column %s: expected text, got %T", column, v)
	}
}

func toYear(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("column %s %w", core.ColumnYear, errNull)
	case int64:
		return int(t), nil
	case int32:
		return int(t), nil
	case int:
		return t, nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("column %s: %v is not an integer", core.ColumnYear, t)
		}
		return int(t), nil
	case string:
		return parseYear(t)
	case []byte:
		return parseYear(string(t))
	default:
		return 0, fmt.Errorf("column %s: expected integer, got %T", core.ColumnYear, v)
	}
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// "2000.0" is an integer year written by a float-typed export.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: %q is not an integer", core.ColumnYear, s)
	}
	return int(f), nil
}

func toValue(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("column %s %w", core.ColumnValue, errNull)
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case int:
		f = float64(t)
	case string, []byte:
		s := strings.TrimSpace(fmt.Sprintf("%s", t))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %q is not numeric", core.ColumnValue, s)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("column %s: expected number, got %T", core.ColumnValue, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: %v is not finite", core.ColumnValue, f)
	}
	return f, nil
}
