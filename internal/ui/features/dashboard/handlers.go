package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
	"github.com/leapstack-labs/gapview/internal/ui/components"
	"github.com/leapstack-labs/gapview/internal/ui/notifier"
)

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	datasets     *dataset.Holder
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(datasets *dataset.Holder, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		datasets:     datasets,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
}

// HomePage renders the dashboard with the session's selection, or the
// default selection for a new session.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	ds := h.datasets.Load()
	sess := h.session(r)

	state := selection.Default(ds)
	if sel, ok := storedSelection(sess); ok {
		state = selection.Resolve(ds, selection.FromSelection(sel))
	}

	if err := saveSelection(w, r, sess, state.Selection); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}

	d, err := h.dashboard(ds, state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := components.Page("Dashboard", h.isDev, d).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SelectionSSE applies the browser's signals to the session's selection and
// patches controls, output and signals with the resolved result.
func (h *Handlers) SelectionSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var req selection.Request
	if err := datastar.ReadSignals(r, &req); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
		return
	}

	ds := h.datasets.Load()
	sess := h.session(r)
	if prev, ok := storedSelection(sess); ok {
		req = selection.Transition(prev, req)
	}
	state := selection.Resolve(ds, req)

	// The cookie has to be written before NewSSE flushes the headers.
	if err := saveSelection(w, r, sess, state.Selection); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}

	sse := datastar.NewSSE(w, r)

	h.logger.Debug("selection changed",
		"session", sessionID(sess),
		"continent", state.Selection.Continent,
		"metric", state.Selection.Metric,
		"countries", len(state.Selection.Countries),
		"years", fmt.Sprintf("%d-%d", state.Selection.Years.Min, state.Selection.Years.Max),
	)

	d, err := h.dashboard(ds, state)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	if err := sse.PatchElementTempl(components.Controls(state)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.Output(d)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.MarshalAndPatchSignals(components.SignalsFor(state)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Updates is the long-lived SSE endpoint. It does not send initial state;
// when a new dataset snapshot is published it patches the status footer,
// which makes the browser re-post its selection against the new data.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-updates:
			ds := h.datasets.Load()
			d := components.Dashboard{
				Source:  ds.Source(),
				Rows:    ds.Len(),
				Version: ev.Version,
				Refresh: true,
			}
			if err := sse.PatchElementTempl(components.Status(d)); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// ChartSVG renders the chart for the selection described by the query string.
func (h *Handlers) ChartSVG(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, "image/svg+xml", render.Chart.SVG)
}

// ChartPNG is ChartSVG as a PNG image.
func (h *Handlers) ChartPNG(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, "image/png", render.Chart.PNG)
}

func (h *Handlers) chart(w http.ResponseWriter, r *http.Request, contentType string, draw func(render.Chart, io.Writer, render.Size) error) {
	ds := h.datasets.Load()

	req, size, err := requestFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := selection.Resolve(ds, req)
	view := render.Render(ds.Observations(), state.Selection)

	var buf bytes.Buffer
	if err := draw(view.Chart, &buf, size); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// ViewJSON returns the resolved selection, its controls and the rendered
// view as JSON.
func (h *Handlers) ViewJSON(w http.ResponseWriter, r *http.Request) {
	ds := h.datasets.Load()

	req, _, err := requestFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := selection.Resolve(ds, req)
	resp := ViewResponse{
		State:   state,
		View:    render.Render(ds.Observations(), state.Selection),
		Version: h.datasets.Version(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("failed to write view", "error", err)
	}
}

// dashboard renders the fragments' data for state over ds.
func (h *Handlers) dashboard(ds *dataset.Dataset, state selection.State) (components.Dashboard, error) {
	view := render.Render(ds.Observations(), state.Selection)
	return components.NewDashboard(state, view, ds.Source(), ds.Len(), h.datasets.Version())
}

// requestFromQuery parses continent, metric, country (repeatable), from, to,
// table, width and height. Absent parameters keep their defaults.
func requestFromQuery(q url.Values) (selection.Request, render.Size, error) {
	req := selection.Request{
		Continent: q.Get("continent"),
		Metric:    q.Get("metric"),
		ShowTable: q.Get("table") == "1" || q.Get("table") == "true",
	}
	if countries, ok := q["country"]; ok {
		req.Countries = countries
	}

	var size render.Size
	ints := []struct {
		name string
		dst  **int
		size *int
	}{
		{name: "from", dst: &req.YearMin},
		{name: "to", dst: &req.YearMax},
		{name: "width", size: &size.Width},
		{name: "height", size: &size.Height},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, size, fmt.Errorf("parameter %s: %q is not an integer", p.name, raw)
		}
		if p.dst != nil {
			*p.dst = &n
		} else {
			*p.size = n
		}
	}
	if size.Width > 4096 || size.Height > 4096 {
		return req, size, fmt.Errorf("chart size %dx%d exceeds 4096x4096", size.Width, size.Height)
	}
	return req, size, nil
}
