package dashboard

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/internal/dataset/datasettest"
	"github.com/leapstack-labs/gapview/internal/testutil"
	"github.com/leapstack-labs/gapview/internal/ui/features"
	"github.com/leapstack-labs/gapview/internal/ui/notifier"
	"github.com/leapstack-labs/gapview/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	handlers := NewHandlers(
		fixture.Datasets,
		fixture.SessionStore,
		fixture.Notifier,
		testutil.NewTestLogger(t),
		false,
	)
	return handlers, fixture
}

func postSelection(t *testing.T, h *Handlers, signals string, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/selection", strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")
	if prev != nil {
		req = features.WithCookies(req, prev)
	}
	rec := httptest.NewRecorder()
	h.SelectionSSE(rec, req)
	return rec
}

// =============================================================================
// HomePage Tests - full HTML page with server-rendered content
// =============================================================================

func TestHomePage(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.HomePage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>Dashboard - gapview</title>",
		"data-init",
		"/updates",
		`id="controls"`,
		`id="output"`,
		"<svg",
		"Population for countries in Europe",
		"This plot shows the Population from 1952 to 2007 for countries in Europe: France, Germany, Spain.",
		`<option value="Asia">Asia</option>`,
		`<option value="gdpPercap">GDP Per Capita</option>`,
	} {
		assert.Contains(t, body, want, "response should contain %q", want)
	}
	assert.NotContains(t, body, `id="data-table"`, "table hidden by default")

	var session bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			session = true
		}
	}
	assert.True(t, session, "session cookie should be set")
}

func TestHomePage_RestoresSessionSelection(t *testing.T) {
	h, _ := setupTestHandlers(t)

	first := postSelection(t, h, `{"continent":"Asia","metric":"lifeExp","showTable":true}`, nil)
	require.Equal(t, http.StatusOK, first.Code)

	req := features.WithCookies(httptest.NewRequest(http.MethodGet, "/", nil), first)
	rec := httptest.NewRecorder()
	h.HomePage(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Average Life Expectancy for countries in Asia")
	assert.Contains(t, body, `id="data-table"`)
	assert.Contains(t, body, "82.603")
}

// =============================================================================
// SelectionSSE Tests - control changes answered with fragment patches
// =============================================================================

func TestSelectionSSE_Scenario(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := postSelection(t, h, `{"continent":"Europe","metric":"pop","countries":["France","Germany"],"yearMin":2000,"yearMax":2000,"showTable":true}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 3, "controls, output and signals")
	assert.Contains(t, body, "This plot shows the Population from 2000 to 2000 for countries in Europe: France, Germany.")
	assert.Contains(t, body, "60,000,000")
	assert.Contains(t, body, "82,000,000")
	assert.NotContains(t, body, "42,459,667", "1952 is outside the year range")
	assert.Contains(t, body, `"countries":["France","Germany"]`)
}

func TestSelectionSSE_MetricChangeResetsDependentControls(t *testing.T) {
	h, _ := setupTestHandlers(t)

	first := postSelection(t, h, `{"continent":"Europe","metric":"pop","countries":["Spain"],"yearMin":1952,"yearMax":1960}`, nil)
	require.Contains(t, first.Body.String(), "for countries in Europe: Spain.")

	second := postSelection(t, h, `{"continent":"Europe","metric":"gdpPercap","countries":["Spain"],"yearMin":1952,"yearMax":1960}`, first)
	body := second.Body.String()

	assert.Contains(t, body, "This plot shows the GDP Per Capita from 1972 to 2002 for countries in Europe: France, Germany.")
	assert.Contains(t, body, `"yearMin":1972`)
	assert.NotContains(t, body, `<option value="Spain"`, "Spain has no gdpPercap rows")
}

func TestSelectionSSE_EmptyCountries(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := postSelection(t, h, `{"continent":"Europe","metric":"pop","countries":[],"showTable":true}`, nil)
	body := rec.Body.String()

	assert.Contains(t, body, "no countries selected.")
	assert.Contains(t, body, "No rows match the current selection.")
}

func TestSelectionSSE_BadSignals(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := postSelection(t, h, `{"continent":`, nil)

	assert.Contains(t, rec.Body.String(), "failed to read signals")
}

// =============================================================================
// Updates Tests - SSE endpoint for dataset reloads only
// =============================================================================

func TestUpdates_PatchesStatusOnBroadcast(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 300*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Updates(rec, req)
		close(done)
	}()

	// Wait for the handler to subscribe, then publish a new snapshot.
	require.Eventually(t, func() bool { return fixture.Notifier.Len() == 1 }, time.Second, 5*time.Millisecond)
	version := fixture.Datasets.Swap(datasettest.New(t,
		datasettest.Row("Kenya", "Africa", core.MetricPopulation, 2007, 35610177),
	))
	fixture.Notifier.Broadcast(notifier.Event{Version: version})

	<-done

	body := rec.Body.String()
	assert.GreaterOrEqual(t, strings.Count(body, "event:"), 1)
	assert.Contains(t, body, "snapshot 2")
	assert.Contains(t, body, "1 observations")
	assert.Contains(t, body, "@post('/api/selection')")
}

func TestUpdates_NoInitialState(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := features.RequestWithTimeout(t, httptest.NewRequest(http.MethodGet, "/updates", nil), 50*time.Millisecond)
	rec := httptest.NewRecorder()

	h.Updates(rec, req)

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"), "should have no SSE events without broadcast")
}

// =============================================================================
// Stateless API Tests
// =============================================================================

func TestChartSVG(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "scenario",
			query:      "?continent=Europe&metric=pop&country=France&country=Germany&from=2000&to=2000",
			wantStatus: http.StatusOK,
			wantBody:   []string{"<svg", "Population for countries in Europe", "France", "Germany"},
		},
		{
			name:       "defaults",
			query:      "",
			wantStatus: http.StatusOK,
			wantBody:   []string{"<svg", "Spain"},
		},
		{
			name:       "bad year",
			query:      "?from=nineteen",
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{`parameter from: "nineteen" is not an integer`},
		},
		{
			name:       "oversized",
			query:      "?width=10000",
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"exceeds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t)

			rec := httptest.NewRecorder()
			h.ChartSVG(rec, httptest.NewRequest(http.MethodGet, "/api/chart.svg"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestChartPNG(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.ChartPNG(rec, httptest.NewRequest(http.MethodGet, "/api/chart.png?continent=Asia&width=400&height=300", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestViewJSON(t *testing.T) {
	h, _ := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.ViewJSON(rec, httptest.NewRequest(http.MethodGet, "/api/view?continent=Europe&metric=gdpPercap&country=Germany&table=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Germany"}, resp.State.Selection.Countries)
	assert.Equal(t, []string{"France", "Germany"}, resp.State.Controls.Countries)
	assert.Equal(t, "GDP Per Capita for countries in Europe", resp.View.Chart.Title)
	require.NotNil(t, resp.View.Table)
	assert.Len(t, resp.View.Table.Rows, 2)
	assert.Equal(t, uint64(1), resp.Version)
}
