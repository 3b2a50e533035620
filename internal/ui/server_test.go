package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/internal/dataset"
	"github.com/leapstack-labs/gapview/internal/testutil"
)

const europeCSV = `country,continent,metric,year,value
France,Europe,pop,2000,60000000
Germany,Europe,pop,2000,82000000
`

const withAsiaCSV = europeCSV + `Japan,Asia,pop,2000,126000000
`

func newTestServer(t *testing.T, watch bool) (*Server, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gapminder.csv")
	require.NoError(t, os.WriteFile(path, []byte(europeCSV), 0o600))

	logger := testutil.NewTestLogger(t)
	cfg := dataset.Config{Location: path}
	ds, err := dataset.Load(context.Background(), cfg, logger)
	require.NoError(t, err)

	return NewServer(Config{
		Dataset:       ds,
		DatasetConfig: cfg,
		Watch:         watch,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        logger,
	}), path
}

func TestServer_Handler(t *testing.T) {
	s, _ := newTestServer(t, false)

	h, err := s.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "France, Germany")
}

func TestServer_Reload(t *testing.T) {
	s, path := newTestServer(t, false)
	events := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(events)

	require.NoError(t, os.WriteFile(path, []byte(withAsiaCSV), 0o600))
	require.NoError(t, s.Reload(context.Background()))

	assert.Equal(t, 3, s.Dataset().Len())
	select {
	case ev := <-events:
		assert.Equal(t, uint64(2), ev.Version)
	case <-time.After(time.Second):
		t.Fatal("reload was not broadcast")
	}
}

func TestServer_ReloadFailureKeepsSnapshot(t *testing.T) {
	s, path := newTestServer(t, false)
	before := s.Dataset()

	require.NoError(t, os.WriteFile(path, []byte("country,continent\nFrance,Europe\n"), 0o600))
	require.Error(t, s.Reload(context.Background()))

	assert.Same(t, before, s.Dataset())
}

func TestServer_WatchDataset(t *testing.T) {
	s, path := newTestServer(t, true)
	events := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.watchDataset(ctx) }()

	// Rewrite, slower than the debounce, until the watcher is up and reloads.
	require.Eventually(t, func() bool {
		select {
		case ev := <-events:
			return ev.Version == 2
		default:
			_ = os.WriteFile(path, []byte(withAsiaCSV), 0o600)
			return false
		}
	}, 10*time.Second, 2*reloadDebounce+100*time.Millisecond)

	assert.Equal(t, 3, s.Dataset().Len())

	cancel()
	require.NoError(t, <-done)
}
