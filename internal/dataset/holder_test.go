package dataset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gapview/pkg/core"
)

func TestHolder(t *testing.T) {
	first, err := New("first", []core.Observation{{Country: "France", Continent: "Europe", Metric: core.MetricPopulation, Year: 2000, Value: 1}})
	require.NoError(t, err)
	second, err := New("second", []core.Observation{{Country: "Japan", Continent: "Asia", Metric: core.MetricPopulation, Year: 2000, Value: 2}})
	require.NoError(t, err)

	h := NewHolder(first)
	assert.Same(t, first, h.Load())
	assert.Equal(t, uint64(1), h.Version())

	snapshot := h.Load()
	assert.Equal(t, uint64(2), h.Swap(second))
	assert.Same(t, second, h.Load())
	assert.Equal(t, "first", snapshot.Source(), "earlier snapshot is unaffected")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NotNil(t, h.Load())
			}
		}()
	}
	for range 10 {
		h.Swap(first)
	}
	wg.Wait()
	assert.Equal(t, uint64(12), h.Version())
}
