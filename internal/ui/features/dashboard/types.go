package dashboard

import (
	"github.com/leapstack-labs/gapview/internal/render"
	"github.com/leapstack-labs/gapview/internal/selection"
)

// ViewResponse is the body of GET /api/view.
type ViewResponse struct {
	State   selection.State `json:"state"`
	View    render.View     `json:"view"`
	Version uint64          `json:"version"`
}
