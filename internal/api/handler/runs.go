package handler

import (
	"net/http"

	"github.com/hindsightlab/hindsight/internal/api/response"
	"github.com/hindsightlab/hindsight/internal/archive"
)

// RunsHandler serves archived run results.
type RunsHandler struct {
	store archive.Store
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store archive.Store) *RunsHandler {
	return &RunsHandler{store: store}
}

// List returns the IDs of all archived runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := archive.ListRuns(r.Context(), h.store)
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"runs": ids})
}

// Get returns one archived run result by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := archive.ReadResult(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		response.Error(w, response.StatusFor(err), err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}
