package web

import (
	"net/http"

	"brickyard/internal/application/orchestrators"
	"brickyard/internal/application/projections"
)

func handleListSets(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListLegoSets(r.Context(), projections.ListLegoSetsQuery{
		Search: r.URL.Query().Get("q"),
	}, projections.ListLegoSetsDeps{LegoSetStore: stores.LegoSetStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLegoSetDTOs(list))
}

type createSetRequest struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Shelf           string `json:"shelf"`
	PieceCount      int    `json:"pieceCount"`
	InstructionsURL string `json:"instructionsUrl"`
}

// handleCreateSet adds a set to the catalog. Admin only.
func handleCreateSet(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req createSetRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := orchestrators.ExecuteCreateLegoSet(r.Context(), orchestrators.CreateLegoSetInput{
		ID:              req.ID,
		Title:           req.Title,
		Shelf:           req.Shelf,
		PieceCount:      req.PieceCount,
		InstructionsURL: req.InstructionsURL,
	}, orchestrators.CreateLegoSetDeps{LegoSetStore: stores.LegoSetStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLegoSetDTO(s))
}
