package web

import (
	"net/http"
	"strings"

	"brickyard/internal/application/orchestrators"
	"brickyard/internal/application/projections"
)

func handleGetFamily(w http.ResponseWriter, r *http.Request) {
	f, err := projections.QueryGetFamily(r.Context(), projections.GetFamilyQuery{
		FamilyID: r.PathValue("id"),
	}, projections.GetFamilyDeps{FamilyStore: stores.FamilyStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyDTO(f))
}

// handleAdminListFamilies returns every registered family. Admin only.
func handleAdminListFamilies(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	list, err := projections.QueryListFamilies(r.Context(), projections.ListFamiliesDeps{
		FamilyStore: stores.FamilyStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]familyDTO, 0, len(list))
	for _, f := range list {
		out = append(out, toFamilyDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

type childRequest struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	InterestTags []string `json:"interestTags"`
}

// createFamilyRequest keeps Children as a pointer so a missing list can be
// told apart from an empty one.
type createFamilyRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ParentName  string          `json:"parentName"`
	ParentEmail string          `json:"parentEmail"`
	Children    *[]childRequest `json:"children"`
}

// handleCreateFamily registers a family. Missing family or child IDs are generated.
func handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var req createFamilyRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ParentName) == "" ||
		strings.TrimSpace(req.ParentEmail) == "" || req.Children == nil {
		writeFailure(w, http.StatusBadRequest, "Missing required family data")
		return
	}

	children := make([]orchestrators.ChildInput, 0, len(*req.Children))
	for _, c := range *req.Children {
		children = append(children, orchestrators.ChildInput{
			ID:           c.ID,
			Name:         c.Name,
			Age:          c.Age,
			InterestTags: c.InterestTags,
		})
	}
	f, err := orchestrators.ExecuteCreateFamily(r.Context(), orchestrators.CreateFamilyInput{
		ID:          req.ID,
		Name:        req.Name,
		ParentName:  req.ParentName,
		ParentEmail: req.ParentEmail,
		Children:    children,
	}, orchestrators.CreateFamilyDeps{
		FamilyStore: stores.FamilyStore,
		GenerateID:  generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFamilyDTO(f))
}
