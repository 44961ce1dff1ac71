package web

import (
	"net/http"
	"strings"

	"brickyard/internal/application/orchestrators"
	"brickyard/internal/application/projections"
)

// handleListSessions returns every session ordered by start time.
func handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListSessions(r.Context(), projections.ListSessionsDeps{
		SessionStore: stores.SessionStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTOs(list))
}

// handleGetSession returns one session with its notes rendered from markdown.
func handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := projections.QueryGetSession(r.Context(), projections.GetSessionQuery{
		SessionID: r.PathValue("id"),
	}, projections.ListSessionsDeps{SessionStore: stores.SessionStore})
	if err != nil {
		writeError(w, err)
		return
	}
	dto := toSessionDTO(s)
	dto.NotesHTML = renderMarkdown(s.Notes)
	writeJSON(w, http.StatusOK, dto)
}

// handleDiscoverSessions ranks sessions for one child.
// Query: familyId, childId, tags (comma separated, all required), q (title search).
func handleDiscoverSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryDiscoverSessions(r.Context(), projections.DiscoverSessionsQuery{
		FamilyID: q.Get("familyId"),
		ChildID:  q.Get("childId"),
		Tags:     splitList(q.Get("tags")),
		Search:   q.Get("q"),
	}, projections.DiscoverSessionsDeps{
		SessionStore: stores.SessionStore,
		FamilyStore:  stores.FamilyStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDiscoverDTO(result))
}

type createSessionRequest struct {
	Title    string   `json:"title"`
	StartTs  int64    `json:"startTs"`
	EndTs    int64    `json:"endTs"`
	AgeMin   int      `json:"ageMin"`
	AgeMax   int      `json:"ageMax"`
	Tags     []string `json:"tags"`
	Type     string   `json:"type"`
	Location string   `json:"location"`
	Capacity int      `json:"capacity"`
	Notes    string   `json:"notes"`
}

// handleCreateSession schedules a session. Admin only.
func handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req createSessionRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := orchestrators.ExecuteCreateSession(r.Context(), orchestrators.CreateSessionInput{
		Title:    req.Title,
		StartTs:  req.StartTs,
		EndTs:    req.EndTs,
		AgeMin:   req.AgeMin,
		AgeMax:   req.AgeMax,
		Tags:     req.Tags,
		Type:     req.Type,
		Location: req.Location,
		Capacity: req.Capacity,
		Notes:    req.Notes,
	}, orchestrators.CreateSessionDeps{
		SessionStore: stores.SessionStore,
		GenerateID:   generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s))
}

// splitList parses a comma-separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
