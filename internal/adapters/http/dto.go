package web

import (
	"brickyard/internal/application/projections"
	"brickyard/internal/domain/booking"
	"brickyard/internal/domain/family"
	"brickyard/internal/domain/legoset"
	"brickyard/internal/domain/session"
)

// JSON views of domain records. Field names match the front-end's camelCase types.

type sessionDTO struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	StartTs   int64    `json:"startTs"`
	EndTs     int64    `json:"endTs"`
	AgeMin    int      `json:"ageMin"`
	AgeMax    int      `json:"ageMax"`
	Tags      []string `json:"tags"`
	Type      string   `json:"type"`
	Location  string   `json:"location"`
	Capacity  int      `json:"capacity"`
	Notes     string   `json:"notes,omitempty"`
	NotesHTML string   `json:"notesHtml,omitempty"`
}

func toSessionDTO(s session.Session) sessionDTO {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return sessionDTO{
		ID:       s.ID,
		Title:    s.Title,
		StartTs:  s.StartTs,
		EndTs:    s.EndTs,
		AgeMin:   s.AgeMin,
		AgeMax:   s.AgeMax,
		Tags:     tags,
		Type:     s.Type,
		Location: s.Location,
		Capacity: s.Capacity,
		Notes:    s.Notes,
	}
}

func toSessionDTOs(list []session.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toSessionDTO(s))
	}
	return out
}

type childDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	InterestTags []string `json:"interestTags"`
}

func toChildDTO(c family.Child) childDTO {
	tags := c.InterestTags
	if tags == nil {
		tags = []string{}
	}
	return childDTO{ID: c.ID, Name: c.Name, Age: c.Age, InterestTags: tags}
}

type familyDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ParentName  string     `json:"parentName"`
	ParentEmail string     `json:"parentEmail"`
	Children    []childDTO `json:"children"`
}

func toFamilyDTO(f family.Family) familyDTO {
	children := make([]childDTO, 0, len(f.Children))
	for _, c := range f.Children {
		children = append(children, toChildDTO(c))
	}
	return familyDTO{
		ID:          f.ID,
		Name:        f.Name,
		ParentName:  f.ParentName,
		ParentEmail: f.ParentEmail,
		Children:    children,
	}
}

type bookingDTO struct {
	ID            string `json:"id"`
	SessionID     string `json:"sessionId"`
	FamilyID      string `json:"familyId"`
	ChildID       string `json:"childId"`
	Status        string `json:"status"`
	ApprovalToken string `json:"approvalToken"`
	CreatedTs     int64  `json:"createdTs"`
	Notes         string `json:"notes,omitempty"`
}

func toBookingDTO(b booking.Booking) bookingDTO {
	return bookingDTO{
		ID:            b.ID,
		SessionID:     b.SessionID,
		FamilyID:      b.FamilyID,
		ChildID:       b.ChildID,
		Status:        b.Status,
		ApprovalToken: b.ApprovalToken,
		CreatedTs:     b.CreatedTs,
		Notes:         b.Notes,
	}
}

// enrichedBookingDTO omits session or child when the reference is gone.
type enrichedBookingDTO struct {
	bookingDTO
	Session *sessionDTO `json:"session,omitempty"`
	Child   *childDTO   `json:"child,omitempty"`
}

func toEnrichedBookingDTOs(list []projections.EnrichedBooking) []enrichedBookingDTO {
	out := make([]enrichedBookingDTO, 0, len(list))
	for _, eb := range list {
		dto := enrichedBookingDTO{bookingDTO: toBookingDTO(eb.Booking)}
		if eb.Session != nil {
			s := toSessionDTO(*eb.Session)
			dto.Session = &s
		}
		if eb.Child != nil {
			c := toChildDTO(*eb.Child)
			dto.Child = &c
		}
		out = append(out, dto)
	}
	return out
}

type scoredSessionDTO struct {
	sessionDTO
	Score int `json:"score"`
}

type discoverDTO struct {
	ChildID  string             `json:"childId"`
	MaxScore int                `json:"maxScore"`
	Sessions []scoredSessionDTO `json:"sessions"`
}

func toDiscoverDTO(r projections.DiscoverSessionsResult) discoverDTO {
	sessions := make([]scoredSessionDTO, 0, len(r.Sessions))
	for _, s := range r.Sessions {
		sessions = append(sessions, scoredSessionDTO{sessionDTO: toSessionDTO(s.Session), Score: s.Score})
	}
	return discoverDTO{ChildID: r.ChildID, MaxScore: r.MaxScore, Sessions: sessions}
}

type legoSetDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Shelf           string `json:"shelf"`
	PieceCount      int    `json:"pieceCount"`
	InstructionsURL string `json:"instructionsUrl,omitempty"`
}

func toLegoSetDTO(s legoset.Set) legoSetDTO {
	return legoSetDTO{
		ID:              s.ID,
		Title:           s.Title,
		Shelf:           s.Shelf,
		PieceCount:      s.PieceCount,
		InstructionsURL: s.InstructionsURL,
	}
}

func toLegoSetDTOs(list []legoset.Set) []legoSetDTO {
	out := make([]legoSetDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toLegoSetDTO(s))
	}
	return out
}

type healthDTO struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	SchemaVersion int    `json:"schemaVersion"`
}
