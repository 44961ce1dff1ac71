package web

import (
	"fmt"
	"net/http"
	"strconv"

	"brickyard/internal/application/listutil"
	"brickyard/internal/application/orchestrators"
	"brickyard/internal/application/projections"
	"brickyard/internal/domain/calendar"
)

type createBookingRequest struct {
	SessionID string `json:"sessionId"`
	FamilyID  string `json:"familyId"`
	ChildID   string `json:"childId"`
	Notes     string `json:"notes"`
}

// handleCreateBooking records a pending booking and returns it with its approval token.
func handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := orchestrators.ExecuteCreateBooking(r.Context(), orchestrators.CreateBookingInput{
		SessionID: req.SessionID,
		FamilyID:  req.FamilyID,
		ChildID:   req.ChildID,
		Notes:     req.Notes,
	}, orchestrators.CreateBookingDeps{
		BookingStore:  stores.BookingStore,
		SessionStore:  stores.SessionStore,
		FamilyStore:   stores.FamilyStore,
		Strict:        settings.StrictBookings,
		GenerateID:    generateID,
		GenerateToken: generateToken,
		Now:           timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	recordBookingEvent(eventCreated, b)
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

// handleListBookings returns one family's bookings, newest first.
func handleListBookings(w http.ResponseWriter, r *http.Request) {
	listBookings(w, r, projections.ListBookingsQuery{FamilyID: r.URL.Query().Get("familyId")})
}

// handleAdminListBookings returns every booking, newest first. Admin only.
// With page or per_page the result is one page and X-Total-Count carries the full count.
func handleAdminListBookings(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	list, ok := queryBookings(w, r, projections.ListBookingsQuery{All: true})
	if !ok {
		return
	}
	if page, paged := listutil.ParsePageParams(r.URL.Query()); paged {
		var info listutil.PageInfo
		list, info = listutil.Paginate(list, page)
		w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
		w.Header().Set("X-Page", strconv.Itoa(info.Page))
		w.Header().Set("X-Total-Pages", strconv.Itoa(info.TotalPages))
	}
	writeJSON(w, http.StatusOK, toEnrichedBookingDTOs(list))
}

func listBookings(w http.ResponseWriter, r *http.Request, query projections.ListBookingsQuery) {
	list, ok := queryBookings(w, r, query)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEnrichedBookingDTOs(list))
}

// queryBookings runs the enriched list projection, writing the error response on failure.
func queryBookings(w http.ResponseWriter, r *http.Request, query projections.ListBookingsQuery) ([]projections.EnrichedBooking, bool) {
	list, err := projections.QueryListBookings(r.Context(), query, projections.ListBookingsDeps{
		BookingStore: stores.BookingStore,
		SessionStore: stores.SessionStore,
		FamilyStore:  stores.FamilyStore,
	})
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return list, true
}

// handleApproveBooking confirms a pending booking. The token comes from ?token=.
func handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	b, err := orchestrators.ExecuteApproveBooking(r.Context(), orchestrators.ApproveBookingInput{
		BookingID: r.PathValue("id"),
		Token:     r.URL.Query().Get("token"),
	}, orchestrators.ApproveBookingDeps{BookingStore: stores.BookingStore})
	if err != nil {
		writeError(w, err)
		return
	}
	recordBookingEvent(eventApproved, b)
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// handleCancelBooking marks a booking cancelled. Admin only.
func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	b, err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{
		BookingID: r.PathValue("id"),
	}, orchestrators.CancelBookingDeps{BookingStore: stores.BookingStore})
	if err != nil {
		writeError(w, err)
		return
	}
	recordBookingEvent(eventCancelled, b)
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// handleBookingCalendar serves a confirmed booking as an .ics attachment.
// Errors still use the JSON envelope.
func handleBookingCalendar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := projections.QueryBookingCalendar(r.Context(), projections.BookingCalendarQuery{
		BookingID: id,
	}, projections.BookingCalendarDeps{
		BookingStore: stores.BookingStore,
		SessionStore: stores.SessionStore,
		FamilyStore:  stores.FamilyStore,
		Timezone:     settings.CalendarTimezone,
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	bookingEvents.WithLabelValues(eventExported).Inc()
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Content))
}
