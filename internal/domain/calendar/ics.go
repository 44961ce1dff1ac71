package calendar

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo

	"brickyard/internal/domain/booking"
	"brickyard/internal/domain/family"
	"brickyard/internal/domain/session"
)

// Export constants.
const (
	DefaultTimezone = "America/New_York"
	UIDDomain       = "communitybrickyard.com"
	ProductID       = "-//CommunityBrickyard//FrictionlessFamily//EN"
	ContentType     = "text/calendar; charset=utf-8"

	localLayout   = "20060102T150405"
	utcLayout     = "20060102T150405Z"
	maxLineOctets = 75
	crlf          = "\r\n"
)

// ErrNotConfirmed is returned when exporting a booking that is not confirmed.
var ErrNotConfirmed = errors.New("booking not confirmed")

// Options controls zone and clock for an export.
type Options struct {
	// Timezone is the IANA zone used for DTSTART/DTEND. Empty means DefaultTimezone.
	Timezone string
	// Now supplies DTSTAMP. Nil means time.Now.
	Now func() time.Time
}

// ExportBooking renders a confirmed booking as an RFC 5545 VCALENDAR with one VEVENT.
// Output is identical for identical inputs apart from DTSTAMP. If the zone cannot be
// loaded, DTSTART/DTEND fall back to UTC values without a TZID parameter.
// PRE: b.Status is confirmed; s, f, c are the records b references
// POST: returns CRLF-separated lines ending in END:VCALENDAR with no trailing CRLF
func ExportBooking(b booking.Booking, s session.Session, f family.Family, c family.Child, opts Options) (string, error) {
	if !b.IsConfirmed() {
		return "", ErrNotConfirmed
	}

	tz := opts.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	loc, locErr := time.LoadLocation(tz)
	dateProp := func(name string, t time.Time) string {
		if locErr != nil {
			return name + ":" + t.UTC().Format(utcLayout)
		}
		return name + ";TZID=" + tz + ":" + t.In(loc).Format(localLayout)
	}

	notes := s.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "N/A"
	}
	description := "Session for " + c.Name + " (" + f.Name + " Family).\n" +
		"Session Type: " + s.Type + ".\n" +
		"Tags: " + strings.Join(s.Tags, ", ") + ".\n" +
		"Notes: " + notes

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"BEGIN:VEVENT",
		"UID:" + b.ID + "@" + UIDDomain,
		"DTSTAMP:" + now().UTC().Format(utcLayout),
		dateProp("DTSTART", s.Start()),
		dateProp("DTEND", s.End()),
		"SUMMARY:" + escapeText("Lego Club: "+s.Title+" for "+c.Name),
		"DESCRIPTION:" + escapeText(description),
		"LOCATION:" + escapeText(s.Location),
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString(crlf)
		}
		sb.WriteString(foldLine(line))
	}
	return sb.String(), nil
}

// Filename returns the attachment filename for a booking export.
func Filename(bookingID string) string {
	return "booking-" + bookingID + ".ics"
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", "",
)

// escapeText escapes a TEXT value; newlines become the literal two-character \n.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// foldLine splits lines longer than 75 octets into CRLF + space continuations
// without cutting a UTF-8 sequence.
func foldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	var sb strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			// no rune start in range: invalid UTF-8, cut at octets
			cut = limit
		}
		sb.WriteString(line[:cut])
		sb.WriteString(crlf + " ")
		line = line[cut:]
		// continuation lines carry the leading space
		limit = maxLineOctets - 1
	}
	sb.WriteString(line)
	return sb.String()
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
