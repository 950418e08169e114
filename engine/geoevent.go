/*
geoevent.go - Codec for the backend's compact check-in/check-out encoding

PURPOSE:
  Each logged time segment carries a pipe-delimited event string recording
  where and when an employee checked in and out:

    I|<time>|<lat>|<lng>                         check-in only
    I|<time>|<lat>|<lng>O|<time>|<lat>|<lng>     check-in + check-out

  The backend APPENDS an "O|..." segment on every checkout, so a segment
  that was checked out, resumed, and checked out again contains several
  "O|" segments back to back. Only the most recent checkout is
  authoritative.

GRAMMAR:
  event    := [checkin] checkout*
  checkin  := "I|" payload
  checkout := "O|" payload
  payload  := time [ "|" lat [ "|" lng ] ]

DECODING RULES:
  - Split on the literal "O|": the first piece (leading "I|" stripped) is
    the check-in payload; the LAST remaining piece is the check-out payload.
  - Each payload splits on "|" into time / lat / lng; missing or
    non-numeric coordinates decode to nil, never an error.
  - Decoding is total: malformed input degrades to nil halves.

SEE ALSO:
  - daylog.go: decodes every time segment through this codec
*/
package engine

import (
	"strconv"
	"strings"
)

const (
	checkInMarker  = "I|"
	checkOutMarker = "O|"
)

// =============================================================================
// GEO EVENT - Decoded check-in/check-out pair
// =============================================================================

// GeoMark is one side of a check-in/check-out cycle.
type GeoMark struct {
	Time string   // wall-clock token as recorded, e.g. "09:00"
	Lat  *float64 // nil when absent or non-numeric
	Lng  *float64
}

// GeoEvent is the decoded form of one encoded event string.
// Either half is nil when its payload is absent.
type GeoEvent struct {
	CheckIn  *GeoMark
	CheckOut *GeoMark
}

// DecodeGeoEvent parses an encoded event string. It never fails: empty or
// malformed input yields a GeoEvent with nil halves.
func DecodeGeoEvent(encoded string) GeoEvent {
	if encoded == "" {
		return GeoEvent{}
	}

	pieces := strings.Split(encoded, checkOutMarker)

	inPayload := strings.TrimPrefix(pieces[0], checkInMarker)
	var outPayload string
	if len(pieces) > 1 {
		// Multiple checkout appends keep only the most recent.
		outPayload = pieces[len(pieces)-1]
	}

	return GeoEvent{
		CheckIn:  decodeMark(inPayload),
		CheckOut: decodeMark(outPayload),
	}
}

func decodeMark(payload string) *GeoMark {
	if payload == "" {
		return nil
	}
	fields := strings.SplitN(payload, "|", 3)

	mark := &GeoMark{Time: fields[0]}
	if len(fields) > 1 {
		mark.Lat = parseCoord(fields[1])
	}
	if len(fields) > 2 {
		mark.Lng = parseCoord(fields[2])
	}
	return mark
}

func parseCoord(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// =============================================================================
// ENCODER - Canonical wire form
// =============================================================================

// Encode renders the event in its canonical wire form. A decoded canonical
// single check-in/check-out pair round-trips through Encode unchanged.
func (e GeoEvent) Encode() string {
	var b strings.Builder
	if e.CheckIn != nil {
		b.WriteString(checkInMarker)
		writeMark(&b, e.CheckIn)
	}
	if e.CheckOut != nil {
		b.WriteString(checkOutMarker)
		writeMark(&b, e.CheckOut)
	}
	return b.String()
}

func writeMark(b *strings.Builder, m *GeoMark) {
	b.WriteString(m.Time)
	if m.Lat != nil {
		b.WriteString("|")
		b.WriteString(strconv.FormatFloat(*m.Lat, 'f', -1, 64))
	}
	if m.Lng != nil {
		b.WriteString("|")
		b.WriteString(strconv.FormatFloat(*m.Lng, 'f', -1, 64))
	}
}
