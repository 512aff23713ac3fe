package services

import (
	"math"
	"strings"
	"time"
)

// CheckInHour is the fixed time of day every check-in and check-out instant
// is pinned to.
const CheckInHour = 12

const dateLayout = "2006-01-02"

// LineItem is one priced unit of a stay.
type LineItem struct {
	RoomID   uint
	Rate     float64
	Quantity int
}

type LineQuote struct {
	RoomID   uint    `json:"roomId"`
	Rate     float64 `json:"rate"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type Quote struct {
	CheckIn  time.Time   `json:"checkIn"`
	CheckOut time.Time   `json:"checkOut"`
	Nights   int         `json:"nights"`
	Lines    []LineQuote `json:"lines"`
	Total    float64     `json:"total"`
}

// NoonOf returns 12:00 in loc on the calendar date t falls on in loc.
func NoonOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), CheckInHour, 0, 0, 0, loc)
}

// NormalizeStayDate parses a bare date (YYYY-MM-DD, read as a date in loc)
// or an RFC3339 timestamp and pins it to noon of its calendar date in loc.
func NormalizeStayDate(raw, field string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, invalid(field, "is required")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return NoonOf(t, loc), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return NoonOf(t, loc), nil
	}
	return time.Time{}, invalid(field, "must be a date (YYYY-MM-DD) or an RFC3339 timestamp")
}

// CountNights is ceil(elapsed / 24h) between the two stay instants, where
// elapsed is measured on the wall clock so a DST change never adds or drops
// a night. The result can be zero or negative for an invalid range.
func CountNights(checkIn, checkOut time.Time) int {
	ci := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), checkIn.Hour(), checkIn.Minute(), checkIn.Second(), checkIn.Nanosecond(), time.UTC)
	co := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), checkOut.Hour(), checkOut.Minute(), checkOut.Second(), checkOut.Nanosecond(), time.UTC)
	elapsed := co.Sub(ci)
	if elapsed <= 0 {
		return int(elapsed / (24 * time.Hour))
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotal prices a stay: sum(rate * quantity * nights). Inputs must
// already be noon-normalized; the range must be at least one night.
func ComputeTotal(checkIn, checkOut time.Time, items []LineItem) (float64, error) {
	q, err := QuoteStay(checkIn, checkOut, items)
	if err != nil {
		return 0, err
	}
	return q.Total, nil
}

// QuoteStay is ComputeTotal with the per-line breakdown.
func QuoteStay(checkIn, checkOut time.Time, items []LineItem) (Quote, error) {
	if !checkOut.After(checkIn) {
		return Quote{}, invalid("check_out", "must be after check_in")
	}
	nights := CountNights(checkIn, checkOut)
	if nights < 1 {
		return Quote{}, invalid("check_out", "stay must be at least one night")
	}
	if len(items) == 0 {
		return Quote{}, invalid("rooms", "at least one room is required")
	}

	q := Quote{CheckIn: checkIn, CheckOut: checkOut, Nights: nights, Lines: make([]LineQuote, 0, len(items))}
	var total float64
	for _, it := range items {
		if it.Rate < 0 {
			return Quote{}, invalid("rooms", "room %d has a negative rate", it.RoomID)
		}
		if it.Quantity < 1 {
			return Quote{}, invalid("rooms", "room %d quantity must be at least 1", it.RoomID)
		}
		sub := it.Rate * float64(it.Quantity) * float64(nights)
		total += sub
		q.Lines = append(q.Lines, LineQuote{RoomID: it.RoomID, Rate: it.Rate, Quantity: it.Quantity, Subtotal: roundCents(sub)})
	}
	q.Total = roundCents(total)
	return q, nil
}
