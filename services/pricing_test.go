package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal_TwoRoomsThreeNights(t *testing.T) {
	total, err := ComputeTotal(noon(2025, 11, 10), noon(2025, 11, 13), []LineItem{
		{RoomID: 1, Rate: 100, Quantity: 1},
		{RoomID: 2, Rate: 150, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 750.0, total)
}

func TestComputeTotal_QuantityMultiplies(t *testing.T) {
	total, err := ComputeTotal(noon(2025, 11, 10), noon(2025, 11, 12), []LineItem{
		{RoomID: 1, Rate: 99.99, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 399.96, total)
}

func TestQuoteStay_Lines(t *testing.T) {
	q, err := QuoteStay(noon(2025, 11, 10), noon(2025, 11, 13), []LineItem{
		{RoomID: 7, Rate: 120, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, 360.0, q.Lines[0].Subtotal)
	assert.Equal(t, 360.0, q.Total)
}

func TestQuoteStay_Rejects(t *testing.T) {
	item := []LineItem{{RoomID: 1, Rate: 100, Quantity: 1}}
	cases := []struct {
		name  string
		ci    time.Time
		co    time.Time
		items []LineItem
		field string
	}{
		{"same day", noon(2025, 11, 10), noon(2025, 11, 10), item, "check_out"},
		{"reversed", noon(2025, 11, 12), noon(2025, 11, 10), item, "check_out"},
		{"no rooms", noon(2025, 11, 10), noon(2025, 11, 12), nil, "rooms"},
		{"negative rate", noon(2025, 11, 10), noon(2025, 11, 12), []LineItem{{RoomID: 1, Rate: -1, Quantity: 1}}, "rooms"},
		{"zero quantity", noon(2025, 11, 10), noon(2025, 11, 12), []LineItem{{RoomID: 1, Rate: 100, Quantity: 0}}, "rooms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := QuoteStay(tc.ci, tc.co, tc.items)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNormalizeStayDate_TimeOfDayIgnored(t *testing.T) {
	inputs := []string{
		"2025-11-10",
		"2025-11-10T00:00:00Z",
		"2025-11-10T08:15:00Z",
		"2025-11-10T23:59:59Z",
	}
	for _, raw := range inputs {
		got, err := NormalizeStayDate(raw, "check_in", time.UTC)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(noon(2025, 11, 10)), "%s normalized to %s", raw, got)
	}
}

func TestNormalizeStayDate_UsesPropertyTimezone(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)

	// 20:00 UTC on the 9th is already the 10th in Bangkok.
	got, err := NormalizeStayDate("2025-11-09T20:00:00Z", "check_in", bangkok)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 10, 12, 0, 0, 0, bangkok), got)

	bare, err := NormalizeStayDate("2025-11-10", "check_in", bangkok)
	require.NoError(t, err)
	assert.True(t, bare.Equal(got))
}

func TestNormalizeStayDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "10/11/2025", "tomorrow"} {
		_, err := NormalizeStayDate(raw, "check_out", time.UTC)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, raw)
		assert.Equal(t, "check_out", verr.Field)
	}
}

func TestCountNights_DaylightSavingChanges(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks go back on 2025-11-02: 49 real hours, still two nights.
	fallCI, _ := NormalizeStayDate("2025-11-01", "check_in", ny)
	fallCO, _ := NormalizeStayDate("2025-11-03", "check_out", ny)
	assert.Equal(t, 49*time.Hour, fallCO.Sub(fallCI))
	assert.Equal(t, 2, CountNights(fallCI, fallCO))

	// Clocks go forward on 2025-03-09: 47 real hours.
	springCI, _ := NormalizeStayDate("2025-03-08", "check_in", ny)
	springCO, _ := NormalizeStayDate("2025-03-10", "check_out", ny)
	assert.Equal(t, 2, CountNights(springCI, springCO))

	total, err := ComputeTotal(fallCI, fallCO, []LineItem{{RoomID: 1, Rate: 100, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 200.0, total)
}

func TestCountNights_PartialDayRoundsUp(t *testing.T) {
	ci := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	co := time.Date(2025, 11, 11, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, CountNights(ci, co))
	assert.Equal(t, 0, CountNights(ci, ci))
}
