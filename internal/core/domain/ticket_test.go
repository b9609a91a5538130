package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTicketType(t *testing.T) {
	for _, tt := range TicketTypes {
		parsed, err := ParseTicketType(tt.String())
		require.NoError(t, err)
		assert.Equal(t, tt, parsed)
	}

	for _, bad := range []string{"", "adult", "SENIOR", "ADULT "} {
		_, err := ParseTicketType(bad)
		assert.ErrorIs(t, err, ErrInvalidPurchase, "input %q", bad)
	}
}

func TestTicketType_Valid(t *testing.T) {
	assert.False(t, TicketType(0).Valid())
	assert.True(t, TicketTypeAdult.Valid())
	assert.True(t, TicketTypeInfant.Valid())
	assert.False(t, TicketType(4).Valid())
}

func TestTicketType_JSON(t *testing.T) {
	var payload struct {
		Type TicketType `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"type":"CHILD"}`), &payload))
	assert.Equal(t, TicketTypeChild, payload.Type)

	err := json.Unmarshal([]byte(`{"type":"PET"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidPurchase)
	assert.Contains(t, err.Error(), "Invalid ticket type: PET")

	out, err := json.Marshal(struct {
		Type TicketType `json:"type"`
	}{TicketTypeInfant})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"INFANT"}`, string(out))
}

func TestCountTickets(t *testing.T) {
	counts := CountTickets([]TicketTypeRequest{
		NewTicketTypeRequest(TicketTypeAdult, 2),
		NewTicketTypeRequest(TicketTypeInfant, 1),
		NewTicketTypeRequest(TicketTypeAdult, 3),
		NewTicketTypeRequest(TicketTypeChild, 4),
	})

	assert.Equal(t, TicketCounts{Adult: 5, Child: 4, Infant: 1}, counts)
	assert.Equal(t, 10, counts.Total())
	assert.Equal(t, 9, counts.Seats())
	assert.Equal(t, 0, counts.Of(TicketType(0)))
}

func TestTicketCounts_Saturates(t *testing.T) {
	counts := TicketCounts{}.Add(TicketTypeAdult, maxCount).Add(TicketTypeAdult, 10)
	assert.Equal(t, maxCount, counts.Adult)

	counts = counts.Add(TicketTypeChild, maxCount)
	assert.Equal(t, maxCount, counts.Total())
}

func TestPricing_Total(t *testing.T) {
	pricing := Pricing{Adult: 25, Child: 15, Infant: 0}
	counts := TicketCounts{Adult: 2, Child: 1, Infant: 1}

	total, ok := pricing.Total(counts)
	assert.True(t, ok)
	assert.Equal(t, 65, total)
	assert.Equal(t, 0, pricing.PriceOf(TicketType(0)))
}

func TestPricing_TotalOverflow(t *testing.T) {
	tests := []struct {
		name    string
		pricing Pricing
		counts  TicketCounts
		want    int
		wantOK  bool
	}{
		{"fits exactly", Pricing{Adult: maxCount / 2}, TicketCounts{Adult: 2}, maxCount - 1, true},
		{"single type overflows", Pricing{Adult: maxCount/2 + 1}, TicketCounts{Adult: 2}, 0, false},
		{"sum of types overflows", Pricing{Adult: maxCount / 2, Child: maxCount / 2}, TicketCounts{Adult: 1, Child: 2}, 0, false},
		{"negative price", Pricing{Adult: -1}, TicketCounts{Adult: 1}, 0, false},
		{"unsold type is ignored", Pricing{Adult: 1, Infant: maxCount}, TicketCounts{Adult: 3}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, ok := tt.pricing.Total(tt.counts)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestInvalidPurchaseError(t *testing.T) {
	err := NewInvalidPurchase("Maximum %d tickets per purchase", 25)

	assert.EqualError(t, err, "Maximum 25 tickets per purchase")
	assert.ErrorIs(t, err, ErrInvalidPurchase)
	assert.NotErrorIs(t, err, ErrPaymentFailed)
}
