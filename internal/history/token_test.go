package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/motorpool/internal/history"
	"github.com/aretw0/motorpool/pkg/domain"
)

func TestParseToken_RoundTrip(t *testing.T) {
	tokens := []history.Token{
		{Kind: history.KindYear, Year: 2024},
		{Kind: history.KindMonth, Year: 2024, Month: 5},
		{Kind: history.KindDay, Year: 2024, Month: 5, Day: 17},
		{Kind: history.KindShift, Index: 0},
		{Kind: history.KindShift, Index: 42},
	}
	for _, tok := range tokens {
		parsed, err := history.ParseToken(tok.String())
		require.NoError(t, err, tok.String())
		assert.Equal(t, tok, parsed)
	}
}

func TestParseToken_Wire(t *testing.T) {
	tok, err := history.ParseToken("day:2024:5:17")
	require.NoError(t, err)
	assert.Equal(t, history.Token{Kind: history.KindDay, Year: 2024, Month: 5, Day: 17}, tok)
	assert.Equal(t, "day:2024:5:17", tok.String())
}

func TestParseToken_FailsClosed(t *testing.T) {
	for _, raw := range []string{
		"",
		"year",
		"year:abc",
		"year:2024:5",
		"year:-3",
		"month:2024",
		"month:2024:13",
		"month:2024:0",
		"day:2024:5",
		"day:2024:5:32",
		"shift:",
		"shift:-1",
		"shift:1:2",
		"galaxy:42",
		"car_1",
	} {
		_, err := history.ParseToken(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedSelection, "input %q", raw)
	}
}
