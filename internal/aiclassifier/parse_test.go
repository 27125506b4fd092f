package aiclassifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slopwatch/slopwatch/internal/domain"
)

func TestParseResponse_PlainJSON(t *testing.T) {
	raw := `{"classification":"SLOP","confidence":90,"slop_score":85,"slop_type":"CLICKBAIT","reasoning":"mass-produced titles"}`

	resp, err := parseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "SLOP", resp.Classification)
	assert.InDelta(t, 90, resp.Confidence, 0.001)
	assert.InDelta(t, 85, resp.SlopScore, 0.001)
}

func TestParseResponse_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"classification\":\"okay\",\"confidence\":70,\"slop_score\":10,\"slop_type\":null,\"reasoning\":\"looks fine\"}\n```"

	resp, err := parseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "OKAY", resp.Classification)
	assert.Nil(t, resp.SlopType)
}

func TestParseResponse_SurroundingProse(t *testing.T) {
	raw := "Sure, here is my analysis:\n{\"classification\":\"SUSPICIOUS\",\"confidence\":60,\"slop_score\":55,\"reasoning\":\"mixed signals\"}\nLet me know if you need more."

	resp, err := parseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "SUSPICIOUS", resp.Classification)
}

func TestParseResponse_FractionalValuesRescaled(t *testing.T) {
	raw := `{"classification":"SLOP","confidence":0.9,"slop_score":0.85,"reasoning":"r"}`

	resp, err := parseResponse(raw)
	require.NoError(t, err)
	assert.InDelta(t, 90, resp.Confidence, 0.001)
	assert.InDelta(t, 85, resp.SlopScore, 0.001)
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON at all", "I cannot classify this channel."},
		{"truncated object", `{"classification":"SLOP","confid`},
		{"unknown classification", `{"classification":"MAYBE","confidence":50,"slop_score":50,"reasoning":"r"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedAIResponse))
		})
	}
}

func TestSlopTypeOf(t *testing.T) {
	kids := "KIDS_CONTENT"
	lower := "clickbait"
	unknown := "SOMETHING_NEW"
	empty := ""

	require.Nil(t, slopTypeOf(nil))
	require.Nil(t, slopTypeOf(&empty))

	got := slopTypeOf(&kids)
	require.NotNil(t, got)
	assert.Equal(t, domain.SlopTypeKidsContent, *got)

	got = slopTypeOf(&lower)
	require.NotNil(t, got)
	assert.Equal(t, domain.SlopTypeClickbait, *got)

	got = slopTypeOf(&unknown)
	require.NotNil(t, got)
	assert.Equal(t, domain.SlopTypeOther, *got)
}
