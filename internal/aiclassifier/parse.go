package aiclassifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/slopwatch/slopwatch/internal/domain"
)

// aiResponse is the JSON object the text-generation provider is asked to
// return.
type aiResponse struct {
	Classification string          `json:"classification"`
	Confidence     float64         `json:"confidence"`
	SlopScore      float64         `json:"slop_score"`
	SlopType       *string         `json:"slop_type"`
	Reasoning      string          `json:"reasoning"`
	ChannelSignals map[string]bool `json:"channel_signals"`
	ContentSignals map[string]bool `json:"content_signals"`
}

// parseResponse extracts and decodes the JSON object from raw model output.
// Code fences are stripped and fractional confidence/score values are
// rescaled to 0-100. Failures return domain.ErrMalformedAIResponse.
func parseResponse(raw string) (*aiResponse, error) {
	text := stripFences(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in output", domain.ErrMalformedAIResponse)
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedAIResponse, err)
	}

	switch domain.Classification(strings.ToUpper(resp.Classification)) {
	case domain.ClassificationSlop, domain.ClassificationSuspicious, domain.ClassificationOkay:
		resp.Classification = strings.ToUpper(resp.Classification)
	default:
		return nil, fmt.Errorf("%w: unknown classification %q", domain.ErrMalformedAIResponse, resp.Classification)
	}

	// Models sometimes answer with fractions even when asked for 0-100.
	if resp.Confidence <= 1 {
		resp.Confidence *= 100
	}
	if resp.SlopScore <= 1 {
		resp.SlopScore *= 100
	}
	resp.Confidence = clamp(resp.Confidence)
	resp.SlopScore = clamp(resp.SlopScore)

	return &resp, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// slopTypeOf maps the model's slop_type string onto the domain enum.
// Unknown values map to OTHER rather than failing the parse.
func slopTypeOf(s *string) *domain.SlopType {
	if s == nil || *s == "" || strings.EqualFold(*s, "null") {
		return nil
	}
	t := domain.SlopType(strings.ToUpper(*s))
	switch t {
	case domain.SlopTypeKidsContent, domain.SlopTypeAIGenerated, domain.SlopTypeClickbait,
		domain.SlopTypeReupload, domain.SlopTypeEngagementBait, domain.SlopTypeOther:
		return &t
	default:
		other := domain.SlopTypeOther
		return &other
	}
}
