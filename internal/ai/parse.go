package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatdiary/chatdiary-go/internal/model"
)

var emotionKeys = []string{"joy", "anger", "sadness", "anxiety", "relief"}

// rawAnalysis defers field decoding so that a syntactically valid JSON object
// with wrong field types reads as invalid content, not as malformed JSON.
type rawAnalysis struct {
	Summary  json.RawMessage            `json:"summary"`
	Emotions map[string]json.RawMessage `json:"emotions"`
}

// parseAnalysis turns raw model output into a validated Analysis. Models
// often wrap JSON in a markdown code fence despite being told not to, so the
// fence is stripped before parsing.
func parseAnalysis(raw string) (*Analysis, error) {
	text := stripCodeFence(raw)

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var summary string
	if err := json.Unmarshal(parsed.Summary, &summary); err != nil || strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("%w: summary must be a non-empty string", ErrInvalidContent)
	}

	if parsed.Emotions == nil {
		return nil, fmt.Errorf("%w: emotions object is missing", ErrInvalidContent)
	}

	// Project down to exactly the five required keys; extras are ignored.
	scores := make(map[string]int, len(emotionKeys))
	for _, key := range emotionKeys {
		rawScore, ok := parsed.Emotions[key]
		if !ok {
			return nil, fmt.Errorf("%w: emotion %q is missing", ErrInvalidContent, key)
		}
		var score int
		if err := json.Unmarshal(rawScore, &score); err != nil {
			return nil, fmt.Errorf("%w: emotion %q is not an integer", ErrInvalidContent, key)
		}
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("%w: emotion %q score %d is out of range [0,100]", ErrInvalidContent, key, score)
		}
		scores[key] = score
	}

	return &Analysis{
		Summary: summary,
		Emotions: model.EmotionScores{
			Joy:     scores["joy"],
			Anger:   scores["anger"],
			Sadness: scores["sadness"],
			Anxiety: scores["anxiety"],
			Relief:  scores["relief"],
		},
	}, nil
}

// stripCodeFence removes a leading ``` marker (with an optional language tag)
// and a trailing ``` marker from the text, if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		// Drop the language tag line, e.g. "json".
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}
