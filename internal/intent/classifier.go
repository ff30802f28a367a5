// Package intent maps free-text caller speech to a discrete service-switch
// action with a confidence score.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/potsbox/exchange/internal/brain"
)

// Action is one of the fixed set of switch directives the classifier may emit.
type Action string

const (
	ActionServiceTime       Action = "SERVICE_TIME"
	ActionServiceWeather    Action = "SERVICE_WEATHER"
	ActionServiceJoke       Action = "SERVICE_JOKE"
	ActionServicePrayer     Action = "SERVICE_PRAYER"
	ActionServiceHoroscope  Action = "SERVICE_HOROSCOPE"
	ActionServiceComplaints Action = "SERVICE_COMPLAINTS"
	ActionServiceScience    Action = "SERVICE_SCIENCE"
	ActionServiceStory      Action = "SERVICE_STORY"
	ActionServiceDirectory  Action = "SERVICE_DIRECTORY"
	ActionOperatorChat      Action = "OPERATOR_CHAT"
)

var knownActions = map[Action]bool{
	ActionServiceTime:       true,
	ActionServiceWeather:    true,
	ActionServiceJoke:       true,
	ActionServicePrayer:     true,
	ActionServiceHoroscope:  true,
	ActionServiceComplaints: true,
	ActionServiceScience:    true,
	ActionServiceStory:      true,
	ActionServiceDirectory:  true,
	ActionOperatorChat:      true,
}

// Result is a normalized classification: action is always a known value and
// confidence is always within [0,1].
type Result struct {
	Action     Action
	Confidence float64
}

// ServiceKey returns the catalog key the action names, or "" for the chat
// fallback.
func (r Result) ServiceKey() string {
	if r.Action == ActionOperatorChat {
		return ""
	}
	return strings.TrimPrefix(string(r.Action), "SERVICE_")
}

const systemPrompt = `You are a telephone exchange controller.
Decide the caller's intent.

Actions:
- SERVICE_TIME
- SERVICE_WEATHER
- SERVICE_JOKE
- SERVICE_PRAYER
- SERVICE_HOROSCOPE
- SERVICE_COMPLAINTS
- SERVICE_SCIENCE
- SERVICE_STORY
- SERVICE_DIRECTORY
- OPERATOR_CHAT

Return JSON only:
{ "action": string, "confidence": number }`

// Classifier asks the model for a structured intent decision.
type Classifier struct {
	adapter brain.Adapter
}

func NewClassifier(adapter brain.Adapter) *Classifier {
	return &Classifier{adapter: adapter}
}

// Classify never fails: a model error or malformed output degrades to the
// operator-chat fallback with zero confidence.
func (c *Classifier) Classify(ctx context.Context, heard string) Result {
	fallback := Result{Action: ActionOperatorChat, Confidence: 0}

	raw, err := c.adapter.Generate(ctx, brain.Request{
		Messages: []brain.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: heard},
		},
		Temperature: 0,
		MaxTokens:   40,
		ForceJSON:   true,
	})
	if err != nil {
		return fallback
	}

	result, ok := ParseResult(raw)
	if !ok {
		return fallback
	}
	return result
}

// ParseResult decodes raw classifier output. The second return value reports
// whether the output conformed; a malformed payload is an expected outcome,
// not an error.
func ParseResult(raw string) (Result, bool) {
	var decoded struct {
		Action     string          `json:"action"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Result{Action: ActionOperatorChat}, false
	}

	action := Action(strings.ToUpper(strings.TrimSpace(decoded.Action)))
	if !knownActions[action] {
		return Result{Action: ActionOperatorChat}, false
	}

	var confidence float64
	if len(decoded.Confidence) > 0 {
		// Non-numeric confidence is tolerated and treated as zero.
		_ = json.Unmarshal(decoded.Confidence, &confidence)
	}
	return Result{Action: action, Confidence: clamp01(confidence)}, true
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
