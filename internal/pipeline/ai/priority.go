package ai

import (
	"encoding/json"
	"fmt"

	"github.com/focusmate/core/internal/pipeline/analysis"
)

const prioritySystemPrompt = `You are a prioritization assistant for a user with ADHD.
Given structured facts about an email, decide how urgent it is. Respond with ONLY a JSON object:
{"score": 0-100, "reasoning": "one short sentence"}
Rules:
- 70-100 means drop everything, 40-69 means handle soon, below 40 can wait.
- Weigh deadlines, deadline proximity, sender importance and whether action is required.
- Marketing and newsletters score low.`

// DecidePriority asks the model for a priority decision over the reconciled
// context. The bucket is always derived from the clamped score, never taken
// from the model directly.
func (c *Client) DecidePriority(ctx analysis.Context) (*analysis.Decision, error) {
	payload, err := json.Marshal(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPICallFailed, err)
	}

	messages := []ChatMessage{
		{Role: "system", Content: prioritySystemPrompt},
		{Role: "user", Content: "Email facts:\n" + string(payload)},
	}

	response, err := c.sendChatRequest(messages)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var out struct {
		Score     int    `json:"score"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	score := analysis.ClampScore(out.Score)
	return &analysis.Decision{
		Bucket:    analysis.BucketForScore(score),
		Score:     score,
		Reasoning: out.Reasoning,
	}, nil
}
