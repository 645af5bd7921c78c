package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/focusmate/core/internal/pipeline/analysis"
)

const analyzeSystemPrompt = `You are an email analysis assistant for a user with ADHD.
Classify the email and extract structured facts. Respond with ONLY a JSON object:
{
  "category": "task|instruction|article|meeting|deadline|marketing|info|other",
  "title": "short title",
  "summary": "one or two plain sentences, ADHD-friendly",
  "is_task": true/false,
  "priority_hint": "high|medium|low or empty",
  "steps": ["step text", ...] (only for step-by-step instructions, else []),
  "meeting": {"has_meeting": true/false, "start_iso": "RFC3339 or empty", "end_iso": "RFC3339 or empty", "location": ""},
  "deadline": {"has_deadline": true/false, "due_iso": "RFC3339 or empty"}
}
Rules:
- Use RFC3339 timestamps with timezone offsets.
- Leave fields empty rather than guessing.
- Do not include any text outside the JSON object.`

// AnalyzeEmail asks the model for a structured analysis of one message.
// An empty or non-JSON model response is an error; the caller decides how
// to degrade.
func (c *Client) AnalyzeEmail(subject, sender, body string) (*analysis.Analysis, error) {
	messages := []ChatMessage{
		{Role: "system", Content: analyzeSystemPrompt},
		{
			Role: "user",
			Content: fmt.Sprintf("From: %s\nSubject: %s\n\nBody:\n%s",
				sender, subject, truncateBody(body)),
		},
	}

	response, err := c.sendChatRequest(messages)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(response) == "" {
		return nil, ErrEmptyResponse
	}

	raw, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var a analysis.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	a.Category = strings.ToLower(strings.TrimSpace(a.Category))
	if a.Category == "" {
		a.Category = analysis.CategoryOther
	}
	return &a, nil
}
