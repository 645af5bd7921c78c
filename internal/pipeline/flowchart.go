package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FlowchartTypeJSON tags the flowchart payload encoding.
const FlowchartTypeJSON = "json"

// maxSummarySegments caps how many sentence segments a summary-derived
// flowchart may have.
const maxSummarySegments = 4

var sentenceSplitPattern = regexp.MustCompile(`[.!?]+\s+|\n+`)

// BuildFlowchart encodes instruction steps as a flowchart payload. With no
// steps it falls back to sentence segments of the summary, and failing
// that to a single default step.
func BuildFlowchart(steps []string, summary string) (payload string, encoding string) {
	if len(steps) == 0 {
		steps = summarySegments(summary)
	}
	if len(steps) == 0 {
		steps = []string{"Review the email"}
	}

	data, err := json.Marshal(map[string][]string{"steps": steps})
	if err != nil {
		return `{"steps":["Review the email"]}`, FlowchartTypeJSON
	}
	return string(data), FlowchartTypeJSON
}

func marshalSteps(steps []string) (string, error) {
	data, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func countFlowchartSteps(payload string) int {
	var decoded struct {
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return 0
	}
	return len(decoded.Steps)
}

func summarySegments(summary string) []string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil
	}
	var segments []string
	for _, part := range sentenceSplitPattern.Split(summary, -1) {
		part = strings.TrimSpace(strings.TrimRight(part, ".!?"))
		if part == "" {
			continue
		}
		segments = append(segments, part)
		if len(segments) == maxSummarySegments {
			break
		}
	}
	return segments
}
