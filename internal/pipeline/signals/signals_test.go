package signals

import (
	"testing"
	"time"
)

var testRef = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDetectTaskIntent(t *testing.T) {
	if !DetectTaskIntent("Submit report", "Please submit by Friday") {
		t.Error("expected task intent for submit request")
	}
	if !DetectTaskIntent("RSVP needed", "") {
		t.Error("expected task intent for RSVP subject")
	}
	if DetectTaskIntent("Weekly digest", "Here is what happened this week.") {
		t.Error("did not expect task intent for a digest")
	}
}

func TestDetectDeadline(t *testing.T) {
	if !DetectDeadline("The deadline is Friday.") {
		t.Error("expected deadline detection")
	}
	if !DetectDeadline("Submit by end of day") {
		t.Error("expected deadline detection for EOD phrasing")
	}
	if DetectDeadline("Have a nice weekend!") {
		t.Error("did not expect deadline detection")
	}
}

func TestDetectInstruction(t *testing.T) {
	if !DetectInstruction("Step 1: open the box") {
		t.Error("expected instruction detection")
	}
	if DetectInstruction("See you tomorrow") {
		t.Error("did not expect instruction detection")
	}
}

func TestExtractInstructionStepsMarkers(t *testing.T) {
	body := "Intro text\nStep 1: boil water\nStep 2: add pasta\n"
	steps := ExtractInstructionSteps(body, DefaultMaxSteps)
	if len(steps) != 2 || steps[0] != "boil water" || steps[1] != "add pasta" {
		t.Errorf("unexpected steps: %v", steps)
	}
}

func TestExtractInstructionStepsBulletsAndOrdinals(t *testing.T) {
	body := "1. download the installer\n2) run it\n- restart the machine\n"
	steps := ExtractInstructionSteps(body, DefaultMaxSteps)
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %v", steps)
	}
	if steps[2] != "restart the machine" {
		t.Errorf("unexpected bullet step: %q", steps[2])
	}
}

func TestExtractInstructionStepsContinuation(t *testing.T) {
	body := "Step 1: open the config file\nand locate the server block\n\nStep 2: restart"
	steps := ExtractInstructionSteps(body, DefaultMaxSteps)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %v", steps)
	}
	if steps[0] != "open the config file and locate the server block" {
		t.Errorf("continuation not merged: %q", steps[0])
	}
}

func TestExtractDeadlineLabeled(t *testing.T) {
	due := ExtractDeadlineDatetime("Deadline: 2025-03-10", testRef)
	if due == nil {
		t.Fatal("expected a deadline")
	}
	if due.Year() != 2025 || due.Month() != time.March || due.Day() != 10 {
		t.Errorf("unexpected deadline: %v", due)
	}
}

func TestExtractDeadlineInline(t *testing.T) {
	due := ExtractDeadlineDatetime("Please submit by 2025-03-10. No later than EOD.", testRef)
	if due == nil {
		t.Fatal("expected a deadline from inline phrasing")
	}
	if due.Format("2006-01-02") != "2025-03-10" {
		t.Errorf("unexpected deadline: %v", due)
	}
}

func TestExtractDeadlineNone(t *testing.T) {
	if due := ExtractDeadlineDatetime("No dates mentioned here at all.", testRef); due != nil {
		t.Errorf("expected nil, got %v", due)
	}
}

func TestExtractMeetingWindowRange(t *testing.T) {
	body := "Date: 2025-03-12\nTime: 14:00 - 15:30"
	w := ExtractMeetingWindow(body, testRef)
	if w == nil {
		t.Fatal("expected a meeting window")
	}
	if w.Start.Hour() != 14 || w.End.Hour() != 15 || w.End.Minute() != 30 {
		t.Errorf("unexpected window: %v - %v", w.Start, w.End)
	}
}

func TestExtractMeetingWindowTimezone(t *testing.T) {
	body := "Date: 2025-03-12\nTime: 2pm (EST)"
	w := ExtractMeetingWindow(body, testRef)
	if w == nil {
		t.Fatal("expected a meeting window")
	}
	if w.Start.Location().String() != "America/New_York" {
		t.Errorf("expected America/New_York, got %v", w.Start.Location())
	}
	if w.End.Sub(w.Start) != DefaultMeetingDuration {
		t.Errorf("expected default duration, got %v", w.End.Sub(w.Start))
	}
}

func TestExtractMeetingWindowDuration(t *testing.T) {
	body := "Date: 2025-03-12\nTime: 10:00\nDuration: 2 hours"
	w := ExtractMeetingWindow(body, testRef)
	if w == nil {
		t.Fatal("expected a meeting window")
	}
	if w.End.Sub(w.Start) != 2*time.Hour {
		t.Errorf("expected 2h duration, got %v", w.End.Sub(w.Start))
	}
}

func TestExtractMeetingWindowInvertedRange(t *testing.T) {
	body := "Date: 2025-03-12\nTime: 15:00 - 14:00"
	w := ExtractMeetingWindow(body, testRef)
	if w == nil {
		t.Fatal("expected a meeting window")
	}
	if !w.End.After(w.Start) {
		t.Errorf("end not after start: %v - %v", w.Start, w.End)
	}
	if w.End.Sub(w.Start) != DefaultMeetingDuration {
		t.Errorf("expected default duration fallback, got %v", w.End.Sub(w.Start))
	}
}
