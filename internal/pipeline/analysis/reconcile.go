package analysis

import "time"

// Reconcile merges deterministic signals into a model analysis. Rules apply
// in a fixed order and only ever upgrade fields the model left unset;
// applying the same signals twice yields the same result as applying them
// once.
func Reconcile(a *Analysis, sig Signals) {
	// 1. Extracted deadline fills an unset due instant; any due instant
	//    implies has_deadline.
	if sig.Due != nil && a.Deadline.DueISO == "" {
		a.Deadline.DueISO = sig.Due.Format(time.RFC3339)
	}
	if a.Deadline.DueISO != "" {
		a.Deadline.HasDeadline = true
	}

	// 2. Extracted meeting window fills a meeting the model missed.
	if sig.MeetingStart != nil && sig.MeetingEnd != nil && !a.Meeting.HasMeeting {
		a.Meeting.HasMeeting = true
		a.Meeting.StartISO = sig.MeetingStart.Format(time.RFC3339)
		a.Meeting.EndISO = sig.MeetingEnd.Format(time.RFC3339)
	}

	// 3. Extracted steps stand in when the model provided none.
	if len(sig.Steps) > 0 && len(a.Steps) == 0 {
		a.Steps = append([]string(nil), sig.Steps...)
	}

	// 4. The deterministic task detector forces is_task; a deadline hint on
	//    top of it marks has_deadline even when no due instant parsed.
	if sig.TaskIntent {
		a.IsTask = true
		if sig.DeadlineHint && !a.Deadline.HasDeadline {
			a.Deadline.HasDeadline = true
		}
	}
}

// DueTime parses the analysis due instant, returning nil when unset or
// malformed.
func (a *Analysis) DueTime() *time.Time {
	if a.Deadline.DueISO == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, a.Deadline.DueISO)
	if err != nil {
		return nil
	}
	return &t
}

// MeetingWindow parses the meeting sub-record bounds, returning nils when
// either bound is unset or malformed.
func (a *Analysis) MeetingWindow() (start, end *time.Time) {
	if !a.Meeting.HasMeeting || a.Meeting.StartISO == "" || a.Meeting.EndISO == "" {
		return nil, nil
	}
	s, err := time.Parse(time.RFC3339, a.Meeting.StartISO)
	if err != nil {
		return nil, nil
	}
	e, err := time.Parse(time.RFC3339, a.Meeting.EndISO)
	if err != nil {
		return nil, nil
	}
	return &s, &e
}
