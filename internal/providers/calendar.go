package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/focusmate/core/internal/config"
)

var (
	// ErrCalendarNotConfigured indicates calendar credentials are missing
	ErrCalendarNotConfigured = errors.New("calendar provider not configured")
	// ErrCalendarCallFailed indicates a calendar API call failed
	ErrCalendarCallFailed = errors.New("calendar API call failed")
)

const calendarAPIBase = "https://www.googleapis.com/calendar/v3"

// Deadline holds window: 09:00-09:30 local time on the due date.
const (
	deadlineHoldHour   = 9
	deadlineHoldLength = 30 * time.Minute
)

// GoogleCalendarProvider implements CalendarProvider against the Google
// Calendar REST API, authenticating with a stored OAuth refresh token.
type GoogleCalendarProvider struct {
	calendarID string
	httpClient *http.Client
}

// NewGoogleCalendarProvider creates a calendar provider from the configured
// OAuth credentials. The returned provider refreshes access tokens as
// needed.
func NewGoogleCalendarProvider(cfg config.CalendarConfig) (*GoogleCalendarProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, ErrCalendarNotConfigured
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := oauthCfg.Client(context.Background(), token)
	httpClient.Timeout = 30 * time.Second

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = config.DefaultCalendarID
	}
	return &GoogleCalendarProvider{
		calendarID: calendarID,
		httpClient: httpClient,
	}, nil
}

type calendarEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type calendarEvent struct {
	ID       string            `json:"id,omitempty"`
	Summary  string            `json:"summary"`
	Location string            `json:"location,omitempty"`
	Start    calendarEventTime `json:"start"`
	End      calendarEventTime `json:"end"`
	HTMLLink string            `json:"htmlLink,omitempty"`
}

// CreateEvent creates a calendar event with the given window.
func (p *GoogleCalendarProvider) CreateEvent(title string, start, end time.Time, location string) (*EventRef, error) {
	event := calendarEvent{
		Summary:  title,
		Location: location,
		Start:    calendarEventTime{DateTime: start.Format(time.RFC3339)},
		End:      calendarEventTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := p.insertEvent(event)
	if err != nil {
		return nil, err
	}
	return &EventRef{EventID: created.ID, Link: created.HTMLLink}, nil
}

// CreateDeadlineHold books the fixed morning placeholder on the due date.
func (p *GoogleCalendarProvider) CreateDeadlineHold(title string, dueDate time.Time) (*EventRef, error) {
	start := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(),
		deadlineHoldHour, 0, 0, 0, dueDate.Location())
	return p.CreateEvent("Deadline: "+title, start, start.Add(deadlineHoldLength), "")
}

func (p *GoogleCalendarProvider) insertEvent(event calendarEvent) (*calendarEvent, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", calendarAPIBase, url.PathEscape(p.calendarID))
	resp, err := p.httpClient.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrCalendarCallFailed, resp.StatusCode, string(respBody))
	}

	var created calendarEvent
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	return &created, nil
}

// ListEvents returns events between from and to.
func (p *GoogleCalendarProvider) ListEvents(from, to time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("timeMin", from.Format(time.RFC3339))
	params.Set("timeMax", to.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
		calendarAPIBase, url.PathEscape(p.calendarID), params.Encode())
	resp, err := p.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrCalendarCallFailed, resp.StatusCode, string(respBody))
	}

	var listing struct {
		Items []calendarEvent `json:"items"`
	}
	if err := json.Unmarshal(respBody, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}

	events := make([]Event, 0, len(listing.Items))
	for _, item := range listing.Items {
		ev := Event{
			EventID:  item.ID,
			Title:    item.Summary,
			Location: item.Location,
			Link:     item.HTMLLink,
		}
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			ev.Start = &t
		}
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			ev.End = &t
		}
		events = append(events, ev)
	}
	return events, nil
}

// DeleteEvent removes an event by id.
func (p *GoogleCalendarProvider) DeleteEvent(eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		calendarAPIBase, url.PathEscape(p.calendarID), url.PathEscape(eventID))
	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCalendarCallFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrCalendarCallFailed, resp.StatusCode)
	}
	return nil
}
