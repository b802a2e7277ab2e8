package icloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"challengeu/internal/models"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the iCloud CalDAV endpoint.
	DefaultEndpoint = "https://caldav.icloud.com/"
)

// customTransport handles adding Basic Auth and custom headers to requests.
// It remembers whether the server rejected the credentials.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper

	rejected atomic.Bool
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "challengeu/1.0")
	resp, err := t.Transport.RoundTrip(req)
	if err == nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		t.rejected.Store(true)
	}
	return resp, err
}

// CalDAVClient is a calendar backend talking to a CalDAV server (iCloud by default).
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	transport    *customTransport
	logger       *slog.Logger
	calendarName string
}

// NewClient creates a new CalDAVClient. No request is made until the client is used;
// calendars are discovered fresh on every call.
func NewClient(logger *slog.Logger, endpoint, username, password, calendarName string) (*CalDAVClient, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if username == "" || password == "" {
		return nil, errors.New("caldav username and app-specific password are required")
	}

	transport := &customTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	return &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		transport:    transport,
		logger:       logger,
		calendarName: calendarName,
	}, nil
}

// RequestPermission checks that the server accepts the credentials.
func (c *CalDAVClient) RequestPermission(ctx context.Context) (models.Capability, error) {
	c.transport.rejected.Store(false)
	if _, err := c.caldavClient.FindCurrentUserPrincipal(ctx); err != nil {
		if c.transport.rejected.Load() {
			c.logger.Warn("CalDAV server rejected the credentials")
			return models.CapabilityDenied, nil
		}
		return models.CapabilityDenied, fmt.Errorf("failed to find principal path: %w", err)
	}
	return models.CapabilityGranted, nil
}

// DefaultCalendar returns the configured calendar, or nil when no calendar
// name is configured or none matches.
func (c *CalDAVClient) DefaultCalendar(ctx context.Context) (*models.CalendarRef, error) {
	if c.calendarName == "" {
		return nil, nil
	}
	cals, err := c.ListCalendars(ctx)
	if err != nil {
		return nil, err
	}
	for _, cal := range cals {
		if cal.Title == c.calendarName {
			return &cal, nil
		}
	}
	c.logger.Debug("Configured calendar not found", "calendarName", c.calendarName)
	return nil, nil
}

// ListCalendars discovers the user's calendars. A calendar is modifiable when it
// accepts VEVENT objects.
func (c *CalDAVClient) ListCalendars(ctx context.Context) ([]models.CalendarRef, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	refs := make([]models.CalendarRef, 0, len(calendars))
	for _, cal := range calendars {
		refs = append(refs, models.CalendarRef{
			ID:         cal.Path,
			Title:      cal.Name,
			Modifiable: supportsEvents(cal.SupportedComponentSet),
		})
	}
	return refs, nil
}

// CreateEvent writes a new event object into cal and returns its path as the event id.
func (c *CalDAVClient) CreateEvent(ctx context.Context, cal models.CalendarRef, in models.EventInput) (string, error) {
	uid := GenerateUID()
	eventPath := path.Join(cal.ID, uid+".ics")

	if _, err := c.caldavClient.PutCalendarObject(ctx, eventPath, toICal(uid, in, time.Now())); err != nil {
		return "", fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}

	c.logger.Debug("Created CalDAV event", "title", in.Title, "path", eventPath)
	return eventPath, nil
}

// UpdateEvent rewrites an existing event object. It fails when the object no
// longer exists on the server.
func (c *CalDAVClient) UpdateEvent(ctx context.Context, eventID string, in models.EventInput) error {
	obj, err := c.caldavClient.GetCalendarObject(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}

	uid := eventUID(obj.Data)
	if uid == "" {
		uid = strings.TrimSuffix(path.Base(eventID), ".ics")
	}

	if _, err := c.caldavClient.PutCalendarObject(ctx, eventID, toICal(uid, in, time.Now())); err != nil {
		return fmt.Errorf("failed to update event on CalDAV server: %w", err)
	}
	return nil
}

// DeleteEvent removes an event object.
func (c *CalDAVClient) DeleteEvent(ctx context.Context, eventID string) error {
	if err := c.webdavClient.RemoveAll(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// toICal converts an EventInput to a VCALENDAR holding one VEVENT.
func toICal(uid string, in models.EventInput, stamp time.Time) *ical.Calendar {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, in.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, in.StartTime)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, in.EndTime)

	if in.Location != "" {
		ve.Props.SetText(ical.PropLocation, in.Location)
	}
	if in.Notes != "" {
		ve.Props.SetText(ical.PropDescription, in.Notes)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//challengeu//EN")
	cal.Children = append(cal.Children, ve)
	return cal
}

func eventUID(cal *ical.Calendar) string {
	if cal == nil {
		return ""
	}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if uid, err := child.Props.Text(ical.PropUID); err == nil {
			return uid
		}
	}
	return ""
}

func supportsEvents(components []string) bool {
	// Servers that omit the set accept every component type.
	if len(components) == 0 {
		return true
	}
	for _, comp := range components {
		if strings.EqualFold(comp, ical.CompEvent) {
			return true
		}
	}
	return false
}

// GenerateUID creates a new unique identifier for an event.
func GenerateUID() string {
	return uuid.New().String()
}
