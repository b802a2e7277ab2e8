package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"challengeu/internal/models"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const primaryCalendar = "primary"

// CalendarClient is a calendar backend over the Google Calendar API.
type CalendarClient struct {
	service *calendar.Service
	logger  *slog.Logger
}

// NewClient creates a Google Calendar client authorized with the token saved
// for account by the auth command.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, account string) (*CalendarClient, error) {
	config, err := OAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	token, err := loadToken(TokenPath(account))
	if err != nil {
		return nil, fmt.Errorf("no usable token for account %q, run the auth command: %w", account, err)
	}

	return newClientWithOptions(ctx, logger, option.WithHTTPClient(config.Client(ctx, token)))
}

func newClientWithOptions(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*CalendarClient, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &CalendarClient{service: service, logger: logger}, nil
}

// RequestPermission checks that the token can still read the calendar list.
func (c *CalendarClient) RequestPermission(ctx context.Context) (models.Capability, error) {
	_, err := c.service.CalendarList.List().MaxResults(1).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
			c.logger.Warn("Google rejected the calendar token", "code", apiErr.Code)
			return models.CapabilityDenied, nil
		}
		return models.CapabilityDenied, fmt.Errorf("failed to list calendars: %w", err)
	}
	return models.CapabilityGranted, nil
}

// DefaultCalendar returns the account's primary calendar.
func (c *CalendarClient) DefaultCalendar(ctx context.Context) (*models.CalendarRef, error) {
	item, err := c.service.CalendarList.Get(primaryCalendar).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get primary calendar: %w", err)
	}
	ref := toCalendarRef(item)
	if !ref.Modifiable {
		return nil, nil
	}
	return &ref, nil
}

// ListCalendars returns every calendar on the account's calendar list.
func (c *CalendarClient) ListCalendars(ctx context.Context) ([]models.CalendarRef, error) {
	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	refs := make([]models.CalendarRef, 0, len(list.Items))
	for _, item := range list.Items {
		refs = append(refs, toCalendarRef(item))
	}
	return refs, nil
}

// CreateEvent inserts an event and returns "<calendarId>/<eventId>".
func (c *CalendarClient) CreateEvent(ctx context.Context, cal models.CalendarRef, in models.EventInput) (string, error) {
	created, err := c.service.Events.Insert(cal.ID, toGoogleEvent(in)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	c.logger.Debug("Created Google event", "title", in.Title, "calendarID", cal.ID, "id", created.Id)
	return joinEventID(cal.ID, created.Id), nil
}

// UpdateEvent replaces an event. Missing and cancelled events are errors.
func (c *CalendarClient) UpdateEvent(ctx context.Context, eventID string, in models.EventInput) error {
	calID, id, err := splitEventID(eventID)
	if err != nil {
		return err
	}

	existing, err := c.service.Events.Get(calID, id).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if existing.Status == "cancelled" {
		return fmt.Errorf("event %s was cancelled", eventID)
	}

	if _, err := c.service.Events.Update(calID, id, toGoogleEvent(in)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return nil
}

// DeleteEvent deletes an event.
func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	calID, id, err := splitEventID(eventID)
	if err != nil {
		return err
	}
	if err := c.service.Events.Delete(calID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

func toCalendarRef(item *calendar.CalendarListEntry) models.CalendarRef {
	return models.CalendarRef{
		ID:         item.Id,
		Title:      item.Summary,
		Modifiable: item.AccessRole == "owner" || item.AccessRole == "writer",
	}
}

func toGoogleEvent(in models.EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     in.Title,
		Location:    in.Location,
		Description: in.Notes,
		Start:       &calendar.EventDateTime{DateTime: in.StartTime.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: in.EndTime.Format(time.RFC3339)},
	}
}

// Google event ids are base32hex, so the last slash separates them from the calendar id.
func joinEventID(calendarID, eventID string) string {
	return calendarID + "/" + eventID
}

func splitEventID(s string) (calendarID, eventID string, err error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("malformed google event id %q", s)
	}
	return s[:i], s[i+1:], nil
}
