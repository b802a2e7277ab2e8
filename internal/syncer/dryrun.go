package syncer

import (
	"context"
	"log/slog"

	"challengeu/internal/models"

	"github.com/google/uuid"
)

type dryRunCalendar struct {
	Calendar
	logger *slog.Logger
}

// DryRun wraps cal so that reads still hit the backend but creates, updates and
// deletes are only logged.
func DryRun(logger *slog.Logger, cal Calendar) Calendar {
	if cal == nil {
		return nil
	}
	return &dryRunCalendar{Calendar: cal, logger: logger}
}

func (d *dryRunCalendar) CreateEvent(ctx context.Context, cal models.CalendarRef, in models.EventInput) (string, error) {
	id := "dry-run-" + uuid.NewString()
	d.logger.Info("[DRY RUN] Would create calendar event", "calendar", cal.Title, "title", in.Title, "startTime", in.StartTime, "eventID", id)
	return id, nil
}

func (d *dryRunCalendar) UpdateEvent(ctx context.Context, eventID string, in models.EventInput) error {
	d.logger.Info("[DRY RUN] Would update calendar event", "eventID", eventID, "title", in.Title, "startTime", in.StartTime)
	return nil
}

func (d *dryRunCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	d.logger.Info("[DRY RUN] Would delete calendar event", "eventID", eventID)
	return nil
}
