package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"challengeu/internal/models"
	"challengeu/internal/schedule"
	"challengeu/internal/store"
)

// eventDuration is the fixed length of every synced event.
const eventDuration = time.Hour

// Calendar is an external calendar the Syncer writes to.
type Calendar interface {
	RequestPermission(ctx context.Context) (models.Capability, error)
	DefaultCalendar(ctx context.Context) (*models.CalendarRef, error)
	ListCalendars(ctx context.Context) ([]models.CalendarRef, error)
	CreateEvent(ctx context.Context, cal models.CalendarRef, in models.EventInput) (string, error)
	UpdateEvent(ctx context.Context, eventID string, in models.EventInput) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// Syncer keeps one external calendar event per liked meetup or joined team game.
// The EventMap is the only record of which external event belongs to which key;
// the calendar is never searched.
type Syncer struct {
	logger   *slog.Logger
	calendar Calendar
	events   *store.EventMapStore
	location *time.Location
	now      func() time.Time
}

// NewSyncer creates a new Syncer. A nil calendar means calendar sync is unsupported:
// upserts are skipped and removals only drop the mapping.
func NewSyncer(logger *slog.Logger, cal Calendar, events *store.EventMapStore, tz *time.Location) *Syncer {
	if tz == nil {
		tz = time.Local
	}
	return &Syncer{
		logger:   logger,
		calendar: cal,
		events:   events,
		location: tz,
		now:      time.Now,
	}
}

// MeetupKey is the mapping key of a liked meetup.
func MeetupKey(postID int) string {
	return fmt.Sprintf("meetup-%d", postID)
}

// TeamGameKey is the mapping key of the index-th game of a team.
func TeamGameKey(teamName string, index int) string {
	return fmt.Sprintf("team-%s-%d", teamName, index)
}

// Capability reports whether calendar writes are possible right now. Permission
// is requested on every call since it can be revoked between syncs.
func (s *Syncer) Capability(ctx context.Context) models.Capability {
	if s.calendar == nil {
		return models.CapabilityUnsupported
	}
	c, err := s.calendar.RequestPermission(ctx)
	if err != nil {
		s.logger.Debug("Calendar permission check failed", "error", err)
		return models.CapabilityDenied
	}
	return c
}

// WritableCalendar picks the default calendar, falling back to the first
// modifiable one.
func (s *Syncer) WritableCalendar(ctx context.Context) (models.CalendarRef, bool) {
	def, err := s.calendar.DefaultCalendar(ctx)
	if err != nil {
		s.logger.Debug("Default calendar unavailable", "error", err)
	} else if def != nil && def.ID != "" {
		return *def, true
	}

	cals, err := s.calendar.ListCalendars(ctx)
	if err != nil {
		s.logger.Debug("Could not list calendars", "error", err)
		return models.CalendarRef{}, false
	}
	for _, c := range cals {
		if c.Modifiable && c.ID != "" {
			return c, true
		}
	}
	return models.CalendarRef{}, false
}

// Upsert makes sure one external event with details exists for key. It prefers
// updating the event already mapped to key and creates a new one when there is
// none or the update fails.
func (s *Syncer) Upsert(ctx context.Context, key string, details models.EventInput) Result {
	if c := s.Capability(ctx); c != models.CapabilityGranted {
		return skipped(capabilityReason(c))
	}

	cal, ok := s.WritableCalendar(ctx)
	if !ok {
		return skipped(ReasonNoWritableCalendar)
	}

	existingID, mapped, err := s.events.Lookup(ctx, key)
	if err != nil {
		s.logger.Error("Failed to read event map", "key", key, "error", err)
		return skipped(ReasonStoreFailed)
	}

	if mapped {
		err := s.calendar.UpdateEvent(ctx, existingID, details)
		if err == nil {
			s.logger.Debug("Updated calendar event", "key", key, "eventID", existingID)
			return Result{Status: StatusUpdated, EventID: existingID}
		}
		s.logger.Debug("Update failed, creating a new event", "key", key, "eventID", existingID, "error", err)
	}

	newID, err := s.calendar.CreateEvent(ctx, cal, details)
	if err != nil {
		if mapped {
			s.logger.Warn("Create failed, stale event id left in map", "key", key, "eventID", existingID, "error", err)
		} else {
			s.logger.Debug("Create failed", "key", key, "error", err)
		}
		return skipped(ReasonCreateFailed)
	}

	if err := s.events.Put(ctx, key, newID); err != nil {
		s.logger.Error("Created calendar event but could not record it", "key", key, "eventID", newID, "error", err)
		return Result{Status: StatusSkipped, Reason: ReasonStoreFailed, EventID: newID}
	}

	s.logger.Info("Created calendar event", "key", key, "title", details.Title, "eventID", newID)
	return Result{Status: StatusCreated, EventID: newID}
}

// Remove deletes the external event mapped to key and forgets the mapping,
// even when the delete fails or no calendar backend is configured.
func (s *Syncer) Remove(ctx context.Context, key string) Result {
	eventID, mapped, err := s.events.Lookup(ctx, key)
	if err != nil {
		s.logger.Error("Failed to read event map", "key", key, "error", err)
		return skipped(ReasonStoreFailed)
	}
	if !mapped {
		return skipped(ReasonNotMapped)
	}

	if s.calendar == nil {
		s.logger.Debug("No calendar backend, dropping mapping only", "key", key, "eventID", eventID)
	} else if err := s.calendar.DeleteEvent(ctx, eventID); err != nil {
		s.logger.Debug("Delete failed, dropping mapping anyway", "key", key, "eventID", eventID, "error", err)
	}

	if err := s.events.Delete(ctx, key); err != nil {
		s.logger.Error("Failed to drop event mapping", "key", key, "error", err)
		return skipped(ReasonStoreFailed)
	}

	s.logger.Info("Removed calendar event", "key", key, "eventID", eventID)
	return Result{Status: StatusRemoved, EventID: eventID}
}

// SyncLikedMeetup adds or refreshes the calendar event of a liked meetup.
// It never fails; problems are logged.
func (s *Syncer) SyncLikedMeetup(ctx context.Context, m models.Meetup) {
	defer s.recoverPanic("sync liked meetup")
	s.report(s.syncLikedMeetup(ctx, m))
}

func (s *Syncer) syncLikedMeetup(ctx context.Context, m models.Meetup) Result {
	start, ok := schedule.MeetupStart(m.DateKey, m.Time, s.location)
	if !ok {
		s.logger.Debug("Skipping meetup with unparseable date", "postID", m.PostID, "dateKey", m.DateKey, "time", m.Time)
		return skipped(ReasonUnparseable)
	}

	return s.Upsert(ctx, MeetupKey(m.PostID), models.EventInput{
		Title:     "Meetup: " + m.Sport,
		Location:  m.Location,
		Notes:     "Added from ChallengeU Meetup likes",
		StartTime: start,
		EndTime:   start.Add(eventDuration),
	})
}

// RemoveLikedMeetup removes the calendar event of an unliked meetup.
func (s *Syncer) RemoveLikedMeetup(ctx context.Context, postID int) {
	defer s.recoverPanic("remove liked meetup")
	s.report(s.Remove(ctx, MeetupKey(postID)))
}

// SyncJoinedTeamGames adds or refreshes one calendar event per game of a team.
// Games are synced concurrently and independently of each other.
func (s *Syncer) SyncJoinedTeamGames(ctx context.Context, teamName, sport string, games []models.TeamGame) {
	defer s.recoverPanic("sync joined team games")
	for _, r := range s.syncJoinedTeamGames(ctx, teamName, sport, games) {
		s.report(r)
	}
}

func (s *Syncer) syncJoinedTeamGames(ctx context.Context, teamName, sport string, games []models.TeamGame) []Result {
	results := make([]Result, len(games))
	now := s.now().In(s.location)

	var wg sync.WaitGroup
	for i, game := range games {
		wg.Add(1)
		go func(i int, game models.TeamGame) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Team game sync panicked", "team", teamName, "index", i, "panic", r)
					results[i] = skipped(ReasonPanic)
				}
			}()

			start, ok := schedule.NextGameStart(game.Date, now)
			if !ok {
				s.logger.Debug("Skipping team game with unparseable date", "team", teamName, "index", i, "date", game.Date)
				results[i] = skipped(ReasonUnparseable)
				return
			}
			results[i] = s.Upsert(ctx, TeamGameKey(teamName, i), models.EventInput{
				Title:     fmt.Sprintf("%s vs %s", teamName, game.Opponent),
				Location:  game.Location,
				Notes:     fmt.Sprintf("Sport: %s (added from ChallengeU Teams)", sport),
				StartTime: start,
				EndTime:   start.Add(eventDuration),
			})
		}(i, game)
	}
	wg.Wait()
	return results
}

// RemoveJoinedTeamGames removes the calendar events of games 0..gamesCount-1 of a team.
func (s *Syncer) RemoveJoinedTeamGames(ctx context.Context, teamName string, gamesCount int) {
	defer s.recoverPanic("remove joined team games")
	for _, r := range s.removeTeamGameRange(ctx, teamName, 0, gamesCount) {
		s.report(r)
	}
}

// TrimJoinedTeamGames removes the events of games keep..previous-1 after a
// team's schedule shrank from previous games to keep.
func (s *Syncer) TrimJoinedTeamGames(ctx context.Context, teamName string, keep, previous int) {
	defer s.recoverPanic("trim joined team games")
	for _, r := range s.removeTeamGameRange(ctx, teamName, keep, previous) {
		s.report(r)
	}
}

// removeTeamGameRange removes the events of game indices [from, to).
func (s *Syncer) removeTeamGameRange(ctx context.Context, teamName string, from, to int) []Result {
	if from < 0 {
		from = 0
	}
	if to <= from {
		return nil
	}
	results := make([]Result, to-from)

	var wg sync.WaitGroup
	for i := from; i < to; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Team game removal panicked", "team", teamName, "index", i, "panic", r)
					results[i-from] = skipped(ReasonPanic)
				}
			}()
			results[i-from] = s.Remove(ctx, TeamGameKey(teamName, i))
		}(i)
	}
	wg.Wait()
	return results
}

func (s *Syncer) report(r Result) {
	if r.Status == StatusSkipped {
		s.logger.Debug("Calendar sync skipped", "reason", r.Reason)
	}
}

func (s *Syncer) recoverPanic(op string) {
	if r := recover(); r != nil {
		s.logger.Error("Calendar sync panicked", "op", op, "panic", r)
	}
}
