package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"challengeu/internal/models"
)

const (
	eventMapKey     = "challengeu_apple_calendar_event_map"
	likedMeetupsKey = "challengeu_liked_meetup_events"
	joinedTeamsKey  = "challengeu_joined_teams"
)

// EventMap maps an app-level mapping key to the id of its external calendar event.
type EventMap map[string]string

// EventMapStore is the repository for the persisted EventMap.
// Lookup, Put and Delete are serialized within one process; separate
// processes sharing a file still race last-writer-wins.
type EventMapStore struct {
	kv KV
	mu sync.Mutex
}

func NewEventMapStore(kv KV) *EventMapStore {
	return &EventMapStore{kv: kv}
}

// Load returns the persisted map. Absent or corrupt data yields an empty map.
func (s *EventMapStore) Load(ctx context.Context) (EventMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Lookup returns the event id mapped to key.
func (s *EventMapStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	m, err := s.Load(ctx)
	if err != nil {
		return "", false, err
	}
	id, ok := m[key]
	return id, ok && id != "", nil
}

// Put maps key to eventID, overwriting any previous id.
func (s *EventMapStore) Put(ctx context.Context, key, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	m[key] = eventID
	return s.save(ctx, m)
}

// Delete drops key from the map.
func (s *EventMapStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return err
	}
	delete(m, key)
	return s.save(ctx, m)
}

func (s *EventMapStore) load(ctx context.Context) (EventMap, error) {
	raw, ok, err := s.kv.Get(ctx, eventMapKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read event map: %w", err)
	}
	m := EventMap{}
	if !ok || raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return EventMap{}, nil
	}
	return m, nil
}

func (s *EventMapStore) save(ctx context.Context, m EventMap) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal event map: %w", err)
	}
	if err := s.kv.Set(ctx, eventMapKey, string(data)); err != nil {
		return fmt.Errorf("failed to write event map: %w", err)
	}
	return nil
}

// LikedMeetupStore is the repository for the list of liked meetups.
type LikedMeetupStore struct {
	kv KV
	mu sync.Mutex
}

func NewLikedMeetupStore(kv KV) *LikedMeetupStore {
	return &LikedMeetupStore{kv: kv}
}

// List returns the liked meetups in the order they were liked.
func (s *LikedMeetupStore) List(ctx context.Context) ([]models.LikedMeetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

// Add records a liked meetup, replacing any earlier record for the same post.
func (s *LikedMeetupStore) Add(ctx context.Context, m models.LikedMeetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.list(ctx)
	if err != nil {
		return err
	}
	next := make([]models.LikedMeetup, 0, len(existing)+1)
	for _, item := range existing {
		if item.PostID != m.PostID {
			next = append(next, item)
		}
	}
	return putJSON(ctx, s.kv, likedMeetupsKey, append(next, m))
}

// Remove forgets the meetup with the given post id.
func (s *LikedMeetupStore) Remove(ctx context.Context, postID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.list(ctx)
	if err != nil {
		return err
	}
	next := make([]models.LikedMeetup, 0, len(existing))
	for _, item := range existing {
		if item.PostID != postID {
			next = append(next, item)
		}
	}
	return putJSON(ctx, s.kv, likedMeetupsKey, next)
}

func (s *LikedMeetupStore) list(ctx context.Context) ([]models.LikedMeetup, error) {
	return getJSON[[]models.LikedMeetup](ctx, s.kv, likedMeetupsKey)
}

// TeamStore is the repository for the teams the user joined.
type TeamStore struct {
	kv KV
	mu sync.Mutex
}

func NewTeamStore(kv KV) *TeamStore {
	return &TeamStore{kv: kv}
}

func (s *TeamStore) List(ctx context.Context) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

// Get returns the joined team called name.
func (s *TeamStore) Get(ctx context.Context, name string) (models.Team, bool, error) {
	teams, err := s.List(ctx)
	if err != nil {
		return models.Team{}, false, err
	}
	for _, t := range teams {
		if t.Name == name {
			return t, true, nil
		}
	}
	return models.Team{}, false, nil
}

// Add records a joined team, replacing an earlier record with the same name.
func (s *TeamStore) Add(ctx context.Context, team models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.list(ctx)
	if err != nil {
		return err
	}
	next := make([]models.Team, 0, len(existing)+1)
	for _, t := range existing {
		if t.Name != team.Name {
			next = append(next, t)
		}
	}
	return putJSON(ctx, s.kv, joinedTeamsKey, append(next, team))
}

func (s *TeamStore) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.list(ctx)
	if err != nil {
		return err
	}
	next := make([]models.Team, 0, len(existing))
	for _, t := range existing {
		if t.Name != name {
			next = append(next, t)
		}
	}
	return putJSON(ctx, s.kv, joinedTeamsKey, next)
}

func (s *TeamStore) list(ctx context.Context) ([]models.Team, error) {
	return getJSON[[]models.Team](ctx, s.kv, joinedTeamsKey)
}

// getJSON decodes the value under key. Absent or corrupt data yields the zero value.
func getJSON[T any](ctx context.Context, kv KV, key string) (T, error) {
	var zero T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, nil
	}
	return v, nil
}

func putJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
