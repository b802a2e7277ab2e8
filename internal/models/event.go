package models

import "time"

// EventInput is the normalized payload handed to a calendar backend to create or
// update an event. It is independent of any specific calendar provider.
type EventInput struct {
	Title     string    // Summary or title of the event
	Location  string    // Optional location
	Notes     string    // Optional free-form notes
	StartTime time.Time // Start time of the event
	EndTime   time.Time // End time of the event
}

// CalendarRef identifies one calendar inside a backend.
type CalendarRef struct {
	ID         string
	Title      string
	Modifiable bool
}

// Capability is the outcome of asking a backend whether calendar writes are possible.
type Capability int

const (
	// CapabilityUnsupported means no calendar integration is configured at all.
	CapabilityUnsupported Capability = iota
	CapabilityDenied
	CapabilityGranted
)

func (c Capability) String() string {
	switch c {
	case CapabilityDenied:
		return "denied"
	case CapabilityGranted:
		return "granted"
	default:
		return "unsupported"
	}
}

// Meetup describes one liked social meetup.
type Meetup struct {
	PostID   int    `json:"postId"`
	Sport    string `json:"sport"`
	Location string `json:"location"`
	Time     string `json:"time"`    // e.g. "7:30 PM"
	DateKey  string `json:"dateKey"` // "YYYY-MM-DD"
}

// LikedMeetup is the locally persisted record of a meetup the user liked.
type LikedMeetup struct {
	Meetup
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// TeamGame is one weekly fixture of a team. Date is a weekday plus a time,
// e.g. "Wed 6:00 PM", resolved against the next occurrence of that weekday.
type TeamGame struct {
	Opponent string `json:"opponent" yaml:"opponent"`
	Date     string `json:"date" yaml:"date"`
	Location string `json:"location" yaml:"location"`
}

// Team is a team the user joined, with its game schedule.
type Team struct {
	Name  string     `json:"name" yaml:"name"`
	Sport string     `json:"sport" yaml:"sport"`
	Games []TeamGame `json:"games" yaml:"games"`
}
