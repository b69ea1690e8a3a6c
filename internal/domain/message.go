package domain

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Entry is one delivered chat message or location share. Entries are
// immutable once created and live only in the per-room history ring.
type Entry struct {
	User     string    `json:"user"`
	Time     time.Time `json:"time"`
	Text     string    `json:"text,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// NewEntry returns nil for an entry with neither text nor coordinates;
// such messages are dropped, not stored.
func NewEntry(user, text, icon string, loc *Location) *Entry {
	if text == "" && loc == nil {
		return nil
	}
	return &Entry{
		User:     user,
		Time:     time.Now(),
		Text:     text,
		Icon:     icon,
		Location: loc,
	}
}
