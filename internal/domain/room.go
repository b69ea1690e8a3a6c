package domain

import (
	"errors"
	"strings"
	"time"
)

const MaxRoomNameLen = 36

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
)

type RoomName string

// Room is a named chat/call namespace guarded by a shared password.
// Membership, history and the call roster live in the app state, not here.
type Room struct {
	Name      RoomName
	Password  string
	CreatedAt time.Time
	Blocked   map[string]struct{}
}

// NewRoom trims and validates the name. Passwords are stored as given
// and compared exact-match.
func NewRoom(name, password string) (*Room, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrRoomNameEmpty
	}
	if len(trimmed) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	return &Room{
		Name:      RoomName(trimmed),
		Password:  password,
		CreatedAt: time.Now(),
		Blocked:   make(map[string]struct{}),
	}, nil
}

func (r *Room) Block(addr string) {
	r.Blocked[addr] = struct{}{}
}

// Unblock reports whether the address was actually blocked.
func (r *Room) Unblock(addr string) bool {
	if _, ok := r.Blocked[addr]; !ok {
		return false
	}
	delete(r.Blocked, addr)
	return true
}

func (r *Room) IsBlocked(addr string) bool {
	_, ok := r.Blocked[addr]
	return ok
}

func (r *Room) BlockedList() []string {
	out := make([]string, 0, len(r.Blocked))
	for addr := range r.Blocked {
		out = append(out, addr)
	}
	return out
}
