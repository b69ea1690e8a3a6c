package app

import (
	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

const (
	// MaxRoomMembers caps a room's roster; join is rejected at the cap
	// unless the session is already a member.
	MaxRoomMembers = 5
	// HistoryLimit bounds a room's chat ring; oldest entries go first.
	HistoryLimit = 500
)

// State is the authoritative in-memory container for rooms, sessions,
// history and call rosters. It carries no locking of its own: the
// orchestrator owns it exclusively and serializes every mutation.
type State struct {
	Rooms    map[domain.RoomName]*RoomState
	Sessions map[core.SessionID]*SessionState
}

func NewState() *State {
	return &State{
		Rooms:    make(map[domain.RoomName]*RoomState),
		Sessions: make(map[core.SessionID]*SessionState),
	}
}

// RoomState bundles everything that must die together when the room is
// deleted: metadata, the ordered roster, the history ring and the call
// roster.
type RoomState struct {
	Room    *domain.Room
	Members []core.SessionID
	History []*domain.Entry
	// Calls is nil while nobody is in the call; the map only exists
	// between the first join and the last leave.
	Calls map[core.SessionID]domain.Profile
}

func NewRoomState(room *domain.Room) *RoomState {
	return &RoomState{Room: room}
}

func (rs *RoomState) IsMember(sid core.SessionID) bool {
	for _, m := range rs.Members {
		if m == sid {
			return true
		}
	}
	return false
}

// AddMember appends to the roster unless the session is already on it.
func (rs *RoomState) AddMember(sid core.SessionID) {
	if rs.IsMember(sid) {
		return
	}
	rs.Members = append(rs.Members, sid)
}

func (rs *RoomState) RemoveMember(sid core.SessionID) {
	for i, m := range rs.Members {
		if m == sid {
			rs.Members = append(rs.Members[:i], rs.Members[i+1:]...)
			return
		}
	}
}

// SetCall inserts or refreshes a call roster entry.
func (rs *RoomState) SetCall(sid core.SessionID, snap domain.Profile) {
	if rs.Calls == nil {
		rs.Calls = make(map[core.SessionID]domain.Profile)
	}
	rs.Calls[sid] = snap
}

// RemoveCall drops a roster entry and reports whether anything changed.
// An emptied roster is released entirely rather than kept as a zero-length
// placeholder.
func (rs *RoomState) RemoveCall(sid core.SessionID) bool {
	if rs.Calls == nil {
		return false
	}
	if _, ok := rs.Calls[sid]; !ok {
		return false
	}
	delete(rs.Calls, sid)
	if len(rs.Calls) == 0 {
		rs.Calls = nil
	}
	return true
}

// CallRoster returns the call participants as a snapshot slice, never nil.
func (rs *RoomState) CallRoster() []domain.Profile {
	out := make([]domain.Profile, 0, len(rs.Calls))
	for _, p := range rs.Calls {
		out = append(out, p)
	}
	return out
}

// AppendHistory pushes an entry and evicts from the front once over the
// cap.
func (rs *RoomState) AppendHistory(e *domain.Entry) {
	rs.History = append(rs.History, e)
	if n := len(rs.History) - HistoryLimit; n > 0 {
		rs.History = rs.History[n:]
	}
}

// SessionState is one live connection: identity, transport endpoint,
// normalized source address and current room ("" until joined).
type SessionState struct {
	Profile *domain.Profile
	Conn    core.EventConn
	Addr    string
	Room    domain.RoomName
}
