package orch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

// Seed creates the default room set at startup. Existing names are left
// alone so a repeated seed is harmless.
func (o *Orchestrator) Seed(names []string) {
	for _, name := range names {
		if err := o.CreateRoom(name, ""); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("room", name).Msg("seed room skipped")
		}
	}
}

func (o *Orchestrator) CreateRoom(name, password string) error {
	room, err := domain.NewRoom(name, password)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.state.Rooms[room.Name]; ok {
		return app.ErrRoomExists
	}
	o.state.Rooms[room.Name] = app.NewRoomState(room)
	log.Info().Str("module", "orch").Str("room", string(room.Name)).Msg("room created")
	o.broadcastAllLocked(core.NewRoomsUpdateEvent(o.publicRoomsLocked()))
	return nil
}

// DeleteRoom evicts every member with a direct notice and discards all
// dependent state in one step. There is no "left" chatter: the room the
// notice would refer to is gone.
func (o *Orchestrator) DeleteRoom(name string) error {
	rn := domain.RoomName(strings.TrimSpace(name))

	o.mu.Lock()
	defer o.mu.Unlock()
	rs, ok := o.state.Rooms[rn]
	if !ok {
		return app.ErrRoomNotFound
	}
	for _, sid := range rs.Members {
		sess, ok := o.state.Sessions[sid]
		if !ok {
			continue
		}
		o.send(sess.Conn, core.NewRoomDeletedEvent(rn))
		sess.Room = ""
	}
	delete(o.state.Rooms, rn)
	log.Info().Str("module", "orch").Str("room", string(rn)).Int("evicted", len(rs.Members)).Msg("room deleted")
	o.broadcastAllLocked(core.NewRoomsUpdateEvent(o.publicRoomsLocked()))
	return nil
}

// BlockAddress adds the address to the room's blocklist and immediately
// evicts every connected member originating from it.
func (o *Orchestrator) BlockAddress(name, address string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	rs, ok := o.state.Rooms[domain.RoomName(strings.TrimSpace(name))]
	if !ok {
		return app.ErrRoomNotFound
	}
	addr, err := app.NormalizeAddr(address)
	if err != nil {
		return err
	}
	rs.Room.Block(addr)
	log.Info().Str("module", "orch").Str("room", string(rs.Room.Name)).Str("addr", addr).Msg("address blocked")

	for _, sid := range append([]core.SessionID(nil), rs.Members...) {
		sess, ok := o.state.Sessions[sid]
		if !ok || sess.Addr != addr {
			continue
		}
		o.send(sess.Conn, core.NewRoomBlockedEvent(rs.Room.Name))
		o.teardownLocked(sid, true)
	}
	return nil
}

func (o *Orchestrator) UnblockAddress(name, address string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	rs, ok := o.state.Rooms[domain.RoomName(strings.TrimSpace(name))]
	if !ok {
		return app.ErrRoomNotFound
	}
	addr, err := app.NormalizeAddr(address)
	if err != nil {
		return err
	}
	if !rs.Room.Unblock(addr) {
		return app.ErrNotBlocked
	}
	log.Info().Str("module", "orch").Str("room", string(rs.Room.Name)).Str("addr", addr).Msg("address unblocked")
	return nil
}

func (o *Orchestrator) publicRoomsLocked() []string {
	out := make([]string, 0, len(o.state.Rooms))
	for name := range o.state.Rooms {
		out = append(out, string(name))
	}
	sort.Strings(out)
	return out
}

// PublicRooms lists room names only; passwords never leave the admin
// surface.
func (o *Orchestrator) PublicRooms() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.publicRoomsLocked()
}

// AdminRooms returns full room metadata, blocklists and passwords
// included. Callers must gate it behind admin auth.
func (o *Orchestrator) AdminRooms() []core.RoomInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]core.RoomInfo, 0, len(o.state.Rooms))
	for _, rs := range o.state.Rooms {
		out = append(out, core.RoomInfo{
			Name:        rs.Room.Name,
			Password:    rs.Room.Password,
			CreatedAt:   rs.Room.CreatedAt,
			Blocked:     rs.Room.BlockedList(),
			MemberCount: len(rs.Members),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Join validates everything before touching state, so a failed join
// leaves no partial membership. A rejoin by a current member refreshes
// the profile and bypasses the cap.
func (o *Orchestrator) Join(sid core.SessionID, roomName, password, name, icon string) ([]domain.Entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if strings.TrimSpace(roomName) == "" {
		return nil, app.ErrMissingRoom
	}
	rs, ok := o.state.Rooms[domain.RoomName(strings.TrimSpace(roomName))]
	if !ok {
		return nil, app.ErrRoomNotFound
	}
	sess, ok := o.state.Sessions[sid]
	if !ok {
		return nil, app.ErrNoSession
	}
	if sess.Addr != "" && rs.Room.IsBlocked(sess.Addr) {
		return nil, app.ErrBlocked
	}
	if rs.Room.Password != password {
		return nil, app.ErrWrongPassword
	}

	candidate := *sess.Profile
	if err := candidate.SetName(name); err != nil {
		return nil, err
	}
	if icon != "" {
		if err := candidate.SetIcon(icon); err != nil {
			return nil, err
		}
	}

	wasMember := rs.IsMember(sid)
	if !wasMember && len(rs.Members) >= app.MaxRoomMembers {
		return nil, app.ErrRoomFull
	}

	// Past this point the join succeeds; mutations start here.
	if sess.Room != "" && sess.Room != rs.Room.Name {
		o.teardownLocked(sid, true)
	}
	*sess.Profile = candidate
	rs.AddMember(sid)
	sess.Room = rs.Room.Name
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(rs.Room.Name)).Bool("rejoin", wasMember).Msg("joined room")

	o.broadcastRoomLocked(rs, core.NewSystemEvent(fmt.Sprintf("%s joined %s", sess.Profile.Name, rs.Room.Name)), sid)
	o.broadcastRoomLocked(rs, core.NewRoomUsersEvent(rs.Room.Name, o.roomUsersLocked(rs)))
	o.send(sess.Conn, core.NewCallParticipantsEvent(rs.Room.Name, rs.CallRoster()))

	history := make([]domain.Entry, 0, len(rs.History))
	for _, e := range rs.History {
		history = append(history, *e)
	}
	return history, nil
}

func (o *Orchestrator) Leave(sid core.SessionID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return app.ErrNotJoined
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(sess.Room)).Msg("left room")
	o.teardownLocked(sid, true)
	return nil
}

// Disconnect is the transport-loss variant of Leave: safe for sessions
// that never joined, and it also drops the profile entry.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.state.Sessions[sid]; !ok {
		return
	}
	o.teardownLocked(sid, true)
	delete(o.state.Sessions, sid)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("session disconnected")
}

// teardownLocked is the single exit path for membership: leave,
// disconnect, kick and blocklist eviction all land here, which is what
// keeps membership, call roster and room association from drifting.
func (o *Orchestrator) teardownLocked(sid core.SessionID, notify bool) {
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return
	}
	room := sess.Room
	sess.Room = ""
	rs, ok := o.state.Rooms[room]
	if !ok {
		return
	}

	rs.RemoveMember(sid)
	if rs.RemoveCall(sid) {
		o.broadcastRoomLocked(rs, core.NewCallParticipantsEvent(room, rs.CallRoster()))
	}
	if notify {
		o.broadcastRoomLocked(rs, core.NewSystemEvent(fmt.Sprintf("%s left %s", sess.Profile.Name, room)))
		o.broadcastRoomLocked(rs, core.NewRoomUsersEvent(room, o.roomUsersLocked(rs)))
	}
}
