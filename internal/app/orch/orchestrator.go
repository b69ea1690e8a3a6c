// Package orch hosts the session lifecycle coordinator. Every mutation of
// room, membership, history and call state funnels through the
// Orchestrator under one mutex, so cap checks and teardown sequences are
// atomic with respect to each other.
package orch

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

type Orchestrator struct {
	mu    sync.Mutex
	state *app.State
}

func New(state *app.State) *Orchestrator {
	return &Orchestrator{state: state}
}

// Connect registers a fresh session for a connection. The profile starts
// as a guest; join and profile-update fill in the real identity.
func (o *Orchestrator) Connect(sid core.SessionID, remoteAddr string, conn core.EventConn) {
	addr, err := app.NormalizeAddr(remoteAddr)
	if err != nil {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("remote", remoteAddr).Msg("unparseable remote address")
		addr = ""
	}
	profile := &domain.Profile{ID: string(sid), Name: "guest"}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Sessions[sid] = &app.SessionState{Profile: profile, Conn: conn, Addr: addr}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("addr", addr).Msg("session connected")
}

// send marshals and fires one event at one connection; delivery is
// best-effort and never blocks the coordinator.
func (o *Orchestrator) send(conn core.EventConn, v any) {
	if conn == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("event marshal")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "orch").Msg("event dropped")
	}
}

func (o *Orchestrator) broadcastRoomLocked(rs *app.RoomState, v any, except ...core.SessionID) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("event marshal")
		return
	}
outer:
	for _, sid := range rs.Members {
		for _, ex := range except {
			if sid == ex {
				continue outer
			}
		}
		if sess, ok := o.state.Sessions[sid]; ok && sess.Conn != nil {
			if err := sess.Conn.TrySend(b); err != nil {
				log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("broadcast dropped")
			}
		}
	}
}

func (o *Orchestrator) broadcastAllLocked(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("event marshal")
		return
	}
	for sid, sess := range o.state.Sessions {
		if sess.Conn == nil {
			continue
		}
		if err := sess.Conn.TrySend(b); err != nil {
			log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("broadcast dropped")
		}
	}
}

func (o *Orchestrator) roomUsersLocked(rs *app.RoomState) []domain.Profile {
	out := make([]domain.Profile, 0, len(rs.Members))
	for _, sid := range rs.Members {
		if sess, ok := o.state.Sessions[sid]; ok {
			out = append(out, *sess.Profile)
		}
	}
	return out
}

// RoomUsers returns the ordered member roster of a room.
func (o *Orchestrator) RoomUsers(room domain.RoomName) ([]domain.Profile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rs, ok := o.state.Rooms[room]
	if !ok {
		return nil, app.ErrRoomNotFound
	}
	return o.roomUsersLocked(rs), nil
}

// CallRoster returns the room's call participants; the list is empty,
// never nil, when no call is running.
func (o *Orchestrator) CallRoster(room domain.RoomName) ([]domain.Profile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rs, ok := o.state.Rooms[room]
	if !ok {
		return nil, app.ErrRoomNotFound
	}
	return rs.CallRoster(), nil
}

// SessionRoom reports which room a session is joined to, if any.
func (o *Orchestrator) SessionRoom(sid core.SessionID) (domain.RoomName, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return "", false
	}
	return sess.Room, true
}

func (o *Orchestrator) HasSession(sid core.SessionID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.state.Sessions[sid]
	return ok
}

// Profile returns a copy of the session's current profile.
func (o *Orchestrator) Profile(sid core.SessionID) (domain.Profile, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok {
		return domain.Profile{}, false
	}
	return *sess.Profile, true
}
