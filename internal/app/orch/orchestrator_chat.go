package orch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/app"
	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

// Message appends a chat or location entry to the room history and fans
// it out. Fire-and-forget: input from non-members, oversized icons and
// empty entries are dropped, not errored.
func (o *Orchestrator) Message(sid core.SessionID, text, icon string, loc *domain.Location) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return
	}
	rs, ok := o.state.Rooms[sess.Room]
	if !ok || !rs.IsMember(sid) {
		return
	}
	if len(icon) > domain.MaxIconBytes {
		return
	}
	entry := domain.NewEntry(sess.Profile.Name, text, icon, loc)
	if entry == nil {
		return
	}
	rs.AppendHistory(entry)
	o.broadcastRoomLocked(rs, core.NewMessageEvent(entry))
}

// CallParticipation mutates the room's call roster. Only current members
// can appear on it; anything else is a silent no-op.
func (o *Orchestrator) CallParticipation(sid core.SessionID, action, name, icon string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return
	}
	rs, ok := o.state.Rooms[sess.Room]
	if !ok || !rs.IsMember(sid) {
		return
	}

	switch action {
	case "join", "update":
		if name != "" {
			if err := sess.Profile.SetName(name); err != nil {
				return
			}
		}
		if icon != "" {
			if err := sess.Profile.SetIcon(icon); err != nil {
				return
			}
		}
		rs.SetCall(sid, *sess.Profile)
	case "leave":
		if !rs.RemoveCall(sid) {
			return
		}
	default:
		log.Warn().Str("module", "orch").Str("action", action).Msg("unknown call action")
		return
	}
	o.broadcastRoomLocked(rs, core.NewCallParticipantsEvent(rs.Room.Name, rs.CallRoster()))
}

// UpdateProfile changes name and/or icon; empty fields keep the current
// value. The updated profile is announced to the session's room if it is
// in one.
func (o *Orchestrator) UpdateProfile(sid core.SessionID, name, icon string) (domain.Profile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok {
		return domain.Profile{}, app.ErrNoSession
	}

	candidate := *sess.Profile
	if name != "" {
		if err := candidate.SetName(name); err != nil {
			return domain.Profile{}, err
		}
	}
	if icon != "" {
		if err := candidate.SetIcon(icon); err != nil {
			return domain.Profile{}, err
		}
	}
	*sess.Profile = candidate

	if sess.Room != "" {
		if rs, ok := o.state.Rooms[sess.Room]; ok {
			if _, inCall := rs.Calls[sid]; inCall {
				rs.SetCall(sid, candidate)
			}
			o.broadcastRoomLocked(rs, core.NewProfileUpdatedEvent(candidate))
		}
	}
	return candidate, nil
}

// RelaySignal forwards an opaque WebRTC signaling payload to the other
// members of the sender's room.
func (o *Orchestrator) RelaySignal(sid core.SessionID, data json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.state.Sessions[sid]
	if !ok || sess.Room == "" {
		return
	}
	rs, ok := o.state.Rooms[sess.Room]
	if !ok || !rs.IsMember(sid) {
		return
	}
	o.broadcastRoomLocked(rs, core.NewSignalRelayEvent(sid, data), sid)
}

// SweepHistory clears every non-empty room buffer and tells the affected
// rooms about it. Rooms with no entries stay quiet.
func (o *Orchestrator) SweepHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for name, rs := range o.state.Rooms {
		if len(rs.History) == 0 {
			continue
		}
		rs.History = nil
		o.broadcastRoomLocked(rs, core.NewClearHistoryEvent(name))
		log.Info().Str("module", "orch").Str("room", string(name)).Msg("history cleared")
	}
}

// StartSweeper runs SweepHistory on a fixed cycle until ctx is done.
func (o *Orchestrator) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.SweepHistory()
			}
		}
	}()
}
