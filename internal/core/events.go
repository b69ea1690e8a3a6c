package core

import (
	"encoding/json"
	"time"

	"github.com/rallyhq/rally/internal/domain"
)

// Server→client event payloads. Every payload carries a "type"
// discriminator so a single WS channel can multiplex them.

type SystemEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewSystemEvent(text string) SystemEvent {
	return SystemEvent{Type: "system", Text: text}
}

type RoomsUpdateEvent struct {
	Type  string   `json:"type"`
	Rooms []string `json:"rooms"`
}

func NewRoomsUpdateEvent(rooms []string) RoomsUpdateEvent {
	return RoomsUpdateEvent{Type: "rooms-update", Rooms: rooms}
}

type RoomUsersEvent struct {
	Type  string           `json:"type"`
	Room  domain.RoomName  `json:"room"`
	Users []domain.Profile `json:"users"`
}

func NewRoomUsersEvent(room domain.RoomName, users []domain.Profile) RoomUsersEvent {
	return RoomUsersEvent{Type: "room-users", Room: room, Users: users}
}

// CallParticipantsEvent always carries a non-nil list: an empty call
// roster is [] on the wire whether the call never happened or everyone
// left.
type CallParticipantsEvent struct {
	Type         string           `json:"type"`
	Room         domain.RoomName  `json:"room"`
	Participants []domain.Profile `json:"participants"`
}

func NewCallParticipantsEvent(room domain.RoomName, participants []domain.Profile) CallParticipantsEvent {
	if participants == nil {
		participants = []domain.Profile{}
	}
	return CallParticipantsEvent{Type: "call-participants", Room: room, Participants: participants}
}

type MessageEvent struct {
	Type string `json:"type"`
	domain.Entry
}

func NewMessageEvent(e *domain.Entry) MessageEvent {
	return MessageEvent{Type: "message", Entry: *e}
}

type ProfileUpdatedEvent struct {
	Type string `json:"type"`
	domain.Profile
}

func NewProfileUpdatedEvent(p domain.Profile) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{Type: "profile-updated", Profile: p}
}

// SignalRelayEvent carries an opaque WebRTC signaling payload between
// room members; the server never interprets Data.
type SignalRelayEvent struct {
	Type   string          `json:"type"`
	Sender SessionID       `json:"sender"`
	Data   json.RawMessage `json:"data"`
}

func NewSignalRelayEvent(sender SessionID, data json.RawMessage) SignalRelayEvent {
	return SignalRelayEvent{Type: "webrtc", Sender: sender, Data: data}
}

type RoomNoticeEvent struct {
	Type string          `json:"type"`
	Room domain.RoomName `json:"room"`
}

func NewRoomDeletedEvent(room domain.RoomName) RoomNoticeEvent {
	return RoomNoticeEvent{Type: "room-deleted", Room: room}
}

func NewRoomBlockedEvent(room domain.RoomName) RoomNoticeEvent {
	return RoomNoticeEvent{Type: "room-blocked", Room: room}
}

func NewClearHistoryEvent(room domain.RoomName) RoomNoticeEvent {
	return RoomNoticeEvent{Type: "clear-history", Room: room}
}

// RoomInfo is the admin-facing view of a room; the public API exposes
// names only.
type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	Password    string          `json:"password"`
	CreatedAt   time.Time       `json:"created_at"`
	Blocked     []string        `json:"blocked"`
	MemberCount int             `json:"member_count"`
}
