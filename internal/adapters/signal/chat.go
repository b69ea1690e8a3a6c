package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

// handleMessage is fire-and-forget: malformed or out-of-room messages
// are dropped without a response channel to complain on.
func (ctl *EventWSController) handleMessage(sid core.SessionID, data []byte) {
	type messagePayload struct {
		Type     string           `json:"type"`
		Text     string           `json:"text,omitempty"`
		Icon     string           `json:"icon,omitempty"`
		Location *domain.Location `json:"location,omitempty"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		return
	}
	ctl.Orch.Message(sid, p.Text, p.Icon, p.Location)
}

func (ctl *EventWSController) handleCallParticipation(sid core.SessionID, data []byte) {
	type callPayload struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		User   string `json:"user,omitempty"`
		Icon   string `json:"icon,omitempty"`
	}
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call payload")
		return
	}
	ctl.Orch.CallParticipation(sid, p.Action, p.User, p.Icon)
}

func (ctl *EventWSController) handleProfileUpdate(sid core.SessionID, c *wsEventConn, data []byte) {
	type profilePayload struct {
		Type string `json:"type"`
		User string `json:"user,omitempty"`
		Icon string `json:"icon,omitempty"`
	}
	var p profilePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad profile payload")
		ctl.sendJSON(c, map[string]any{
			"type":  "profile-result",
			"ok":    false,
			"error": "bad payload",
		})
		return
	}

	profile, err := ctl.Orch.UpdateProfile(sid, p.User, p.Icon)
	if err != nil {
		ctl.sendJSON(c, map[string]any{
			"type":  "profile-result",
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	ctl.sendJSON(c, struct {
		Type    string         `json:"type"`
		OK      bool           `json:"ok"`
		Profile domain.Profile `json:"profile"`
	}{Type: "profile-result", OK: true, Profile: profile})
}

// handleWebRTC relays an opaque signaling payload to the sender's room;
// the payload is never parsed here.
func (ctl *EventWSController) handleWebRTC(sid core.SessionID, data []byte) {
	type signalPayload struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	var p signalPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad webrtc payload")
		return
	}
	if len(p.Data) == 0 {
		return
	}
	ctl.Orch.RelaySignal(sid, p.Data)
}
