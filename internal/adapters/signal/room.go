package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/rallyhq/rally/internal/core"
	"github.com/rallyhq/rally/internal/domain"
)

// joinResult answers a join request. Messages must not be omitempty: a
// successful join into a quiet room replies with "messages":[].
type joinResult struct {
	Type     string         `json:"type"`
	OK       bool           `json:"ok"`
	Room     string         `json:"room,omitempty"`
	Messages []domain.Entry `json:"messages"`
	Error    string         `json:"error,omitempty"`
}

func (ctl *EventWSController) handleJoin(sid core.SessionID, c *wsEventConn, data []byte) {
	type joinPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		User     string `json:"user"`
		Password string `json:"password"`
		Icon     string `json:"icon,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(c, map[string]any{
			"type":  "join-result",
			"ok":    false,
			"error": "bad payload",
		})
		return
	}

	history, err := ctl.Orch.Join(sid, p.Room, p.Password, p.User, p.Icon)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join rejected")
		ctl.sendJSON(c, map[string]any{
			"type":  "join-result",
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	if history == nil {
		history = []domain.Entry{}
	}

	room, _ := ctl.Orch.SessionRoom(sid)
	ctl.sendJSON(c, joinResult{
		Type:     "join-result",
		OK:       true,
		Room:     string(room),
		Messages: history,
	})
}

func (ctl *EventWSController) handleLeave(sid core.SessionID, c *wsEventConn) {
	room, _ := ctl.Orch.SessionRoom(sid)
	if err := ctl.Orch.Leave(sid); err != nil {
		ctl.sendJSON(c, map[string]any{
			"type":  "leave-result",
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	ctl.sendJSON(c, map[string]any{
		"type": "leave-result",
		"ok":   true,
		"room": string(room),
	})
}
