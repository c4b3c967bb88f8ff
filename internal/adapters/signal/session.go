package signal

import (
	"encoding/json"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(c *WsSignalConn, data json.RawMessage) {
	var p joinPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("bad join payload")
			ctl.sendError(c, errBadPayload)
			return
		}
	}
	if err := ctl.Orch.Join(c.id, c, p.Username); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *SignalWSController) handleChat(c *WsSignalConn, data json.RawMessage) {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, errBadPayload)
		return
	}
	// Only joined connections spend rate budget.
	if _, _, ok := ctl.Orch.Registry.RoomOf(c.id); !ok {
		ctl.sendError(c, domain.ErrNoActiveSession)
		return
	}
	if !ctl.limiter.Allow(string(c.id)) {
		log.Warn().Str("module", "signal").Str("conn", string(c.id)).Msg("rate limit exceeded")
		ctl.sendError(c, errRateLimited)
		return
	}
	if err := ctl.Orch.Chat(c.id, text); err != nil {
		ctl.sendError(c, err)
	}
}

// handleLeave ends the session but keeps the connection open.
func (ctl *SignalWSController) handleLeave(c *WsSignalConn) {
	if err := ctl.Orch.Leave(c.id); err != nil {
		ctl.sendError(c, err)
	}
}
