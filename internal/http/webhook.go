package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"sleepscore-bot/internal/telegram"
)

const maxRequestBody = 1 << 20 // 1 MiB

// update pairs the decoded payload with nothing else for now; a struct keeps
// room for per-update metadata without changing the queue type.
type update struct {
	payload telegram.Update
}

// handleWebhook accepts a platform event, enqueues it and acknowledges
// immediately. Processing outcome never affects the response: the platform
// must not re-deliver. A full queue drops the update with a warning.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	select {
	case s.updates <- update{payload: upd}:
	default:
		s.log.Warn().Int64("update_id", upd.UpdateID).Msg("update queue full, dropping update")
	}

	w.WriteHeader(http.StatusOK)
}

// processUpdates drains the queue in arrival order until ctx is cancelled.
func (s *Server) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd := <-s.updates:
			s.bot.HandleUpdate(ctx, upd.payload)
		}
	}
}
