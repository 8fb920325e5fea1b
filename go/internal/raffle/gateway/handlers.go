package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/legoraffle/go/internal/raffle/participant"
	"github.com/mcdev12/legoraffle/go/internal/raffle/session"
	"github.com/mcdev12/legoraffle/go/internal/raffle/view"
)

// StateResponse is the body of GET /api/raffle/state and of successful
// commands answered in JSON.
type StateResponse struct {
	RaffleID string        `json:"raffle_id"`
	State    session.State `json:"state"`
	View     view.Model    `json:"view"`
}

// TextResponse is the JSON body of POST /raffle/text.
type TextResponse struct {
	Count    int  `json:"count"`
	CanStart bool `json:"can_start"`
}

// ErrorResponse is the JSON body of a refused command.
type ErrorResponse struct {
	Error string         `json:"error"`
	State *session.State `json:"state,omitempty"`
}

func (s *Service) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w, http.StatusOK, s.raffle.State())
}

func (s *Service) handleText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	st, err := s.raffle.SetText(r.PostForm.Get("text"))
	if err != nil {
		s.writeCommandError(w, r, err, st)
		return
	}

	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Count: len(st.Names()), CanStart: st.CanStart()})
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if r.PostForm.Has("text") {
		if st, err := s.raffle.SetText(r.PostForm.Get("text")); err != nil {
			s.writeCommandError(w, r, err, st)
			return
		}
	}

	st, err := s.raffle.Start()
	if err != nil {
		s.writeCommandError(w, r, err, st)
		return
	}
	s.writeCommandResult(w, r, st)
}

func (s *Service) handleAgain(w http.ResponseWriter, r *http.Request) {
	st, err := s.raffle.DrawAgain()
	if err != nil {
		s.writeCommandError(w, r, err, st)
		return
	}
	s.writeCommandResult(w, r, st)
}

func (s *Service) handleNew(w http.ResponseWriter, r *http.Request) {
	st, err := s.raffle.NewRaffle()
	if err != nil {
		s.writeCommandError(w, r, err, st)
		return
	}
	s.writeCommandResult(w, r, st)
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse(s.raffle.State()))
}

func (s *Service) handleFanfare(w http.ResponseWriter, r *http.Request) {
	if len(s.config.Fanfare) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, "fanfare.wav", s.startedAt, bytes.NewReader(s.config.Fanfare))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}

func (s *Service) stateResponse(st session.State) StateResponse {
	return StateResponse{
		RaffleID: s.raffle.ID().String(),
		State:    st,
		View:     view.Build(st, nil),
	}
}

func (s *Service) writeCommandResult(w http.ResponseWriter, r *http.Request, st session.State) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse(st))
}

// writeCommandError maps session errors to statuses. A refused start renders
// the entry view with its inline message for form posts.
func (s *Service) writeCommandError(w http.ResponseWriter, r *http.Request, err error, st session.State) {
	switch {
	case errors.Is(err, participant.ErrTooFewParticipants):
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: participant.ValidationMessage, State: &st})
			return
		}
		s.writePage(w, http.StatusUnprocessableEntity, st)

	case errors.Is(err, session.ErrNotIdle):
		if wantsJSON(r) {
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), State: &st})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)

	case errors.Is(err, session.ErrClosed):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)

	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("raffle command failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Service) writePage(w http.ResponseWriter, status int, st session.State) {
	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, s.model(st)); err != nil {
		log.Error().Err(err).Msg("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("failed to write page")
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
