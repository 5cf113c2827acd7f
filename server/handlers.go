package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saja-boys/jinwoo-server/config"
	"github.com/saja-boys/jinwoo-server/session"
	"github.com/saja-boys/jinwoo-server/types"
)

// handleChat runs one conversational turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A wrong-typed currentMission is the one decode failure with its own
		// message; everything else reads as a missing message.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "currentMission" {
			writeError(w, http.StatusBadRequest, "Current mission is required")
			return
		}
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if req.CurrentMission == nil {
		writeError(w, http.StatusBadRequest, "Current mission is required")
		return
	}

	outcome, err := s.controller.HandleTurn(r.Context(), req.Message, *req.CurrentMission)
	if err != nil {
		var valErr *session.ValidationError
		if errors.As(err, &valErr) {
			writeError(w, http.StatusBadRequest, valErr.Msg)
			return
		}
		// HandleTurn absorbs upstream failures; anything else is a bug.
		panic(err)
	}

	writeJSON(w, http.StatusOK, outcome)
}

// handleVoice proxies text-to-speech. The payload is whatever the voice
// client produced: upstream JSON verbatim, a data-URI result, or the
// fallback notice. Always 200.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req types.VoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	payload := s.voice.Synthesize(r.Context(), req.Text, req.Voice)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleTranslate converts text between the fixed ko/en pair. Upstream
// failure is encoded in the body, never as a 5xx.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req types.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	result := s.translator.Translate(r.Context(), req.Text, req.IsKorean)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.curriculum.Prompts())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:  "OK",
		Message: "AI Jinwoo Server is running!",
	})
}

func (s *Server) handleExpressions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ExpressionsResponse{
		Core:  config.CoreExpressions(),
		Saved: []types.Expression{},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
