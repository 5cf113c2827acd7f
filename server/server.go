// Package server exposes the chat turn pipeline and the voice, translation
// and static lookup endpoints over HTTP, with permissive CORS for the
// browser frontend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/saja-boys/jinwoo-server/config"
	"github.com/saja-boys/jinwoo-server/logger"
	"github.com/saja-boys/jinwoo-server/mission"
	"github.com/saja-boys/jinwoo-server/session"
	"github.com/saja-boys/jinwoo-server/upstream"
)

// Server wires the route handlers to the turn controller and the upstream
// clients.
type Server struct {
	port       int
	curriculum *mission.Curriculum
	controller *session.Controller
	voice      *upstream.VoiceClient
	translator *upstream.TranslationClient
	log        *logger.Logger
	httpServer *http.Server
}

// New creates the HTTP server.
func New(cfg *config.EnvConfig, curriculum *mission.Curriculum, controller *session.Controller, voice *upstream.VoiceClient, translator *upstream.TranslationClient) *Server {
	return &Server{
		port:       cfg.Port,
		curriculum: curriculum,
		controller: controller,
		voice:      voice,
		translator: translator,
		log:        logger.GetLogger().WithField("component", "http"),
	}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.requirePost(s.handleChat))
	mux.HandleFunc("/api/jinu-voice", s.requirePost(s.handleVoice))
	mux.HandleFunc("/api/translate", s.requirePost(s.handleTranslate))
	mux.HandleFunc("/api/missions", s.requireGet(s.handleMissions))
	mux.HandleFunc("/api/health", s.requireGet(s.handleHealth))
	mux.HandleFunc("/api/expressions", s.requireGet(s.handleExpressions))
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = mux
	handler = s.recoveryMiddleware(handler)
	handler = s.accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = corsMiddleware(handler)
	return handler
}

// Start runs the server until Shutdown or a listener error.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Infof("listening on :%d", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requirePost rejects every verb except POST. OPTIONS never reaches here;
// the CORS middleware answers it first.
func (s *Server) requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}

func (s *Server) requireGet(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "API endpoint not found")
}
