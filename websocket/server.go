package websocket

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/saja-boys/jinwoo-server/logger"
	"github.com/saja-boys/jinwoo-server/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dev console; any origin may subscribe
	},
}

// LogServer broadcasts turn logs to WebSocket subscribers and replays a ring
// buffer of recent entries to newcomers.
type LogServer struct {
	hub           *Hub
	port          int
	server        *http.Server
	log           *logger.Logger
	logBuffer     []*types.TurnLog
	bufferMutex   sync.RWMutex
	maxBufferSize int
	mu            sync.Mutex
}

// NewLogServer creates a log stream server on port.
func NewLogServer(port int) *LogServer {
	return &LogServer{
		hub:           NewHub(),
		port:          port,
		log:           logger.GetLogger().WithField("component", "ws-log"),
		logBuffer:     make([]*types.TurnLog, 0, 100),
		maxBufferSize: 100,
	}
}

// Start starts the WebSocket server.
func (s *LogServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("WebSocket server error", err)
		}
	}()

	s.log.Infof("turn-log stream listening on :%d", s.port)
	return nil
}

// Stop stops the WebSocket server.
func (s *LogServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// BroadcastTurnLog buffers the entry and fans it out to all subscribers.
// It satisfies session.LogSink.
func (s *LogServer) BroadcastTurnLog(entry *types.TurnLog) {
	s.bufferLog(entry)

	frame, err := types.NewWebSocketMessage(types.WSTypeLog, entry).ToJSON()
	if err != nil {
		s.log.Error("failed to marshal turn log", err)
		return
	}
	s.hub.Broadcast(frame)
}

func (s *LogServer) bufferLog(entry *types.TurnLog) {
	s.bufferMutex.Lock()
	defer s.bufferMutex.Unlock()

	s.logBuffer = append(s.logBuffer, entry)
	if len(s.logBuffer) > s.maxBufferSize {
		s.logBuffer = s.logBuffer[len(s.logBuffer)-s.maxBufferSize:]
	}
}

// handleWebSocket upgrades the connection and starts the client pumps.
func (s *LogServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("failed to upgrade connection", err)
		return
	}

	client := NewClient(s.hub, conn)
	client.hub.register <- client

	s.sendConnectionConfirmation(client)
	s.replayBufferedLogs(client)

	go client.writePump()
	go client.readPump()
}

func (s *LogServer) sendConnectionConfirmation(client *Client) {
	frame, err := types.NewWebSocketMessage(types.WSTypeConnection, map[string]string{
		"clientId": "client-" + uuid.NewString(),
		"status":   "connected",
	}).ToJSON()
	if err != nil {
		return
	}
	client.send <- frame
}

func (s *LogServer) replayBufferedLogs(client *Client) {
	s.bufferMutex.RLock()
	defer s.bufferMutex.RUnlock()

	for _, entry := range s.logBuffer {
		frame, err := types.NewWebSocketMessage(types.WSTypeLog, entry).ToJSON()
		if err != nil {
			continue
		}
		select {
		case client.send <- frame:
		default:
			return
		}
	}
}
