package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// Maximum audio buffered for one utterance.
	maxUtteranceSize = 10 * 1024 * 1024

	// Size of the binary frames carrying synthesized audio.
	speechChunkSize = 16 * 1024

	// Time allowed for one transcribe, reply and speak turn.
	turnTimeout = 2 * time.Minute
)

// VoiceTurner runs the steps of a spoken exchange
type VoiceTurner interface {
	Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error)
	Respond(ctx context.Context, sessionID, transcript string) (string, error)
	Speak(ctx context.Context, reply string) (*repositories.SynthesizedAudio, error)
}

// Hub maintains the set of active voice clients.
type Hub struct {
	// Registered clients keyed by session.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	stopped chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	voice    VoiceTurner
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a new WebSocket hub. An empty allowedOrigins list or "*"
// accepts every origin.
func NewHub(voice VoiceTurner, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		voice:      voice,
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigins),
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Name identifies the hub in a service group
func (h *Hub) Name() string { return "websocket-hub" }

// Run starts the hub's main loop. Remaining clients are released when ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if previous, ok := h.clients[client.sessionID]; ok {
				previous.release()
			}
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.sessionID]; ok && current == client {
				delete(h.clients, client.sessionID)
			}
			h.mu.Unlock()
			client.release()
			h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))

		case <-ctx.Done():
			close(h.stopped)
			h.mu.Lock()
			for id, client := range h.clients {
				client.release()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

// ActiveClients returns the number of connected sessions
func (h *Hub) ActiveClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Closed once the client is released.
	done        chan struct{}
	releaseOnce sync.Once

	// Closed when writePump exits; nothing drains send after that.
	writerDone chan struct{}

	sessionID string
	logger    *zap.Logger

	mutex      sync.Mutex
	language   string
	sampleRate int
	encoding   string
	listening  bool
	audio      bytes.Buffer
	chunkCount int
	turnCancel context.CancelFunc
}

// ServeClient upgrades the request and attaches a voice client for sessionID.
func ServeClient(hub *Hub, c echo.Context, sessionID, language string) error {
	conn, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan WriteData, 256),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
		sessionID:  sessionID,
		language:   language,
		logger:     hub.logger.With(zap.String("sessionID", sessionID)),
	}

	select {
	case client.hub.register <- client:
	case <-hub.stopped:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the client state.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			if !c.processMessage(message) {
				return
			}
		case websocket.BinaryMessage:
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps queued frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// processMessage handles a control frame. It returns false when the client asked to close.
func (c *Client) processMessage(message []byte) bool {
	msg, err := ParseControlMessage(message)
	if err != nil {
		c.logger.Warn("Invalid control message", zap.Error(err))
		c.sendEvent(NewErrorEvent(c.sessionID, ErrorCodeInvalidMessage, err.Error()))
		return true
	}

	switch msg.Type {
	case MessageTypeListeningStart:
		c.handleListeningStart(msg)
	case MessageTypeListeningEnd:
		c.handleListeningEnd()
	case MessageTypePing:
		c.sendEvent(newEvent(MessageTypePong, c.sessionID))
	case MessageTypeClose:
		c.release()
		return false
	}
	return true
}

// processBinaryAudioChunk buffers audio of the current utterance
func (c *Client) processBinaryAudioChunk(data []byte) {
	c.mutex.Lock()
	if !c.listening {
		c.mutex.Unlock()
		c.logger.Warn("Received binary audio chunk outside of an utterance", zap.Int("size", len(data)))
		return
	}
	if c.audio.Len()+len(data) > maxUtteranceSize {
		c.listening = false
		c.audio.Reset()
		c.mutex.Unlock()

		c.sendEvent(NewErrorEvent(c.sessionID, ErrorCodeAudioTooLarge, "utterance exceeds the audio limit"))
		c.sendEvent(newEvent(MessageTypeIdle, c.sessionID))
		return
	}

	c.audio.Write(data)
	c.chunkCount++
	c.mutex.Unlock()
}

// handleListeningStart begins a new utterance. A reply still being spoken is cancelled.
func (c *Client) handleListeningStart(msg *ControlMessage) {
	c.mutex.Lock()

	if c.turnCancel != nil {
		c.turnCancel()
		c.turnCancel = nil
		c.logger.Info("Active reply superseded by new utterance")
	}

	c.listening = true
	c.audio.Reset()
	c.chunkCount = 0
	if msg.Language != "" {
		c.language = msg.Language
	}
	c.sampleRate = msg.SampleRate
	c.encoding = msg.Encoding
	c.mutex.Unlock()

	c.sendEvent(newEvent(MessageTypeListeningStart, c.sessionID))
}

// handleListeningEnd closes the utterance and runs the reply turn in the background
func (c *Client) handleListeningEnd() {
	c.mutex.Lock()
	if !c.listening {
		c.mutex.Unlock()
		c.sendEvent(NewErrorEvent(c.sessionID, ErrorCodeNotListening, "listening_end without listening_start"))
		return
	}
	c.listening = false

	input := repositories.AudioInput{
		Data:       append([]byte(nil), c.audio.Bytes()...),
		Filename:   "audio.webm",
		Language:   c.language,
		SampleRate: c.sampleRate,
		Encoding:   c.encoding,
	}
	c.audio.Reset()

	c.logger.Info("Utterance received",
		zap.Int("chunks", c.chunkCount),
		zap.Int("audioBytes", len(input.Data)))

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	c.turnCancel = cancel
	c.mutex.Unlock()

	go c.runTurn(ctx, cancel, input)
}

func (c *Client) runTurn(ctx context.Context, cancel context.CancelFunc, input repositories.AudioInput) {
	defer cancel()

	transcript, err := c.hub.voice.Transcribe(ctx, input)
	if err != nil {
		c.failTurn(ctx, ErrorCodeTranscriptionFailed, "Failed to transcribe audio", err)
		return
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		c.sendEvent(newEvent(MessageTypeIdle, c.sessionID))
		return
	}
	c.sendEvent(NewTranscriptEvent(c.sessionID, transcript))

	reply, err := c.hub.voice.Respond(ctx, c.sessionID, transcript)
	if err != nil {
		c.failTurn(ctx, ErrorCodeReplyFailed, "Failed to get a reply", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	audio, err := c.hub.voice.Speak(ctx, reply)
	if err != nil {
		c.failTurn(ctx, ErrorCodeSpeechFailed, "Failed to generate speech", err)
		return
	}
	defer audio.Body.Close()

	c.sendEvent(NewSpeakingStartEvent(c.sessionID, reply))
	if err := c.streamAudio(ctx, audio.Body); err != nil {
		c.failTurn(ctx, ErrorCodeSpeechFailed, "Failed to stream speech", err)
		return
	}
	c.sendEvent(newEvent(MessageTypeSpeakingEnd, c.sessionID))
	c.sendEvent(newEvent(MessageTypeIdle, c.sessionID))
}

func (c *Client) streamAudio(ctx context.Context, body io.Reader) error {
	buf := make([]byte, speechChunkSize)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := body.Read(buf)
		if n > 0 {
			c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: append([]byte(nil), buf[:n]...)})
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// failTurn reports a failed step. Nothing is sent when the turn was superseded or released.
func (c *Client) failTurn(ctx context.Context, code, message string, err error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		c.logger.Debug("Voice turn cancelled", zap.String("step", code))
		return
	}
	c.logger.Error("Voice turn failed", zap.String("step", code), zap.Error(err))
	c.sendEvent(NewErrorEvent(c.sessionID, code, message))
	c.sendEvent(newEvent(MessageTypeIdle, c.sessionID))
}

func (c *Client) sendEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("Failed to encode event", zap.Error(err))
		return
	}
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) enqueue(data WriteData) {
	select {
	case c.send <- data:
	case <-c.done:
	case <-c.writerDone:
	}
}

// release stops any running turn and drops buffered audio. Safe to call more than once.
func (c *Client) release() {
	c.releaseOnce.Do(func() {
		close(c.done)

		c.mutex.Lock()
		defer c.mutex.Unlock()
		if c.turnCancel != nil {
			c.turnCancel()
			c.turnCancel = nil
		}
		c.listening = false
		c.audio.Reset()
	})
}
