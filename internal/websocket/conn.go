package websocket

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ikkim/maison-backend/internal/voice"
	"github.com/ikkim/maison-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 256 * 1024

	sendBuffer  = 256
	frameBuffer = 32

	// MaxChannels bounds the interleaved capture layout a browser may declare.
	MaxChannels = 8
)

var (
	errClientClosed = errors.New("voice client closed")

	ErrInvalidChannels = errors.New("channels must be between 1 and 8")
)

// ParseChannels reads the channels query value. Empty means mono.
func ParseChannels(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxChannels {
		return 0, ErrInvalidChannels
	}
	return n, nil
}

// ClientMessage is a text control message from the browser.
type ClientMessage struct {
	Type string `json:"type"` // start, stop
}

type statusMessage struct {
	Type string `json:"type"`
	voice.Status
}

type playbackMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	StartMS    int64  `json:"start_ms"`
	DurationMS int64  `json:"duration_ms"`
	SampleRate int    `json:"sample_rate"`
	Audio      string `json:"audio"`
}

type stopPlaybackMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Session is the part of voice.Session the bridge drives.
type Session interface {
	Start(ctx context.Context) error
	Stop()
}

// Client bridges one browser WebSocket to a voice session. It is both the
// microphone (binary frames of interleaved float32 samples) and the speaker
// (playback messages scheduled on a wall clock started when output opens).
type Client struct {
	ID        string
	ShopperID string
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	Channels  int

	session Session

	frames    chan voice.Frame
	inputOpen atomic.Bool
	droppedIn atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	epoch  time.Time
	timers map[string]*time.Timer
}

func NewClient(hub *Hub, conn *websocket.Conn, shopperID string, channels int) *Client {
	if channels < 1 || channels > MaxChannels {
		channels = 1
	}
	return &Client{
		ID:        uuid.NewString(),
		ShopperID: shopperID,
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Channels:  channels,
		frames:    make(chan voice.Frame, frameBuffer),
		done:      make(chan struct{}),
		timers:    make(map[string]*time.Timer),
	}
}

// Attach binds the session driven by start and stop messages.
func (c *Client) Attach(session Session) {
	c.session = session
}

// SendStatus forwards a session status change to the browser.
func (c *Client) SendStatus(st voice.Status) {
	c.sendJSON(statusMessage{Type: "status", Status: st})
}

func (c *Client) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal voice message", err, nil)
		return
	}
	select {
	case <-c.done:
	case c.Send <- data:
	default:
		logger.Warn("Voice client send buffer full, message dropped", map[string]interface{}{
			"client_id": c.ID,
		})
	}
}

// Close stops the session and ends both pumps. Safe to call repeatedly.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.session != nil {
			c.session.Stop()
		}
		close(c.done)
		c.Hub.Unregister(c)
		if dropped := c.droppedIn.Load(); dropped > 0 {
			logger.Warn("Microphone frames dropped while the session was busy", map[string]interface{}{
				"client_id": c.ID,
				"dropped":   dropped,
			})
		}
	})
}

// OpenInput implements voice.AudioDevices.
func (c *Client) OpenInput(ctx context.Context, sampleRate int) (voice.InputStream, error) {
	select {
	case <-c.done:
		return nil, errClientClosed
	default:
	}
	// drain frames captured before the session started
	for len(c.frames) > 0 {
		<-c.frames
	}
	c.inputOpen.Store(true)
	return clientInput{c}, nil
}

// OpenOutput implements voice.AudioDevices.
func (c *Client) OpenOutput(ctx context.Context, sampleRate int) (voice.OutputStream, error) {
	select {
	case <-c.done:
		return nil, errClientClosed
	default:
	}
	c.mu.Lock()
	c.epoch = time.Now()
	c.mu.Unlock()
	return clientOutput{c}, nil
}

type clientInput struct{ c *Client }

func (in clientInput) Frames() <-chan voice.Frame { return in.c.frames }

func (in clientInput) Close() error {
	in.c.inputOpen.Store(false)
	return nil
}

type clientOutput struct{ c *Client }

func (out clientOutput) Now() time.Duration {
	out.c.mu.Lock()
	defer out.c.mu.Unlock()
	return time.Since(out.c.epoch)
}

func (out clientOutput) Play(src *voice.Source, ended func()) error {
	c := out.c
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	c.sendJSON(playbackMessage{
		Type:       "playback",
		ID:         src.ID,
		StartMS:    src.Start.Milliseconds(),
		DurationMS: src.Duration().Milliseconds(),
		SampleRate: src.SampleRate,
		Audio:      src.Encoded,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	wait := src.Start + src.Duration() - time.Since(c.epoch)
	c.timers[src.ID] = time.AfterFunc(max(wait, 0), func() {
		c.mu.Lock()
		_, live := c.timers[src.ID]
		delete(c.timers, src.ID)
		c.mu.Unlock()
		if live {
			ended()
		}
	})
	return nil
}

func (out clientOutput) Stop(src *voice.Source) {
	c := out.c
	c.mu.Lock()
	if t, ok := c.timers[src.ID]; ok {
		t.Stop()
		delete(c.timers, src.ID)
	}
	c.mu.Unlock()
	c.sendJSON(stopPlaybackMessage{Type: "stop_playback", ID: src.ID})
}

func (out clientOutput) Close() error {
	c := out.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	return nil
}

// decodeFrame splits interleaved little-endian float32 samples into channels.
func decodeFrame(data []byte, channels int) (voice.Frame, bool) {
	if channels < 1 || channels > MaxChannels || len(data) == 0 || len(data)%(4*channels) != 0 {
		return nil, false
	}
	n := len(data) / (4 * channels)
	frame := make(voice.Frame, channels)
	for ch := range frame {
		frame[ch] = make([]float32, n)
	}
	for i := 0; i < n*channels; i++ {
		frame[i%channels][i/channels] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return frame, true
}

func (c *Client) handleControl(ctx context.Context, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse voice control message", map[string]interface{}{
			"client_id": c.ID,
			"error":     err.Error(),
		})
		return
	}

	switch msg.Type {
	case "start":
		go func() {
			if err := c.session.Start(ctx); err != nil {
				logger.Warn("Voice session did not start", map[string]interface{}{
					"client_id": c.ID,
					"error":     err.Error(),
				})
			}
		}()
	case "stop":
		c.session.Stop()
	default:
		logger.Debug("Ignoring voice control message", map[string]interface{}{
			"client_id": c.ID,
			"type":      msg.Type,
		})
	}
}

// ReadPump reads microphone frames and control messages until the browser
// disconnects, then closes the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error", err, map[string]interface{}{
					"client_id": c.ID,
				})
			}
			return
		}

		if kind == websocket.TextMessage {
			c.handleControl(ctx, message)
			continue
		}
		if !c.inputOpen.Load() {
			continue
		}
		frame, ok := decodeFrame(message, c.Channels)
		if !ok {
			logger.Warn("Malformed microphone frame", map[string]interface{}{
				"client_id": c.ID,
				"bytes":     len(message),
			})
			continue
		}
		select {
		case c.frames <- frame:
		default:
			c.droppedIn.Add(1)
		}
	}
}

// WritePump sends queued messages and keepalive pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			// flush the final status before closing
			for n := len(c.Send); n > 0; n-- {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write message", err, map[string]interface{}{
					"client_id": c.ID,
				})
				c.Close()
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
