package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/maison-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4 * 1024 * 1024
	eventBuffer    = 64
)

type setupMessage struct {
	Type  string      `json:"type"`
	Setup SetupConfig `json:"setup"`
}

type inputAudioMessage struct {
	Type       string `json:"type"`
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
}

type inboundMessage struct {
	Type    string `json:"type"`
	Audio   string `json:"audio,omitempty"`
	Message string `json:"message,omitempty"`
}

// RealtimeDialer connects to the realtime speech service over WebSocket.
type RealtimeDialer struct {
	URL             string
	APIKey          string
	InputSampleRate int
	Dialer          *websocket.Dialer
}

func (d *RealtimeDialer) Dial(ctx context.Context, setup SetupConfig) (Remote, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	if d.APIKey != "" {
		header.Set("Authorization", "Bearer "+d.APIKey)
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)

	r := &wsRemote{
		conn:       conn,
		sampleRate: d.InputSampleRate,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
	}
	if err := r.write(setupMessage{Type: "setup", Setup: setup}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send setup: %w", err)
	}

	go r.readPump()
	return r, nil
}

type wsRemote struct {
	conn       *websocket.Conn
	sampleRate int
	events     chan Event
	done       chan struct{}
	writeMu    sync.Mutex
	closeOnce  sync.Once
}

func (r *wsRemote) Events() <-chan Event {
	return r.events
}

func (r *wsRemote) write(v interface{}) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return r.conn.WriteJSON(v)
}

func (r *wsRemote) SendAudio(ctx context.Context, audio string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(inputAudioMessage{Type: "input_audio", Audio: audio, SampleRate: r.sampleRate})
}

func (r *wsRemote) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.writeMu.Lock()
		r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	return err
}

func (r *wsRemote) readPump() {
	defer close(r.events)

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				select {
				case <-r.done:
				default:
					logger.Warn("Realtime connection lost", map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("Ignoring malformed realtime message", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		var ev Event
		switch msg.Type {
		case "setup_complete":
			ev = Event{Type: EventOpen}
		case "audio":
			ev = Event{Type: EventAudio, Audio: msg.Audio}
		case "interrupted":
			ev = Event{Type: EventInterrupted}
		case "turn_complete":
			ev = Event{Type: EventTurnComplete}
		case "error":
			ev = Event{Type: EventError, Message: msg.Message}
		default:
			logger.Debug("Ignoring realtime message", map[string]interface{}{
				"type": msg.Type,
			})
			continue
		}

		select {
		case r.events <- ev:
		case <-r.done:
			return
		}
	}
}
