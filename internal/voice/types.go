package voice

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionBusy    = errors.New("voice session already running")
	ErrSessionStopped = errors.New("voice session stopped")
	ErrConnectTimeout = errors.New("timed out waiting for the realtime service")
	ErrRemoteClosed   = errors.New("realtime connection closed")
	ErrRemote         = errors.New("realtime service error")
	ErrInputClosed    = errors.New("microphone input closed")
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateActive     State = "active"
)

// Status is what the UI shows: the session state and whether the model is
// currently audible.
type Status struct {
	State    State  `json:"state"`
	Speaking bool   `json:"speaking"`
	Error    string `json:"error,omitempty"`
}

// SetupConfig is sent to the realtime service when the connection opens.
type SetupConfig struct {
	Model        string `json:"model"`
	Instructions string `json:"instructions,omitempty"`
	Voice        string `json:"voice,omitempty"`
}

type EventType string

const (
	EventOpen         EventType = "open"
	EventAudio        EventType = "audio"
	EventInterrupted  EventType = "interrupted"
	EventTurnComplete EventType = "turn_complete"
	EventError        EventType = "error"
)

// Event is one message from the realtime service.
type Event struct {
	Type    EventType
	Audio   string // base64 16-bit PCM for EventAudio
	Message string // for EventError
}

// Remote is an open realtime connection. Events is closed when the
// connection ends.
type Remote interface {
	Events() <-chan Event
	SendAudio(ctx context.Context, audio string) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, setup SetupConfig) (Remote, error)
}

// InputStream delivers microphone frames until closed.
type InputStream interface {
	Frames() <-chan Frame
	Close() error
}

// OutputStream plays sources against its own clock. ended is called once a
// source finishes; it is not called for sources passed to Stop.
type OutputStream interface {
	Now() time.Duration
	Play(src *Source, ended func()) error
	Stop(src *Source)
	Close() error
}

// AudioDevices opens the microphone and speaker at the requested rates.
type AudioDevices interface {
	OpenInput(ctx context.Context, sampleRate int) (InputStream, error)
	OpenOutput(ctx context.Context, sampleRate int) (OutputStream, error)
}
