package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/maison-backend/config"
	"github.com/ikkim/maison-backend/pkg/logger"
)

const (
	defaultInputSampleRate  = 16000
	defaultOutputSampleRate = 24000
	defaultConnectTimeout   = 15 * time.Second
	defaultSendQueueSize    = 32
)

type Config struct {
	Setup            SetupConfig
	InputSampleRate  int
	OutputSampleRate int
	ConnectTimeout   time.Duration
	SendQueueSize    int
}

func NewConfig(cfg config.RealtimeConfig) Config {
	return Config{
		Setup: SetupConfig{
			Model:        cfg.Model,
			Instructions: cfg.Instructions,
			Voice:        cfg.Voice,
		},
		InputSampleRate:  cfg.InputSampleRate,
		OutputSampleRate: cfg.OutputSampleRate,
		ConnectTimeout:   cfg.ConnectTimeout,
		SendQueueSize:    cfg.SendQueueSize,
	}
}

func (c Config) withDefaults() Config {
	if c.InputSampleRate <= 0 {
		c.InputSampleRate = defaultInputSampleRate
	}
	if c.OutputSampleRate <= 0 {
		c.OutputSampleRate = defaultOutputSampleRate
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = defaultSendQueueSize
	}
	return c
}

// Session is one duplex voice conversation with the realtime service.
// Start and Stop may be called from any goroutine.
type Session struct {
	cfg    Config
	audio  AudioDevices
	dialer Dialer

	mu      sync.Mutex
	state   State
	sched   *PlaybackScheduler // replaced on every Start
	gen     uint64
	lastErr string
	cancel  context.CancelFunc
	in      InputStream
	out     OutputStream
	remote  Remote
	queue   *FrameQueue

	emitMu   sync.Mutex
	observer func(Status)
	emitted  Status
}

func NewSession(cfg Config, audio AudioDevices, dialer Dialer) *Session {
	return &Session{
		cfg:     cfg.withDefaults(),
		audio:   audio,
		dialer:  dialer,
		sched:   NewPlaybackScheduler(),
		state:   StateIdle,
		emitted: Status{State: StateIdle},
	}
}

// OnStateChange registers fn to receive every distinct Status.
func (s *Session) OnStateChange(fn func(Status)) {
	s.emitMu.Lock()
	s.observer = fn
	s.emitMu.Unlock()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:    s.state,
		Speaking: s.state == StateActive && s.sched.Speaking(),
		Error:    s.lastErr,
	}
}

func (s *Session) emit() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	st := s.Status()
	if st == s.emitted {
		return
	}
	s.emitted = st
	if s.observer != nil {
		s.observer(st)
	}
}

// Start connects and blocks until the session is active or the attempt
// fails. Only an idle session can start.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.gen++
	gen := s.gen
	sessCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = StateConnecting
	s.lastErr = ""
	s.sched = NewPlaybackScheduler()
	s.mu.Unlock()

	s.emit()

	logger.Info("Starting voice session", map[string]interface{}{
		"generation": gen,
		"model":      s.cfg.Setup.Model,
	})

	if err := s.connect(ctx, sessCtx, gen); err != nil {
		s.teardown(gen, err)
		return err
	}
	return nil
}

// adopt runs fn under the session lock if attempt gen is still connecting.
func (s *Session) adopt(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state != StateConnecting {
		return false
	}
	fn()
	return true
}

func (s *Session) connect(ctx, sessCtx context.Context, gen uint64) error {
	connectCtx, cancelConnect := context.WithTimeout(sessCtx, s.cfg.ConnectTimeout)
	defer cancelConnect()
	stop := context.AfterFunc(ctx, cancelConnect)
	defer stop()

	classify := func(err error) error {
		switch {
		case sessCtx.Err() != nil:
			return ErrSessionStopped
		case errors.Is(connectCtx.Err(), context.DeadlineExceeded):
			return ErrConnectTimeout
		case ctx.Err() != nil:
			return ctx.Err()
		}
		return err
	}

	in, err := s.audio.OpenInput(connectCtx, s.cfg.InputSampleRate)
	if err != nil {
		return classify(fmt.Errorf("failed to open microphone: %w", err))
	}
	if !s.adopt(gen, func() { s.in = in }) {
		in.Close()
		return ErrSessionStopped
	}

	out, err := s.audio.OpenOutput(connectCtx, s.cfg.OutputSampleRate)
	if err != nil {
		return classify(fmt.Errorf("failed to open speaker: %w", err))
	}
	if !s.adopt(gen, func() { s.out = out }) {
		out.Close()
		return ErrSessionStopped
	}

	remote, err := s.dialer.Dial(connectCtx, s.cfg.Setup)
	if err != nil {
		return classify(fmt.Errorf("failed to dial realtime service: %w", err))
	}
	if !s.adopt(gen, func() { s.remote = remote }) {
		remote.Close()
		return ErrSessionStopped
	}

	for {
		select {
		case <-connectCtx.Done():
			return classify(connectCtx.Err())
		case ev, ok := <-remote.Events():
			if !ok {
				return classify(ErrRemoteClosed)
			}
			switch ev.Type {
			case EventOpen:
				return s.activate(sessCtx, gen, in, out, remote)
			case EventError:
				return classify(fmt.Errorf("%w: %s", ErrRemote, ev.Message))
			}
		}
	}
}

func (s *Session) activate(ctx context.Context, gen uint64, in InputStream, out OutputStream, remote Remote) error {
	queue := NewFrameQueue(s.cfg.SendQueueSize)
	var sched *PlaybackScheduler
	ok := s.adopt(gen, func() {
		s.queue = queue
		s.state = StateActive
		sched = s.sched
	})
	if !ok {
		return ErrSessionStopped
	}

	go s.captureLoop(ctx, gen, in, queue)
	go s.sendLoop(ctx, gen, remote, queue)
	go s.receiveLoop(ctx, gen, sched, out, remote)

	logger.Info("Voice session active", map[string]interface{}{
		"generation": gen,
	})
	s.emit()
	return nil
}

func (s *Session) captureLoop(ctx context.Context, gen uint64, in InputStream, queue *FrameQueue) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-in.Frames():
			if !ok {
				s.teardown(gen, ErrInputClosed)
				return
			}
			if queue.Push(EncodeFrame(frame)) {
				logger.Debug("Send queue full, dropped oldest frame", map[string]interface{}{
					"generation": gen,
					"dropped":    queue.Dropped(),
				})
			}
		}
	}
}

func (s *Session) sendLoop(ctx context.Context, gen uint64, remote Remote, queue *FrameQueue) {
	for {
		frame, err := queue.Pop(ctx)
		if err != nil {
			return
		}
		if err := remote.SendAudio(ctx, frame); err != nil {
			if ctx.Err() == nil {
				s.teardown(gen, err)
			}
			return
		}
	}
}

func (s *Session) receiveLoop(ctx context.Context, gen uint64, sched *PlaybackScheduler, out OutputStream, remote Remote) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-remote.Events():
			if !ok {
				s.teardown(gen, ErrRemoteClosed)
				return
			}
			switch ev.Type {
			case EventAudio:
				s.play(gen, sched, out, ev.Audio)
			case EventInterrupted:
				for _, src := range sched.Reset() {
					out.Stop(src)
				}
				s.emit()
			case EventError:
				s.teardown(gen, fmt.Errorf("%w: %s", ErrRemote, ev.Message))
				return
			}
		}
	}
}

// play schedules chunk on the generation's timeline. A chunk that outlives
// its generation is dropped.
func (s *Session) play(gen uint64, sched *PlaybackScheduler, out OutputStream, chunk string) {
	samples, err := DecodeChunk(chunk)
	if err != nil {
		logger.Warn("Skipping undecodable audio chunk", map[string]interface{}{
			"generation": gen,
			"error":      err.Error(),
		})
		return
	}

	src := &Source{
		ID:         uuid.NewString(),
		Samples:    samples,
		Encoded:    chunk,
		SampleRate: s.cfg.OutputSampleRate,
	}
	now := out.Now()

	s.mu.Lock()
	if s.gen != gen || s.state != StateActive {
		s.mu.Unlock()
		return
	}
	src.Start = sched.Schedule(now, src.Duration())
	sched.Add(src)
	s.mu.Unlock()

	if err := out.Play(src, func() {
		if sched.Ended(src.ID) {
			s.emit()
		}
	}); err != nil {
		sched.Ended(src.ID)
		logger.Warn("Failed to play audio chunk", map[string]interface{}{
			"generation": gen,
			"error":      err.Error(),
		})
	}
	s.emit()
}

// Stop ends the session from any state. It is a no-op when idle.
func (s *Session) Stop() {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.teardown(gen, nil)
}

func (s *Session) teardown(gen uint64, cause error) {
	s.mu.Lock()
	if s.gen != gen || s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	in, out, remote, queue, cancel, sched := s.in, s.out, s.remote, s.queue, s.cancel, s.sched
	s.in, s.out, s.remote, s.queue, s.cancel = nil, nil, nil, nil, nil
	s.state = StateIdle
	if cause != nil {
		s.lastErr = cause.Error()
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, src := range sched.Reset() {
		if out != nil {
			out.Stop(src)
		}
	}
	if in != nil {
		in.Close()
	}
	if out != nil {
		out.Close()
	}
	if remote != nil {
		remote.Close()
	}

	fields := map[string]interface{}{
		"generation": gen,
	}
	if queue != nil {
		fields["dropped_frames"] = queue.Dropped()
	}
	if cause != nil && !errors.Is(cause, ErrSessionStopped) {
		logger.Error("Voice session ended", cause, fields)
	} else {
		logger.Info("Voice session stopped", fields)
	}
	s.emit()
}
