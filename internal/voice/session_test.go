package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) record(st Status) {
	r.mu.Lock()
	r.statuses = append(r.statuses, st)
	r.mu.Unlock()
}

func (r *statusRecorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []State
	for _, st := range r.statuses {
		if len(states) == 0 || states[len(states)-1] != st.State {
			states = append(states, st.State)
		}
	}
	return states
}

func testConfig() Config {
	return Config{
		Setup:            SetupConfig{Model: "native-audio", Voice: "Kore", Instructions: "Be brief."},
		InputSampleRate:  16000,
		OutputSampleRate: 24000,
		ConnectTimeout:   time.Second,
		SendQueueSize:    4,
	}
}

func setupSessionTest(t *testing.T, open bool) (*Session, *fakeAudio, *fakeDialer, *statusRecorder) {
	audio := &fakeAudio{}
	dialer := &fakeDialer{open: open}
	session := NewSession(testConfig(), audio, dialer)
	rec := &statusRecorder{}
	session.OnStateChange(rec.record)
	t.Cleanup(session.Stop)
	return session, audio, dialer, rec
}

func silence(samples int) string {
	return EncodeFrame(Frame{make([]float32, samples)})
}

func TestSession_StartOpensStreamsAndGoesActive(t *testing.T) {
	session, audio, dialer, rec := setupSessionTest(t, true)

	require.NoError(t, session.Start(context.Background()))

	assert.Equal(t, StateActive, session.Status().State)
	assert.Equal(t, 16000, audio.inputRate)
	assert.Equal(t, 24000, audio.outputRate)
	assert.Equal(t, testConfig().Setup, dialer.setup)
	assert.Equal(t, []State{StateConnecting, StateActive}, rec.states())

	assert.ErrorIs(t, session.Start(context.Background()), ErrSessionBusy)
}

func TestSession_PlaybackIsGaplessAndTracksSpeaking(t *testing.T) {
	session, audio, dialer, _ := setupSessionTest(t, true)
	require.NoError(t, session.Start(context.Background()))

	out := audio.output()
	out.setNow(500 * time.Millisecond)
	remote := dialer.last()
	remote.events <- Event{Type: EventAudio, Audio: silence(24000)}
	remote.events <- Event{Type: EventAudio, Audio: silence(19200)}

	require.Eventually(t, func() bool { return len(out.playedSources()) == 2 }, waitFor, tick)
	played := out.playedSources()
	assert.Equal(t, 500*time.Millisecond, played[0].Start)
	assert.Equal(t, played[0].Start+time.Second, played[1].Start)
	assert.Equal(t, 800*time.Millisecond, played[1].Duration())
	assert.True(t, session.Status().Speaking)

	out.finish(played[0].ID)
	assert.True(t, session.Status().Speaking)
	out.finish(played[1].ID)
	assert.False(t, session.Status().Speaking)
}

func TestSession_CaptureIsEncodedAndSent(t *testing.T) {
	session, audio, dialer, _ := setupSessionTest(t, true)
	require.NoError(t, session.Start(context.Background()))

	frame := Frame{{0.25, -0.25}, {0.25, -0.25}}
	audio.input().frames <- frame

	remote := dialer.last()
	require.Eventually(t, func() bool { return len(remote.sentFrames()) == 1 }, waitFor, tick)
	assert.Equal(t, EncodeFrame(frame), remote.sentFrames()[0])
}

func TestSession_InterruptedStopsPlayback(t *testing.T) {
	session, audio, dialer, _ := setupSessionTest(t, true)
	require.NoError(t, session.Start(context.Background()))

	out := audio.output()
	remote := dialer.last()
	remote.events <- Event{Type: EventAudio, Audio: silence(24000)}
	remote.events <- Event{Type: EventAudio, Audio: silence(24000)}
	require.Eventually(t, func() bool { return len(out.playedSources()) == 2 }, waitFor, tick)

	remote.events <- Event{Type: EventInterrupted}
	require.Eventually(t, func() bool { return out.stoppedCount() == 2 }, waitFor, tick)
	assert.False(t, session.Status().Speaking)
	assert.Equal(t, StateActive, session.Status().State)

	out.setNow(3 * time.Second)
	remote.events <- Event{Type: EventAudio, Audio: silence(2400)}
	require.Eventually(t, func() bool { return len(out.playedSources()) == 3 }, waitFor, tick)
	assert.Equal(t, 3*time.Second, out.playedSources()[2].Start)
}

func TestSession_ChunkFromStoppedSessionIsDropped(t *testing.T) {
	session, audio, dialer, _ := setupSessionTest(t, true)
	reading, release := make(chan struct{}, 1), make(chan struct{})
	audio.holdNextClock(reading, release)
	released := false
	t.Cleanup(func() {
		if !released {
			close(release)
		}
	})

	require.NoError(t, session.Start(context.Background()))
	first := audio.output()
	dialer.last().events <- Event{Type: EventAudio, Audio: silence(24000)}
	select {
	case <-reading:
	case <-time.After(waitFor):
		t.Fatal("first chunk never reached the output clock")
	}

	session.Stop()
	require.NoError(t, session.Start(context.Background()))
	second := audio.output()
	require.NotSame(t, first, second)

	close(release)
	released = true

	assert.Never(t, func() bool { return session.Status().Speaking }, 100*time.Millisecond, tick)
	assert.Empty(t, first.playedSources())
	assert.Empty(t, second.playedSources())

	dialer.last().events <- Event{Type: EventAudio, Audio: silence(2400)}
	require.Eventually(t, func() bool { return len(second.playedSources()) == 1 }, waitFor, tick)
	assert.Equal(t, time.Duration(0), second.playedSources()[0].Start)
	assert.True(t, session.Status().Speaking)

	second.finish(second.playedSources()[0].ID)
	assert.False(t, session.Status().Speaking)
}

func TestSession_StopTearsDown(t *testing.T) {
	session, audio, dialer, rec := setupSessionTest(t, true)
	require.NoError(t, session.Start(context.Background()))

	out := audio.output()
	dialer.last().events <- Event{Type: EventAudio, Audio: silence(2400)}
	require.Eventually(t, func() bool { return len(out.playedSources()) == 1 }, waitFor, tick)

	session.Stop()
	session.Stop()

	assert.Equal(t, Status{State: StateIdle}, session.Status())
	assert.True(t, audio.input().closed.Load())
	assert.True(t, out.closed.Load())
	assert.True(t, dialer.last().closed.Load())
	assert.Equal(t, 1, out.stoppedCount())
	assert.Equal(t, []State{StateConnecting, StateActive, StateIdle}, rec.states())

	// a late end callback from the stopped source changes nothing
	out.finish(out.playedSources()[0].ID)
	assert.False(t, session.Status().Speaking)
}

func TestSession_StopWhileConnecting(t *testing.T) {
	session, audio, dialer, _ := setupSessionTest(t, false)

	errCh := make(chan error, 1)
	go func() { errCh <- session.Start(context.Background()) }()

	require.Eventually(t, func() bool { return dialer.last() != nil }, waitFor, tick)
	assert.Equal(t, StateConnecting, session.Status().State)

	session.Stop()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSessionStopped)
	case <-time.After(waitFor):
		t.Fatal("Start did not return after Stop")
	}
	assert.Equal(t, Status{State: StateIdle}, session.Status())
	assert.True(t, dialer.last().closed.Load())
	assert.True(t, audio.input().closed.Load())
	assert.True(t, audio.output().closed.Load())

	// the session can start again
	dialer.mu.Lock()
	dialer.open = true
	dialer.mu.Unlock()
	require.NoError(t, session.Start(context.Background()))
	assert.Equal(t, StateActive, session.Status().State)
}

func TestSession_ConnectTimeout(t *testing.T) {
	audio := &fakeAudio{}
	dialer := &fakeDialer{}
	cfg := testConfig()
	cfg.ConnectTimeout = 30 * time.Millisecond
	session := NewSession(cfg, audio, dialer)

	err := session.Start(context.Background())
	assert.ErrorIs(t, err, ErrConnectTimeout)

	st := session.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, ErrConnectTimeout.Error(), st.Error)
	assert.True(t, dialer.last().closed.Load())
}

func TestSession_DialFailure(t *testing.T) {
	audio := &fakeAudio{}
	dialer := &fakeDialer{err: errors.New("connection refused")}
	session := NewSession(testConfig(), audio, dialer)

	err := session.Start(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, StateIdle, session.Status().State)
	assert.True(t, audio.input().closed.Load())
}

func TestSession_RemoteErrorEndsSession(t *testing.T) {
	tests := []struct {
		name    string
		trigger func(r *fakeRemote)
		wantErr error
	}{
		{name: "error event", trigger: func(r *fakeRemote) { r.events <- Event{Type: EventError, Message: "quota"} }, wantErr: ErrRemote},
		{name: "connection closed", trigger: func(r *fakeRemote) { close(r.events) }, wantErr: ErrRemoteClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, audio, dialer, _ := setupSessionTest(t, true)
			require.NoError(t, session.Start(context.Background()))

			tt.trigger(dialer.last())

			require.Eventually(t, func() bool { return session.Status().State == StateIdle }, waitFor, tick)
			assert.Contains(t, session.Status().Error, tt.wantErr.Error())
			assert.True(t, audio.input().closed.Load())
			assert.True(t, dialer.last().closed.Load())
		})
	}
}

func TestSession_CallerContextCancelsConnect(t *testing.T) {
	session, _, _, _ := setupSessionTest(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := session.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, session.Status().State)
}
