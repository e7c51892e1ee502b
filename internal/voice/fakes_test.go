package voice

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fakeInput struct {
	frames chan Frame
	closed atomic.Bool
}

func (i *fakeInput) Frames() <-chan Frame { return i.frames }

func (i *fakeInput) Close() error {
	i.closed.Store(true)
	return nil
}

type fakeOutput struct {
	mu      sync.Mutex
	now     time.Duration
	played  []*Source
	ended   map[string]func()
	stopped []string
	closed  atomic.Bool

	// when set, Now signals reading and waits for release
	reading chan struct{}
	release chan struct{}
}

func (o *fakeOutput) Now() time.Duration {
	if o.release != nil {
		select {
		case o.reading <- struct{}{}:
		default:
		}
		<-o.release
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

func (o *fakeOutput) setNow(d time.Duration) {
	o.mu.Lock()
	o.now = d
	o.mu.Unlock()
}

func (o *fakeOutput) Play(src *Source, ended func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.played = append(o.played, src)
	o.ended[src.ID] = ended
	return nil
}

func (o *fakeOutput) Stop(src *Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.ended, src.ID)
	o.stopped = append(o.stopped, src.ID)
}

func (o *fakeOutput) Close() error {
	o.closed.Store(true)
	return nil
}

func (o *fakeOutput) playedSources() []*Source {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Source(nil), o.played...)
}

func (o *fakeOutput) stoppedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.stopped)
}

// finish simulates the speaker reaching the end of a source.
func (o *fakeOutput) finish(id string) {
	o.mu.Lock()
	ended := o.ended[id]
	delete(o.ended, id)
	o.mu.Unlock()
	if ended != nil {
		ended()
	}
}

type fakeAudio struct {
	mu         sync.Mutex
	in         *fakeInput
	out        *fakeOutput
	inputRate  int
	outputRate int

	holdReading chan struct{}
	holdRelease chan struct{}
}

// holdNextClock makes the next opened output block in Now until release is closed.
func (a *fakeAudio) holdNextClock(reading, release chan struct{}) {
	a.mu.Lock()
	a.holdReading, a.holdRelease = reading, release
	a.mu.Unlock()
}

func (a *fakeAudio) OpenInput(_ context.Context, sampleRate int) (InputStream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputRate = sampleRate
	a.in = &fakeInput{frames: make(chan Frame, 8)}
	return a.in, nil
}

func (a *fakeAudio) OpenOutput(_ context.Context, sampleRate int) (OutputStream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outputRate = sampleRate
	a.out = &fakeOutput{ended: make(map[string]func()), reading: a.holdReading, release: a.holdRelease}
	a.holdReading, a.holdRelease = nil, nil
	return a.out, nil
}

func (a *fakeAudio) input() *fakeInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.in
}

func (a *fakeAudio) output() *fakeOutput {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out
}

type fakeRemote struct {
	events chan Event
	mu     sync.Mutex
	sent   []string
	closed atomic.Bool
}

func (r *fakeRemote) Events() <-chan Event { return r.events }

func (r *fakeRemote) SendAudio(_ context.Context, audio string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, audio)
	return nil
}

func (r *fakeRemote) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *fakeRemote) sentFrames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

type fakeDialer struct {
	mu      sync.Mutex
	open    bool
	err     error
	setup   SetupConfig
	remotes []*fakeRemote
}

func (d *fakeDialer) Dial(_ context.Context, setup SetupConfig) (Remote, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.setup = setup
	r := &fakeRemote{events: make(chan Event, 16)}
	if d.open {
		r.events <- Event{Type: EventOpen}
	}
	d.remotes = append(d.remotes, r)
	return r, nil
}

func (d *fakeDialer) last() *fakeRemote {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.remotes) == 0 {
		return nil
	}
	return d.remotes[len(d.remotes)-1]
}
