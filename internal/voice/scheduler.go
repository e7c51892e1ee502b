package voice

import (
	"sync"
	"time"
)

// Source is one decoded chunk of model speech placed on the output timeline.
type Source struct {
	ID         string
	Samples    []float32
	Encoded    string // the chunk as received, for bridges that forward it untouched
	SampleRate int
	Start      time.Duration
}

func (s *Source) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// PlaybackScheduler queues chunks back to back on the output clock and tracks
// the sources that are still playing.
type PlaybackScheduler struct {
	mu        sync.Mutex
	nextStart time.Duration
	live      map[string]*Source
}

func NewPlaybackScheduler() *PlaybackScheduler {
	return &PlaybackScheduler{live: make(map[string]*Source)}
}

// Schedule returns the start time of a chunk lasting duration, arriving when
// the output clock reads now.
func (p *PlaybackScheduler) Schedule(now, duration time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := max(now, p.nextStart)
	p.nextStart = start + duration
	return start
}

// Add marks src as playing.
func (p *PlaybackScheduler) Add(src *Source) {
	p.mu.Lock()
	p.live[src.ID] = src
	p.mu.Unlock()
}

// Ended removes the source and reports whether nothing is playing anymore.
// Unknown ids report false.
func (p *PlaybackScheduler) Ended(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.live[id]; !ok {
		return false
	}
	delete(p.live, id)
	return len(p.live) == 0
}

func (p *PlaybackScheduler) Speaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live) > 0
}

// Reset forgets every live source and the queue position, returning the
// sources so the caller can stop them.
func (p *PlaybackScheduler) Reset() []*Source {
	p.mu.Lock()
	defer p.mu.Unlock()

	sources := make([]*Source, 0, len(p.live))
	for _, src := range p.live {
		sources = append(sources, src)
	}
	p.live = make(map[string]*Source)
	p.nextStart = 0
	return sources
}
