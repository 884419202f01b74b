package player

import (
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/olivier-w/wavescope/internal/clip"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // 16-bit = 2 bytes
	frameBytes   = channelCount * bitDepth
)

// Player manages playback of a clip's committed samples.
type Player struct {
	source    *clipSource
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	volume    float64
	paused    bool
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New starts playing the given clip from the beginning.
func New(c *clip.Clip) (*Player, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}

	src := newClipSource(c)
	p := &Player{
		source: src,
		otoCtx: ctx,
		volume: 0.8,
		done:   make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(src)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	// Monitor for playback end
	go p.monitor()

	return p, nil
}

func (p *Player) monitor() {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		pos := p.source.Pos()
		total := p.source.TotalFrames()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			close(p.done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback.
// This resets the done channel so Done() can be used again.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.source.SetPos(0)

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.source)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor()
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	secs := float64(p.source.Pos()) / float64(sampleRate)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the committed samples.
func (p *Player) Duration() time.Duration {
	secs := float64(p.source.TotalFrames()) / float64(sampleRate)
	return time.Duration(secs * float64(time.Second))
}

// Seek moves playback by the given delta from current position.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	newPos := p.source.Pos() + int64(delta.Seconds()*float64(sampleRate))
	if newPos < 0 {
		newPos = 0
	}
	if total := p.source.TotalFrames(); newPos > total {
		newPos = total
	}
	p.source.SetPos(newPos)
	if p.otoPlayer == nil {
		return
	}

	// Recreate the Oto player to flush buffers
	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.source)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v) // SetVolume handles clamping
}

// Close releases all resources.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
}
