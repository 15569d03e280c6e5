package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // 16-bit = 2 bytes
	frameSize    = channelCount * bitDepth
	bytesPerSec  = sampleRate * frameSize
)

// positionReader feeds oto from the decoder and remembers the byte offset
// oto has consumed so far.
type positionReader struct {
	src io.Reader

	mu  sync.Mutex
	off int64
}

func (r *positionReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	r.mu.Lock()
	r.off += int64(n)
	r.mu.Unlock()
	return n, err
}

func (r *positionReader) Pos() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.off
}

func (r *positionReader) SetPos(off int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.off = off
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide output context. oto allows only one.
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

// Player plays one local audio file.
type Player struct {
	decoder     audioDecoder
	reader      *positionReader
	otoCtx      *oto.Context
	otoPlayer   *oto.Player
	bytesPerSec int64
	duration    time.Duration
	volume      float64
	paused      bool
	done        chan struct{}
	stopMon     chan struct{}
	cleanup     func()
	closeOnce   sync.Once
	mu          sync.Mutex
}

// New opens path and starts playing it.
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, err
	}

	dec = toOutputFormat(dec)
	p := &Player{
		decoder:     dec,
		reader:      &positionReader{src: dec},
		otoCtx:      ctx,
		bytesPerSec: bytesPerSec,
		duration:    time.Duration(float64(dec.Length()) / bytesPerSec * float64(time.Second)),
		volume:      0.8,
		done:        make(chan struct{}),
		stopMon:     make(chan struct{}),
		cleanup:     func() { f.Close() },
	}
	p.restartOutput(true)
	go p.monitor()
	return p, nil
}

// restartOutput replaces the oto player so buffered audio from before a seek
// is discarded. Callers hold p.mu.
func (p *Player) restartOutput(play bool) {
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.otoCtx == nil {
		return
	}
	p.otoPlayer = p.otoCtx.NewPlayer(p.reader)
	p.otoPlayer.SetVolume(p.volume)
	if play {
		p.otoPlayer.Play()
	}
}

func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopMon:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		ended := !p.paused &&
			p.reader.Pos() >= p.decoder.Length() &&
			(p.otoPlayer == nil || !p.otoPlayer.IsPlaying())
		p.mu.Unlock()
		if ended {
			close(p.done)
			return
		}
	}
}

// Done returns a channel that closes when playback reaches the end.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paused = !p.paused
	if p.otoPlayer == nil {
		return
	}
	if p.paused {
		p.otoPlayer.Pause()
	} else {
		p.otoPlayer.Play()
	}
}

// Pause stops output without toggling; pausing twice is a no-op.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
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
	if p.bytesPerSec == 0 {
		return 0
	}
	pos := p.reader.Pos()
	if p.otoPlayer != nil {
		pos -= int64(p.otoPlayer.BufferedSize())
	}
	pos = max(0, pos)
	return time.Duration(float64(pos) / float64(p.bytesPerSec) * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

func clampSeekByteOffset(target time.Duration, bytesPerSec, total, frame int64) int64 {
	off := int64(target.Seconds() * float64(bytesPerSec))
	off = max(0, min(off, total))
	return off - off%frame
}

// SeekTo jumps to target. Playback resumes afterwards only when resume is set.
func (p *Player) SeekTo(target time.Duration, resume bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	off := clampSeekByteOffset(target, p.bytesPerSec, p.decoder.Length(), frameSize)
	if _, err := p.decoder.Seek(off, io.SeekStart); err != nil {
		return err
	}
	p.reader.SetPos(off)
	p.paused = !resume
	p.restartOutput(resume)
	return nil
}

// SeekFraction jumps to fraction f (0..1) of the track, keeping the current
// pause state.
func (p *Player) SeekFraction(f float64) error {
	f = max(0, min(f, 1))
	return p.SeekTo(time.Duration(f*float64(p.duration)), !p.Paused())
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

	p.volume = max(0, min(v, 1))
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Close stops playback and releases the file. Safe to call more than once.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.stopMon != nil {
			close(p.stopMon)
		}
		if p.otoPlayer != nil {
			p.otoPlayer.Pause()
		}
		if p.cleanup != nil {
			p.cleanup()
		}
	})
}
