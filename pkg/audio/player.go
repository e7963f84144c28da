package audio

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output format of the shared audio context. Every tone is rendered or
// converted to this format before playback.
const (
	SampleRate     = 44100
	ChannelCount   = 2
	bytesPerSample = 2
	frameSize      = ChannelCount * bytesPerSample
)

// ErrNoAudio is returned when the audio device could not be opened
var ErrNoAudio = errors.New("audio context not available")

// Global audio context singleton
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	globalAudioCtxErr  error
)

// InitAudioContext initializes the global audio context once
func InitAudioContext() error {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			globalAudioCtxErr = fmt.Errorf("%w: %v", ErrNoAudio, err)
			log.Printf("[AUDIO] Failed to initialize audio context: %v", err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		log.Println("[AUDIO] Audio context initialized")
	})
	return globalAudioCtxErr
}

// Player loops a PCM buffer until stopped
type Player struct {
	stopChan chan struct{}
	doneChan chan struct{}

	mu      sync.Mutex
	player  *oto.Player
	stopped bool
}

// PlayTone renders the named tone and starts looping it
func PlayTone(name string) (*Player, error) {
	pcm, err := Render(name)
	if err != nil {
		return nil, err
	}
	return Play(pcm)
}

// Play starts looping pcm (signed 16-bit little endian, output format) and
// returns a Player for control
func Play(pcm []byte) (*Player, error) {
	if len(pcm) == 0 {
		return nil, errors.New("empty audio buffer")
	}
	if err := InitAudioContext(); err != nil {
		return nil, err
	}

	p := &Player{
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	// Play the sound in a goroutine so it doesn't block
	go p.playLoop(pcm)

	return p, nil
}

func (p *Player) playLoop(pcm []byte) {
	defer close(p.doneChan)

	for {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return
		}
		// Create a new player for each loop iteration
		player := globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
		p.player = player
		p.mu.Unlock()

		player.Play()

		// Wait for the sound to finish playing or stop signal
		stopped := false
		for player.IsPlaying() && !stopped {
			select {
			case <-p.stopChan:
				player.Pause()
				stopped = true
			case <-time.After(10 * time.Millisecond):
			}
		}

		p.mu.Lock()
		p.player = nil
		p.mu.Unlock()
		if err := player.Close(); err != nil {
			log.Printf("[AUDIO] Failed to close audio player: %v", err)
		}
		if stopped {
			return
		}
	}
}

// Stop halts playback and releases the underlying player. It is safe to
// call more than once.
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopChan)
	if p.player != nil {
		p.player.Pause()
	}
	p.mu.Unlock()

	<-p.doneChan
	log.Println("[AUDIO] Playback stopped")
}
