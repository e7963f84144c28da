package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Built-in tone names
const (
	ToneDefault = "Default"
	ToneChime   = "Chime"
	ToneBuzzer  = "Buzzer"

	// FilePrefix selects a WAV file as tone, e.g. "file:/home/me/wake.wav"
	FilePrefix = "file:"
)

const amplitude = 0.4 * math.MaxInt16

// note is a sine or square burst followed by silence
type note struct {
	freq   float64
	length float64 // seconds of sound
	rest   float64 // seconds of silence after
	square bool
	decay  bool
}

var tones = map[string][]note{
	ToneDefault: {
		{freq: 880, length: 0.15, rest: 0.1},
		{freq: 880, length: 0.15, rest: 0.6},
	},
	ToneChime: {
		{freq: 1318.5, length: 0.4, decay: true},
		{freq: 1046.5, length: 0.4, decay: true},
		{freq: 784, length: 0.8, rest: 0.4, decay: true},
	},
	ToneBuzzer: {
		{freq: 440, length: 0.5, rest: 0.25, square: true},
	},
}

// Tones lists the built-in tone names
func Tones() []string {
	return []string{ToneDefault, ToneChime, ToneBuzzer}
}

// IsFileTone reports whether name refers to a WAV file
func IsFileTone(name string) bool {
	return strings.HasPrefix(name, FilePrefix)
}

// Render returns one loop of the named tone as PCM in the output format.
// An empty name selects the default tone.
func Render(name string) ([]byte, error) {
	if name == "" {
		name = ToneDefault
	}
	if IsFileTone(name) {
		path := strings.TrimPrefix(name, FilePrefix)
		if path == "" {
			return nil, fmt.Errorf("tone %q: missing file path", name)
		}
		return LoadWAV(path)
	}

	notes, ok := tones[name]
	if !ok {
		return nil, fmt.Errorf("unknown tone %q", name)
	}
	return synthesize(notes), nil
}

func synthesize(notes []note) []byte {
	total := 0
	for _, n := range notes {
		total += frames(n.length) + frames(n.rest)
	}

	out := make([]byte, 0, total*frameSize)
	var frame [frameSize]byte
	for _, n := range notes {
		count := frames(n.length)
		for i := 0; i < count; i++ {
			t := float64(i) / SampleRate
			v := math.Sin(2 * math.Pi * n.freq * t)
			if n.square {
				v = math.Copysign(1, v)
			}
			gain := 1.0
			if n.decay {
				gain = math.Exp(-4 * t / n.length)
			}
			// Short fade in and out avoids clicks at note edges
			edge := math.Min(float64(i), float64(count-1-i)) / (0.005 * SampleRate)
			if edge < 1 {
				gain *= edge
			}
			s := uint16(int16(v * gain * amplitude))
			for c := 0; c < ChannelCount; c++ {
				binary.LittleEndian.PutUint16(frame[c*bytesPerSample:], s)
			}
			out = append(out, frame[:]...)
		}
		out = append(out, make([]byte, frames(n.rest)*frameSize)...)
	}
	return out
}

func frames(seconds float64) int {
	return int(seconds * SampleRate)
}
