package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// wavFormat holds WAV file format information
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

var errNotWAV = errors.New("not a RIFF/WAVE file")

// LoadWAV reads a 16-bit PCM WAV file and converts it to the output format
func LoadWAV(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	format, samples, err := parseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return convert(format, samples)
}

// parseWAV parses a WAV file and returns the format and audio data
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return nil, nil, errNotWAV
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, errNotWAV
	}

	var format *wavFormat
	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(reader, chunkID[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, errors.New("missing data chunk")
			}
			return nil, nil, err
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, err
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if chunkSize < 16 {
				return nil, nil, fmt.Errorf("fmt chunk too short: %d", chunkSize)
			}
			var raw struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
				return nil, nil, err
			}
			if raw.AudioFormat != 1 {
				return nil, nil, fmt.Errorf("unsupported audio format %d (PCM only)", raw.AudioFormat)
			}
			format = &wavFormat{
				SampleRate: int(raw.SampleRate),
				Channels:   int(raw.NumChannels),
				BitDepth:   int(raw.BitsPerSample),
			}
			// Skip any extra format bytes
			if err := skip(reader, int64(chunkSize)-16); err != nil {
				return nil, nil, err
			}

		case "data":
			if format == nil {
				return nil, nil, errors.New("data chunk before fmt chunk")
			}
			if format.BitDepth != 16 {
				return nil, nil, fmt.Errorf("unsupported bit depth %d", format.BitDepth)
			}
			if format.Channels < 1 || format.Channels > 2 {
				return nil, nil, fmt.Errorf("unsupported channel count %d", format.Channels)
			}
			if format.SampleRate <= 0 {
				return nil, nil, fmt.Errorf("invalid sample rate %d", format.SampleRate)
			}
			size := int(chunkSize)
			if size > reader.Len() {
				// Truncated files are common, play what is there
				size = reader.Len()
			}
			audioData := make([]byte, size)
			if _, err := io.ReadFull(reader, audioData); err != nil {
				return nil, nil, err
			}
			return format, audioData, nil

		default:
			// Skip unknown chunk, padded to an even size. Widened first so
			// the pad byte cannot wrap a maximal size to zero.
			size := int64(chunkSize)
			if err := skip(reader, size+size%2); err != nil {
				return nil, nil, err
			}
		}
	}
}

// skip moves past n bytes, failing when the chunk runs past the end of data
func skip(r *bytes.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if n > int64(r.Len()) {
		return fmt.Errorf("chunk of %d bytes runs past end of file", n)
	}
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}

// convert turns 16-bit PCM in format into the output format, duplicating
// mono samples and resampling with nearest-neighbour when rates differ
func convert(format *wavFormat, samples []byte) ([]byte, error) {
	inFrame := format.Channels * bytesPerSample
	frames := len(samples) / inFrame
	if frames == 0 {
		return nil, errors.New("no audio frames")
	}

	outFrames := int(int64(frames) * SampleRate / int64(format.SampleRate))
	if outFrames == 0 {
		outFrames = 1
	}

	out := make([]byte, outFrames*frameSize)
	for i := 0; i < outFrames; i++ {
		src := int(int64(i) * int64(format.SampleRate) / SampleRate)
		if src >= frames {
			src = frames - 1
		}
		left := samples[src*inFrame : src*inFrame+bytesPerSample]
		right := left
		if format.Channels == 2 {
			right = samples[src*inFrame+bytesPerSample : src*inFrame+2*bytesPerSample]
		}
		copy(out[i*frameSize:], left)
		copy(out[i*frameSize+bytesPerSample:], right)
	}
	return out, nil
}
