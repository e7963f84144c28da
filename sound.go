package main

import (
	"github.com/borgmon/alarm-clock/pkg/audio"
	"github.com/borgmon/alarm-clock/pkg/ringer"
)

// toneSound plays alarm tones through the audio package
type toneSound struct {
	fallback string // used when an alarm has no tone
}

func (s toneSound) Play(tone string) (ringer.Playback, error) {
	if tone == "" {
		tone = s.fallback
	}
	p, err := audio.PlayTone(tone)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var _ ringer.Sound = toneSound{}
