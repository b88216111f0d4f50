package main

import (
	"github.com/veandco/go-sdl2/sdl"
)

const (
	toneHz   = 440
	toneRate = 44100
)

var (
	/// The opened beep device.
	///
	audio sdl.AudioDeviceID

	/// A pre-rendered square wave, queued on each sound cue.
	///
	tone []byte
)

/// InitAudio opens an audio device for the one-shot beep.
///
func InitAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     toneRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return err
	}

	audio = dev

	// render a tenth of a second of square wave
	tone = make([]byte, toneRate/10)
	half := toneRate / toneHz / 2

	for i := range tone {
		if (i/half)&1 == 0 {
			tone[i] = 0xC0
		} else {
			tone[i] = 0x40
		}
	}

	// the device plays whatever gets queued
	sdl.PauseAudioDevice(audio, false)

	return nil
}

/// Beep queues the tone; called when the sound timer reaches zero.
///
func Beep() {
	sdl.QueueAudio(audio, tone)
}
