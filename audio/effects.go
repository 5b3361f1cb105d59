package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
)

// oscillator generates a fixed-length tone.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, duration: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1.0
			if o.phase >= 0.5 {
				val = -1.0
			}
		}
		// Linear fade out avoids a click at the end.
		val *= 1 - float64(o.position)/float64(o.duration)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// newVolume scales a stream linearly; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Effect builds the streamer for a cue, or nil for an unknown sound.
func Effect(sound Sound, volume float64) beep.Streamer {
	var s beep.Streamer
	switch sound {
	case SoundLock:
		sine, err := generators.SineTone(sampleRate, 220)
		if err != nil {
			return nil
		}
		s = beep.Take(sampleRate.N(60*time.Millisecond), sine)
	case SoundLineClear:
		s = beep.Seq(
			NewOscillator(659.25, 80*time.Millisecond, WaveSine, sampleRate),
			NewOscillator(987.77, 120*time.Millisecond, WaveSine, sampleRate),
		)
	case SoundGameOver:
		s = beep.Seq(
			NewOscillator(392, 150*time.Millisecond, WaveSquare, sampleRate),
			NewOscillator(311.13, 150*time.Millisecond, WaveSquare, sampleRate),
			NewOscillator(261.63, 300*time.Millisecond, WaveSquare, sampleRate),
		)
	default:
		return nil
	}
	return newVolume(s, volume)
}
