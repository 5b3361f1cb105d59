package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/lguibr/tetris/game"
)

const (
	sampleRate = beep.SampleRate(44100)
)

// Sound names one cue.
type Sound int

const (
	SoundLock Sound = iota
	SoundLineClear
	SoundGameOver
)

func (s Sound) String() string {
	switch s {
	case SoundLock:
		return "lock"
	case SoundLineClear:
		return "lineClear"
	case SoundGameOver:
		return "gameOver"
	}
	return "unknown"
}

// SoundManager plays short cues through one mixer. Every method is a no-op
// until Initialize succeeds, so callers need not check whether audio is on.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewSoundManager creates a new sound manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: 0.5,
	}
}

// Initialize opens the speaker.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

func (sm *SoundManager) Initialized() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Cleanup silences pending cues and closes the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

func (sm *SoundManager) Play(sound Sound) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	streamer := Effect(sound, sm.volume)
	if streamer == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
}

// PlayTransition plays the cues for the change from prev to next.
func (sm *SoundManager) PlayTransition(prev, next game.GameState) {
	for _, sound := range Cues(prev, next) {
		sm.Play(sound)
	}
}

// Cues lists the sounds a state change deserves: a lock, a line clear, or game over.
func Cues(prev, next game.GameState) []Sound {
	var cues []Sound
	if next.PiecesLocked > prev.PiecesLocked {
		if next.LastCleared > 0 {
			cues = append(cues, SoundLineClear)
		} else {
			cues = append(cues, SoundLock)
		}
	}
	if next.RunState == game.GameOver && prev.RunState != game.GameOver {
		cues = append(cues, SoundGameOver)
	}
	return cues
}
