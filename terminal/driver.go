// Package terminal plays a local game on a tcell screen.
package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/lguibr/tetris/audio"
	"github.com/lguibr/tetris/bollywood"
	"github.com/lguibr/tetris/game"
	"github.com/lguibr/tetris/logging"
	"github.com/lguibr/tetris/render"
)

const subscriberID = "terminal"

// Driver forwards key presses to a GameActor and draws every state it publishes.
type Driver struct {
	screen  tcell.Screen
	engine  *bollywood.Engine
	gamePID *bollywood.PID
	sound   *audio.SoundManager
	sub     *game.ChannelSubscriber
	last    game.GameState
	drawn   bool
}

// New returns a driver; sound may be nil.
func New(screen tcell.Screen, engine *bollywood.Engine, gamePID *bollywood.PID, sound *audio.SoundManager) *Driver {
	if sound == nil {
		sound = audio.NewSoundManager()
	}
	return &Driver{
		screen:  screen,
		engine:  engine,
		gamePID: gamePID,
		sound:   sound,
		sub:     game.NewChannelSubscriber(subscriberID, 8),
	}
}

// Run blocks until the player quits or ctx is cancelled. The caller owns the
// screen and must Fini it afterwards.
func (d *Driver) Run(ctx context.Context) error {
	d.engine.Send(d.gamePID, game.Subscribe{Subscriber: d.sub}, nil)
	defer d.engine.Send(d.gamePID, game.Unsubscribe{ID: subscriberID}, nil)

	done := make(chan struct{})
	defer close(done)
	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !d.handleEvent(ev) {
				logging.Infof("Terminal driver: quit requested.")
				return nil
			}

		case state := <-d.sub.States():
			if d.drawn {
				d.sound.PlayTransition(d.last, state)
			}
			d.last = state
			d.drawn = true
			d.draw(state)
		}
	}
}

// handleEvent returns false when the driver should stop.
func (d *Driver) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		cmd, ok, quit := CommandForEvent(ev)
		if quit {
			return false
		}
		if ok {
			d.engine.Send(d.gamePID, game.CommandMessage{Command: cmd}, nil)
		}
	case *tcell.EventResize:
		d.screen.Sync()
		if d.drawn {
			d.draw(d.last)
		}
	}
	return true
}

func (d *Driver) draw(state game.GameState) {
	d.screen.Clear()
	board := render.Compose(state)
	for row, cells := range board {
		for col, cell := range cells {
			x := col * 2
			if !cell.Occupied {
				d.screen.SetContent(x, row, ' ', nil, tcell.StyleDefault)
				d.screen.SetContent(x+1, row, '.', nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
				continue
			}
			rgb := cell.Color.RGB()
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(rgb[0]), int32(rgb[1]), int32(rgb[2])))
			d.screen.SetContent(x, row, '[', nil, style)
			d.screen.SetContent(x+1, row, ']', nil, style)
		}
	}
	drawText(d.screen, 0, len(board)+1, render.StatusLine(state))
	drawText(d.screen, 0, len(board)+2, "arrows move/rotate  space drop  p pause  r restart  q quit")
	d.screen.Show()
}

func drawText(screen tcell.Screen, x, y int, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}
