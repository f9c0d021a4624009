package main

import (
	"fmt"

	"github.com/pczora/gobo/gb"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	lcdWidth  = 160
	lcdHeight = 144
)

// shade is the classic four-tone Game Boy LCD palette, lightest first,
// packed the same way the teacher's gui.Renderer expects its background
// buffer: one RGBA byte quad per pixel, fed to a PIXELFORMAT_ABGR8888
// streaming texture.
var shade = [4][4]byte{
	{0x9B, 0xBC, 0x0F, 0xFF},
	{0x8B, 0xAC, 0x0F, 0xFF},
	{0x30, 0x62, 0x30, 0xFF},
	{0x0F, 0x38, 0x0F, 0xFF},
}

// keyMap mirrors the teacher's keyboardMapping in gameView.go, retargeted at
// gb.Button instead of nes.Button.
var keyMap = map[sdl.Keycode]gb.Button{
	sdl.K_UP:     gb.ButtonUp,
	sdl.K_DOWN:   gb.ButtonDown,
	sdl.K_LEFT:   gb.ButtonLeft,
	sdl.K_RIGHT:  gb.ButtonRight,
	sdl.K_z:      gb.ButtonA,
	sdl.K_x:      gb.ButtonB,
	sdl.K_RETURN: gb.ButtonStart,
	sdl.K_RSHIFT: gb.ButtonSelect,
	sdl.K_BACKSPACE: gb.ButtonSelect,
}

// window is a single SDL2 presentation surface: a streaming texture that the
// framebuffer is copied into once per V-blank. This is a deliberately
// stripped-down version of the teacher's cmd/internal/gui.View - no layered
// messages, no font rendering, no menu overlay - since this core's Non-goals
// exclude the memory-dump/debug-viewer surfaces those existed to serve.
type window struct {
	held byte // live button mask, mirrored into Joypad.SetState each poll

	win      *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	quit bool
}

func newWindow(title string, zoom int) (*window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("unable to init sdl: %s", err)
	}

	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(lcdWidth*zoom), int32(lcdHeight*zoom),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create window: %s", err)
	}

	renderer, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("unable to create renderer: %s", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, lcdWidth, lcdHeight)
	if err != nil {
		renderer.Destroy()
		win.Destroy()
		return nil, fmt.Errorf("unable to create texture: %s", err)
	}

	return &window{win: win, renderer: renderer, texture: texture}, nil
}

func (w *window) destroy() {
	w.texture.Destroy()
	w.renderer.Destroy()
	w.win.Destroy()
	sdl.Quit()
}

func (w *window) setTitle(title string) {
	w.win.SetTitle(title)
}

func (w *window) quitRequested() bool { return w.quit }

// pollInput drains the SDL event queue, updates the held button mask from
// keydown/keyup events and reports it to joypad - the concrete realization
// of the spec's poll_input(), called once per frame the same way the
// teacher's engine.poll dispatches to Controller1.Press/Release.
func (w *window) pollInput(joypad *gb.Joypad) {
	for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
		switch evt := evt.(type) {
		case *sdl.QuitEvent:
			w.quit = true

		case *sdl.KeyboardEvent:
			btn, ok := keyMap[evt.Keysym.Sym]
			if !ok {
				continue
			}
			if evt.Type == sdl.KEYDOWN {
				w.held |= byte(btn)
			} else if evt.Type == sdl.KEYUP {
				w.held &^= byte(btn)
			}
		}
	}

	joypad.SetState(w.held)
}

// present copies a latched 160x144 2-bit-per-pixel framebuffer (one byte per
// pixel, values 0-3) into the streaming texture and flips it to the screen,
// following the lock/copy/unlock/copy-to-renderer sequence of the teacher's
// Renderer.DrawBackground.
func (w *window) present(fb []byte) error {
	pixels, _, err := w.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("unable to lock texture: %s", err)
	}

	for i, idx := range fb {
		copy(pixels[i*4:i*4+4], shade[idx&3][:])
	}
	w.texture.Unlock()

	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("unable to clear renderer: %s", err)
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("unable to copy texture: %s", err)
	}
	w.renderer.Present()

	return nil
}
