// Package ui is the reference Fyne/SDL2 host for internal/emulator.Machine:
// a window, a scaled framebuffer blit, keyboard polling into the eight-
// button input snapshot, and a silence-queued SDL2 audio device standing in
// for the passive sound registers the core never synthesizes.
package ui

import (
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/dmgcore/dmgcore/internal/debug"
	"github.com/dmgcore/dmgcore/internal/emulator"
	"github.com/dmgcore/dmgcore/internal/input"
	"github.com/dmgcore/dmgcore/internal/ppu"
)

// dmgPalette maps the four 2-bit shade indices the PPU emits to the
// classic DMG greenish greyscale, lightest to darkest.
var dmgPalette = [4][3]uint8{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

// FyneUI is the Fyne-based host window for a Machine, with SDL2 providing
// the audio device and a keyboard-state fallback alongside Fyne's own
// desktop key events.
type FyneUI struct {
	app     fyne.App
	window  fyne.Window
	machine *emulator.Machine
	scale   int
	paused  bool
	running bool

	audioDev   sdl.AudioDeviceID
	audioFrame []byte // one frame's worth of silence, queued to keep the device alive

	screenImage  *canvas.Image
	statusLabel  *widget.Label
	frameImages  [2]*image.RGBA
	frameIdx     int
	splitContent *container.Split

	keyMu     sync.Mutex
	keyStates map[fyne.KeyName]bool
}

// NewFyneUI creates a window for machine, sized scale times the native
// 160x144 resolution, with a menu bar and keyboard input wired to
// machine.SetInput.
func NewFyneUI(m *emulator.Machine, scale int) (*FyneUI, error) {
	if err := sdl.Init(sdl.INIT_AUDIO | sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("ui: initialize SDL: %w", err)
	}

	audioSpec := sdl.AudioSpec{Freq: 44100, Format: sdl.AUDIO_F32, Channels: 2, Samples: 735}
	audioDev, err := sdl.OpenAudioDevice("", false, &audioSpec, nil, 0)
	if err != nil {
		if m.Logger != nil {
			m.Logger.LogUI(debug.LogLevelWarning, fmt.Sprintf("failed to open audio device: %v", err), nil)
		}
		audioDev = 0
	} else {
		sdl.PauseAudioDevice(audioDev, false)
	}

	fyneApp := app.NewWithID("io.dmgcore.emulator")
	window := fyneApp.NewWindow("dmgcore")

	frame0 := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	frame1 := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*scale, ppu.ScreenHeight*scale))
	screenImage := canvas.NewImageFromImage(frame0)
	screenImage.FillMode = canvas.ImageFillContain

	statusLabel := widget.NewLabel("Frame: 0")

	ui := &FyneUI{
		app:         fyneApp,
		window:      window,
		machine:     m,
		scale:       scale,
		audioDev:    audioDev,
		audioFrame:  make([]byte, 735*2*4),
		screenImage: screenImage,
		statusLabel: statusLabel,
		frameImages: [2]*image.RGBA{frame0, frame1},
		keyStates:   make(map[fyne.KeyName]bool),
	}

	content := container.NewBorder(nil, statusLabel, nil, nil, screenImage)
	window.SetContent(content)
	window.Resize(fyne.NewSize(float32(ppu.ScreenWidth*scale), float32(ppu.ScreenHeight*scale)+32))
	window.CenterOnScreen()

	createMenus(window, ui)
	setupKeyboardInput(window, ui)

	return ui, nil
}

func setupKeyboardInput(window fyne.Window, ui *FyneUI) {
	if c, ok := window.Canvas().(desktop.Canvas); ok {
		c.SetOnKeyDown(func(key *fyne.KeyEvent) {
			ui.keyMu.Lock()
			ui.keyStates[key.Name] = true
			ui.keyMu.Unlock()
		})
		c.SetOnKeyUp(func(key *fyne.KeyEvent) {
			ui.keyMu.Lock()
			ui.keyStates[key.Name] = false
			ui.keyMu.Unlock()
		})
	}
}

// currentInput builds the eight-button snapshot from Fyne's key state,
// falling back to SDL2's keyboard-state table for platforms where Fyne
// desktop key events are unavailable or haven't fired yet.
func (ui *FyneUI) currentInput() input.State {
	ui.keyMu.Lock()
	pressed := func(k fyne.KeyName) bool { return ui.keyStates[k] }
	state := input.State{
		Up:     pressed(fyne.KeyUp) || pressed(fyne.KeyW),
		Down:   pressed(fyne.KeyDown) || pressed(fyne.KeyS),
		Left:   pressed(fyne.KeyLeft) || pressed(fyne.KeyA),
		Right:  pressed(fyne.KeyRight) || pressed(fyne.KeyD),
		A:      pressed(fyne.KeyZ),
		B:      pressed(fyne.KeyX),
		Select: pressed(fyne.KeyBackspace),
		Start:  pressed(fyne.KeyReturn),
	}
	ui.keyMu.Unlock()

	if kb := sdl.GetKeyboardState(); kb != nil {
		if kb[sdl.SCANCODE_UP] != 0 || kb[sdl.SCANCODE_W] != 0 {
			state.Up = true
		}
		if kb[sdl.SCANCODE_DOWN] != 0 || kb[sdl.SCANCODE_S] != 0 {
			state.Down = true
		}
		if kb[sdl.SCANCODE_LEFT] != 0 || kb[sdl.SCANCODE_A] != 0 {
			state.Left = true
		}
		if kb[sdl.SCANCODE_RIGHT] != 0 || kb[sdl.SCANCODE_D] != 0 {
			state.Right = true
		}
		if kb[sdl.SCANCODE_Z] != 0 {
			state.A = true
		}
		if kb[sdl.SCANCODE_X] != 0 {
			state.B = true
		}
		if kb[sdl.SCANCODE_BACKSPACE] != 0 {
			state.Select = true
		}
		if kb[sdl.SCANCODE_RETURN] != 0 {
			state.Start = true
		}
	}
	return state
}

func (ui *FyneUI) loadROMBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("ROM file is empty")
	}
	if err := ui.machine.LoadCartridge(data); err != nil {
		return err
	}
	if ui.audioDev != 0 {
		sdl.ClearQueuedAudio(ui.audioDev)
	}
	return nil
}

func createMenus(window fyne.Window, ui *FyneUI) {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open ROM...", func() {
			open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(fmt.Errorf("failed to open ROM: %w", err), window)
					return
				}
				if reader == nil {
					return
				}
				defer reader.Close()

				data, readErr := io.ReadAll(reader)
				if readErr != nil {
					dialog.ShowError(fmt.Errorf("failed to read ROM: %w", readErr), window)
					return
				}
				if loadErr := ui.loadROMBytes(data); loadErr != nil {
					dialog.ShowError(fmt.Errorf("failed to load ROM: %w", loadErr), window)
					return
				}
				ui.statusLabel.SetText(fmt.Sprintf("Loaded ROM: %s", reader.URI().Name()))
			}, window)
			open.SetFilter(storage.NewExtensionFileFilter([]string{".gb"}))
			open.Show()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() { window.Close() }),
	)

	emulationMenu := fyne.NewMenu("Emulation",
		fyne.NewMenuItem("Pause", func() { ui.paused = true }),
		fyne.NewMenuItem("Resume", func() { ui.paused = false }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About", "dmgcore reference host.\n\nFile > Open ROM... to load a .gb image.", window)
		}),
	)

	window.SetMainMenu(fyne.NewMainMenu(fileMenu, emulationMenu, helpMenu))
}

// renderFrame converts the PPU's 2-bit shade framebuffer into a scaled RGBA
// image, reusing one of two double-buffered targets to avoid per-frame
// allocation.
func (ui *FyneUI) renderFrame(buf [ppu.ScreenWidth * ppu.ScreenHeight]uint8) image.Image {
	img := ui.frameImages[ui.frameIdx]
	ui.frameIdx ^= 1

	pix := img.Pix
	stride := img.Stride
	scale := ui.scale
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			shade := buf[y*ppu.ScreenWidth+x] & 0x03
			rgb := dmgPalette[shade]
			baseX, baseY := x*scale, y*scale
			for sy := 0; sy < scale; sy++ {
				row := (baseY + sy) * stride
				for sx := 0; sx < scale; sx++ {
					off := row + (baseX+sx)*4
					pix[off+0] = rgb[0]
					pix[off+1] = rgb[1]
					pix[off+2] = rgb[2]
					pix[off+3] = 0xFF
				}
			}
		}
	}
	return img
}

// queueSilence keeps the audio device alive and its buffer non-empty even
// though the core never synthesizes sound, matching the device's expected
// usage pattern without inventing a mixer this core doesn't have.
func (ui *FyneUI) queueSilence() {
	if ui.audioDev == 0 {
		return
	}
	if sdl.GetQueuedAudioSize(ui.audioDev) > uint32(len(ui.audioFrame))*4 {
		return
	}
	_ = sdl.QueueAudio(ui.audioDev, ui.audioFrame)
}

// Run shows the window and blocks until it is closed, stepping the machine
// one frame per 16.67ms tick on a background goroutine.
func (ui *FyneUI) Run() error {
	defer ui.Cleanup()

	ui.running = true
	go ui.updateLoop()

	window := ui.window
	window.ShowAndRun()
	ui.running = false
	return nil
}

func (ui *FyneUI) updateLoop() {
	const emuHz = 60
	frameStep := time.Second / emuHz
	ticker := time.NewTicker(frameStep)
	defer ticker.Stop()

	var frameCount uint64
	for ui.running {
		<-ticker.C
		sdl.PumpEvents()

		if ui.paused {
			continue
		}

		ui.machine.SetInput(ui.currentInput())
		frame, err := ui.machine.StepFrame()
		if err != nil {
			if ui.machine.Logger != nil {
				ui.machine.Logger.LogUI(debug.LogLevelError, fmt.Sprintf("emulation fault: %v", err), nil)
			}
			ui.paused = true
			continue
		}
		frameCount++
		ui.queueSilence()

		img := ui.renderFrame(frame)
		fyne.Do(func() {
			ui.screenImage.Image = img
			ui.screenImage.Refresh()
			ui.statusLabel.SetText(fmt.Sprintf("Frame: %d", frameCount))
		})
	}
}

// Cleanup releases the audio device and logger resources; called once the
// window closes.
func (ui *FyneUI) Cleanup() {
	if ui.machine.Logger != nil {
		ui.machine.Logger.Shutdown()
	}
	if ui.audioDev != 0 {
		sdl.CloseAudioDevice(ui.audioDev)
	}
	sdl.Quit()
}
